package domain

// ProbeCheck — результат одного GET проверки доступности.
type ProbeCheck struct {
	Path       string `json:"path"`
	StatusCode int    `json:"status_code,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ProbeResult — итог проверки доступности сервера.
type ProbeResult struct {
	// Reachable — сервер ответил статусом 200, 401 или 403 хотя бы на одном пути.
	Reachable bool `json:"reachable"`

	// Path и StatusCode — путь, на котором сервер ответил.
	Path       string `json:"path,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`

	// Checks — все выполненные GET-запросы в порядке выполнения.
	Checks []ProbeCheck `json:"checks"`
}
