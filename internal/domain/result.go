package domain

import (
	"time"

	"github.com/google/uuid"
)

// Attempt — одна POST-попытка загрузки workflow.
type Attempt struct {
	// Scheme — схема аутентификации попытки.
	Scheme Scheme `json:"scheme"`

	// Endpoint — путь API относительно базового URL.
	Endpoint string `json:"endpoint"`

	// StatusCode — HTTP-код ответа. 0, если ответа не было.
	StatusCode int `json:"status_code,omitempty"`

	// Outcome — классификация результата.
	Outcome Outcome `json:"outcome"`

	// Message — причина неудачи (обрезанное тело ответа или текст ошибки).
	Message string `json:"message,omitempty"`

	// Duration — длительность запроса.
	Duration time.Duration `json:"duration_ns"`
}

// ImportResult — итог импорта одного workflow.
//
// Ровно одна попытка может быть успешной: после неё перебор прекращается.
// Если успешной нет, Succeeded = false и Attempts содержит все кандидаты.
type ImportResult struct {
	// ImportID — локальный идентификатор запуска (логи, журнал, события).
	// На сервер не отправляется.
	ImportID uuid.UUID `json:"import_id"`

	// Succeeded — workflow создан на сервере.
	Succeeded bool `json:"succeeded"`

	// WorkflowID — идентификатор, назначенный сервером.
	WorkflowID string `json:"workflow_id,omitempty"`

	// WorkflowName — имя workflow из ответа сервера (или из payload).
	WorkflowName string `json:"workflow_name"`

	// BaseURL — адрес сервера n8n.
	BaseURL string `json:"base_url"`

	// SourceFile — путь к исходному JSON.
	SourceFile string `json:"source_file,omitempty"`

	// Scheme и Endpoint — комбинация, давшая успех.
	Scheme   Scheme `json:"scheme,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`

	// Attempts — все выполненные попытки в порядке выполнения.
	Attempts []Attempt `json:"attempts"`

	// Error — итоговое сообщение при неудаче.
	Error string `json:"error,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// WorkflowURL возвращает ссылку на workflow в UI n8n.
func (r *ImportResult) WorkflowURL() string {
	return r.BaseURL + "/workflow/" + r.WorkflowID
}

// EditorURL возвращает альтернативную ссылку редактора.
func (r *ImportResult) EditorURL() string {
	return r.BaseURL + "/workflows/" + r.WorkflowID
}

// LastAttempt возвращает последнюю попытку или nil.
func (r *ImportResult) LastAttempt() *Attempt {
	if len(r.Attempts) == 0 {
		return nil
	}
	return &r.Attempts[len(r.Attempts)-1]
}
