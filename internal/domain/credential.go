package domain

// Scheme — схема аутентификации при загрузке workflow.
type Scheme string

const (
	// SchemeAPIKey — ключ API в заголовке X-N8N-API-KEY.
	SchemeAPIKey Scheme = "api_key"

	// SchemeBasic — HTTP basic auth.
	SchemeBasic Scheme = "basic"

	// SchemeNone — запрос без аутентификации.
	SchemeNone Scheme = "none"
)

// String возвращает человекочитаемое имя схемы.
func (s Scheme) String() string {
	switch s {
	case SchemeAPIKey:
		return "API Key"
	case SchemeBasic:
		return "Basic Auth"
	case SchemeNone:
		return "No Auth"
	default:
		return string(s)
	}
}

// Credential — учётные данные для одной схемы.
type Credential struct {
	Scheme   Scheme
	APIKey   string
	Username string
	Password string
}

// Credentials строит список кандидатов в фиксированном порядке приоритета:
// API key, basic auth, без аутентификации.
//
// Схема добавляется, только если все её значения непустые.
// SchemeNone присутствует всегда и всегда последняя.
func Credentials(apiKey, username, password string) []Credential {
	creds := make([]Credential, 0, 3)

	if apiKey != "" {
		creds = append(creds, Credential{Scheme: SchemeAPIKey, APIKey: apiKey})
	}
	if username != "" && password != "" {
		creds = append(creds, Credential{Scheme: SchemeBasic, Username: username, Password: password})
	}

	return append(creds, Credential{Scheme: SchemeNone})
}
