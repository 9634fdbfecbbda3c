package domain

// Outcome — итог одной попытки загрузки.
//
// Все исходы, кроме OutcomeSuccess, обрабатываются локально:
// попытка записывается, и импортёр переходит к следующему кандидату.
type Outcome string

const (
	// OutcomeSuccess — сервер ответил 200 или 201 с JSON телом.
	OutcomeSuccess Outcome = "success"

	// OutcomeUnauthorized — HTTP 401.
	OutcomeUnauthorized Outcome = "unauthorized"

	// OutcomeForbidden — HTTP 403.
	OutcomeForbidden Outcome = "forbidden"

	// OutcomeRemoteError — любой другой статус или некорректное тело 2xx ответа.
	OutcomeRemoteError Outcome = "remote_error"

	// OutcomeTimeout — запрос не уложился в таймаут.
	OutcomeTimeout Outcome = "timeout"

	// OutcomeConnectionFailure — соединение не установлено или оборвано.
	OutcomeConnectionFailure Outcome = "connection_failure"
)

// IsAuthFailure возвращает true для 401 и 403.
func (o Outcome) IsAuthFailure() bool {
	return o == OutcomeUnauthorized || o == OutcomeForbidden
}

// IsNetworkFailure возвращает true, если сервер не дал HTTP-ответа.
func (o Outcome) IsNetworkFailure() bool {
	return o == OutcomeTimeout || o == OutcomeConnectionFailure
}
