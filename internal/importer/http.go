package importer

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shaiso/wfimport/internal/domain"
)

const (
	// UploadTimeout — таймаут одной попытки загрузки.
	UploadTimeout = 30 * time.Second

	// ProbeTimeout — таймаут одного GET проверки доступности.
	ProbeTimeout = 5 * time.Second

	// maxBodyLen — сколько символов тела ответа сохраняется в попытке.
	maxBodyLen = 200

	// maxResponseBytes — ограничение на чтение тела ответа.
	maxResponseBytes = 1 << 20
)

// UploadEndpoints — пути API создания workflow в порядке перебора.
var UploadEndpoints = []string{
	"/api/v1/workflows",      // публичный API n8n
	"/rest/workflows",        // внутренний API (basic auth / cookie)
	"/webhook-test/workflow", // webhook-обёртка
}

// ProbePaths — пути проверки доступности в порядке перебора.
var ProbePaths = []string{
	"/healthz",
	"/",
	"/rest/login",
	"/api/v1/workflows",
}

// answeredStatuses — статусы, означающие "сервер ответил".
var answeredStatuses = map[int]bool{
	http.StatusOK:           true,
	http.StatusUnauthorized: true,
	http.StatusForbidden:    true,
}

// NormalizeBaseURL убирает завершающие слэши.
func NormalizeBaseURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/")
}

// classifyError относит сетевую ошибку к timeout или connection_failure.
func classifyError(err error) domain.Outcome {
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.OutcomeTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.OutcomeTimeout
	}
	return domain.OutcomeConnectionFailure
}

// classifyStatus относит не-2xx статус к исходу попытки.
func classifyStatus(code int) domain.Outcome {
	switch code {
	case http.StatusUnauthorized:
		return domain.OutcomeUnauthorized
	case http.StatusForbidden:
		return domain.OutcomeForbidden
	default:
		return domain.OutcomeRemoteError
	}
}

// truncate обрезает строку до maxLen символов, не разрывая UTF-8.
func truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
