package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shaiso/wfimport/internal/domain"
	"github.com/shaiso/wfimport/internal/telemetry"
	"github.com/shaiso/wfimport/internal/workflow"
)

// APIKeyHeader — заголовок ключа API n8n.
const APIKeyHeader = "X-N8N-API-KEY"

// Config — зависимости Uploader и Prober.
type Config struct {
	// BaseURL — адрес сервера n8n, например http://localhost:5678.
	BaseURL string

	// HTTPClient — клиент для запросов. По умолчанию http.Client без таймаута:
	// таймаут задаётся контекстом каждой попытки.
	HTTPClient *http.Client

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
}

// Uploader — загрузчик workflow с перебором схем и endpoints.
type Uploader struct {
	baseURL   string
	endpoints []string
	timeout   time.Duration
	client    *http.Client
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// NewUploader создаёт Uploader.
func NewUploader(cfg Config) *Uploader {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Uploader{
		baseURL:   NormalizeBaseURL(cfg.BaseURL),
		endpoints: UploadEndpoints,
		timeout:   UploadTimeout,
		client:    client,
		logger:    logger,
		metrics:   cfg.Metrics,
	}
}

// createResponse — ответ сервера на создание workflow.
// Поддерживаются обе формы: {"id": ...} и {"data": {"id": ...}}.
type createResponse struct {
	ID   any `json:"id"`
	Name any `json:"name"`
	Data *struct {
		ID   any `json:"id"`
		Name any `json:"name"`
	} `json:"data"`
}

// Upload перебирает кандидатов до первого успеха.
//
// Внешний цикл — схемы аутентификации в порядке creds, внутренний — endpoints.
// Ошибка не возвращается: неудача всех попыток — это результат с
// Succeeded = false. Отмена ctx прекращает перебор.
func (u *Uploader) Upload(ctx context.Context, payload workflow.Payload, creds []domain.Credential) *domain.ImportResult {
	result := &domain.ImportResult{
		WorkflowName: payload.Name,
		BaseURL:      u.baseURL,
		StartedAt:    time.Now(),
	}
	defer func() {
		result.FinishedAt = time.Now()
		u.metrics.ObserveImport(result.Succeeded)
	}()

	body, err := json.Marshal(payload)
	if err != nil {
		result.Error = fmt.Sprintf("marshal payload: %v", err)
		return result
	}

	for _, cred := range creds {
		for _, endpoint := range u.endpoints {
			if err := ctx.Err(); err != nil {
				result.Error = fmt.Sprintf("import cancelled: %v", err)
				return result
			}

			attempt, resp := u.attempt(ctx, cred, endpoint, body)
			result.Attempts = append(result.Attempts, attempt)

			u.metrics.ObserveAttempt(string(cred.Scheme), endpoint, string(attempt.Outcome), attempt.Duration)

			if attempt.Outcome != domain.OutcomeSuccess {
				u.logger.Info("upload attempt failed",
					"scheme", cred.Scheme,
					"endpoint", endpoint,
					"status", attempt.StatusCode,
					"outcome", attempt.Outcome,
					"message", attempt.Message,
				)
				continue
			}

			result.Succeeded = true
			result.Scheme = cred.Scheme
			result.Endpoint = endpoint
			result.WorkflowID = resp.id()
			if name := resp.name(); name != "" {
				result.WorkflowName = name
			}

			u.logger.Info("workflow imported",
				"scheme", cred.Scheme,
				"endpoint", endpoint,
				"workflow_id", result.WorkflowID,
			)
			return result
		}
	}

	result.Error = fmt.Sprintf("%v: %d attempts", ErrImportFailed, len(result.Attempts))
	return result
}

// attempt выполняет одну POST-попытку. resp заполнен только при успехе.
func (u *Uploader) attempt(ctx context.Context, cred domain.Credential, endpoint string, body []byte) (domain.Attempt, *createResponse) {
	attempt := domain.Attempt{
		Scheme:   cred.Scheme,
		Endpoint: endpoint,
	}

	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+endpoint, bytes.NewReader(body))
	if err != nil {
		attempt.Outcome = domain.OutcomeConnectionFailure
		attempt.Message = fmt.Sprintf("create request: %v", err)
		attempt.Duration = time.Since(start)
		return attempt, nil
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	applyCredential(req, cred)

	u.logger.Debug("upload attempt", "scheme", cred.Scheme, "endpoint", endpoint)

	httpResp, err := u.client.Do(req)
	if err != nil {
		attempt.Outcome = classifyError(err)
		attempt.Message = err.Error()
		attempt.Duration = time.Since(start)
		return attempt, nil
	}
	defer httpResp.Body.Close()

	attempt.StatusCode = httpResp.StatusCode

	accepted := httpResp.StatusCode == http.StatusOK || httpResp.StatusCode == http.StatusCreated

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	attempt.Duration = time.Since(start)
	if err != nil {
		// Статус уже получен: для отказа он важнее обрыва тела
		if !accepted {
			attempt.Outcome = classifyStatus(httpResp.StatusCode)
			attempt.Message = statusMessage(httpResp.StatusCode, respBody)
			return attempt, nil
		}
		attempt.Outcome = classifyError(err)
		attempt.Message = fmt.Sprintf("read response: %v", err)
		return attempt, nil
	}

	if !accepted {
		attempt.Outcome = classifyStatus(httpResp.StatusCode)
		attempt.Message = statusMessage(httpResp.StatusCode, respBody)
		return attempt, nil
	}

	var cr createResponse
	if err := json.Unmarshal(respBody, &cr); err != nil {
		attempt.Outcome = domain.OutcomeRemoteError
		attempt.Message = fmt.Sprintf("%v: %s", ErrInvalidResponse, truncate(string(respBody), maxBodyLen))
		return attempt, nil
	}

	attempt.Outcome = domain.OutcomeSuccess
	return attempt, &cr
}

// applyCredential добавляет аутентификацию к запросу.
func applyCredential(req *http.Request, cred domain.Credential) {
	switch cred.Scheme {
	case domain.SchemeAPIKey:
		req.Header.Set(APIKeyHeader, cred.APIKey)
	case domain.SchemeBasic:
		req.SetBasicAuth(cred.Username, cred.Password)
	}
}

// statusMessage формирует описание неуспешного статуса.
func statusMessage(code int, body []byte) string {
	switch code {
	case http.StatusUnauthorized:
		return "authentication required (401)"
	case http.StatusForbidden:
		return "access denied (403)"
	case http.StatusNotFound:
		return "endpoint does not exist (404)"
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return fmt.Sprintf("HTTP %d", code)
	}
	return fmt.Sprintf("HTTP %d: %s", code, truncate(text, maxBodyLen))
}

// id возвращает идентификатор: сначала id верхнего уровня, затем data.id.
func (r *createResponse) id() string {
	if id := scalarString(r.ID); id != "" {
		return id
	}
	if r.Data != nil {
		return scalarString(r.Data.ID)
	}
	return ""
}

// name возвращает имя: сначала name верхнего уровня, затем data.name.
func (r *createResponse) name() string {
	if name := scalarString(r.Name); name != "" {
		return name
	}
	if r.Data != nil {
		return scalarString(r.Data.Name)
	}
	return ""
}

// scalarString приводит JSON-скаляр к строке. Числовые id встречаются
// в старых версиях n8n.
func scalarString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
