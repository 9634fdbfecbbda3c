package importer

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shaiso/wfimport/internal/domain"
	"github.com/shaiso/wfimport/internal/telemetry"
)

// Prober проверяет, отвечает ли сервер n8n.
type Prober struct {
	baseURL string
	paths   []string
	timeout time.Duration
	client  *http.Client
	logger  *slog.Logger
	metrics *telemetry.Metrics
}

// NewProber создаёт Prober.
func NewProber(cfg Config) *Prober {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Prober{
		baseURL: NormalizeBaseURL(cfg.BaseURL),
		paths:   ProbePaths,
		timeout: ProbeTimeout,
		client:  client,
		logger:  logger,
		metrics: cfg.Metrics,
	}
}

// Probe выполняет GET по путям проверки до первого ответа 200, 401 или 403.
//
// Прочие статусы и сетевые ошибки не прерывают проверку.
func (p *Prober) Probe(ctx context.Context) *domain.ProbeResult {
	result := &domain.ProbeResult{}

	for _, path := range p.paths {
		if ctx.Err() != nil {
			break
		}

		check := p.check(ctx, path)
		result.Checks = append(result.Checks, check)

		answered := answeredStatuses[check.StatusCode]
		p.metrics.ObserveProbe(path, answered)

		if answered {
			result.Reachable = true
			result.Path = path
			result.StatusCode = check.StatusCode
			p.logger.Info("n8n server answered", "path", path, "status", check.StatusCode)
			return result
		}

		p.logger.Debug("probe path did not answer",
			"path", path,
			"status", check.StatusCode,
			"error", check.Error,
		)
	}

	p.logger.Warn("n8n server is unreachable", "base_url", p.baseURL)
	return result
}

func (p *Prober) check(ctx context.Context, path string) domain.ProbeCheck {
	check := domain.ProbeCheck{Path: path}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+path, nil)
	if err != nil {
		check.Error = err.Error()
		return check
	}

	resp, err := p.client.Do(req)
	if err != nil {
		check.Error = string(classifyError(err)) + ": " + err.Error()
		return check
	}
	defer resp.Body.Close()

	// тело не нужно, но дочитываем для переиспользования соединения
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))

	check.StatusCode = resp.StatusCode
	return check
}
