package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics — Prometheus метрики одного запуска импортёра.
//
// Используется собственный Registry, а не глобальный: тесты и повторные
// запуски в одном процессе не конфликтуют при регистрации.
type Metrics struct {
	registry *prometheus.Registry

	attempts        *prometheus.CounterVec
	attemptDuration *prometheus.HistogramVec
	imports         *prometheus.CounterVec
	probes          *prometheus.CounterVec
}

// NewMetrics создаёт и регистрирует метрики.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wfimport_upload_attempts_total",
			Help: "Upload attempts by credential scheme, endpoint and outcome",
		}, []string{"scheme", "endpoint", "outcome"}),
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "wfimport_upload_attempt_duration_seconds",
			Help:    "Duration of a single upload attempt",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"scheme", "endpoint"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wfimport_imports_total",
			Help: "Finished imports by result (succeeded, failed)",
		}, []string{"result"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wfimport_probe_requests_total",
			Help: "Connectivity probe requests by path and answered flag",
		}, []string{"path", "answered"}),
	}

	m.registry.MustRegister(m.attempts, m.attemptDuration, m.imports, m.probes)
	return m
}

// ObserveAttempt учитывает одну попытку загрузки.
func (m *Metrics) ObserveAttempt(scheme, endpoint, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(scheme, endpoint, outcome).Inc()
	m.attemptDuration.WithLabelValues(scheme, endpoint).Observe(d.Seconds())
}

// ObserveProbe учитывает один GET проверки доступности.
func (m *Metrics) ObserveProbe(path string, answered bool) {
	if m == nil {
		return
	}
	label := "false"
	if answered {
		label = "true"
	}
	m.probes.WithLabelValues(path, label).Inc()
}

// ObserveImport учитывает завершённый импорт.
func (m *Metrics) ObserveImport(succeeded bool) {
	if m == nil {
		return
	}
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	m.imports.WithLabelValues(result).Inc()
}

// Gatherer возвращает registry для выгрузки или проверки в тестах.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile выгружает метрики в файл формата textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
