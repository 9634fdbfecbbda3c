// Package telemetry обеспечивает наблюдаемость импортёра.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики попыток импорта
//
// Логи пишутся в stderr, чтобы отчёт в stdout оставался читаемым.
// Метрики CLI не отдаёт по HTTP: процесс живёт один запуск, поэтому
// они выгружаются в файл для textfile collector node_exporter.
package telemetry
