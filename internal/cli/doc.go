// Package cli реализует команды импортёра workflow n8n.
//
// # Обзор
//
// Основная команда — import: загрузка файла, проверка доступности
// сервера, перебор схем аутентификации и endpoints, отчёт. Код выхода
// процесса отражает итог: 0 при успешном импорте, 1 при любой ошибке.
//
// # Команды
//
//   - import [FILE] — импорт workflow
//   - inspect FILE  — только загрузка и сводка документа
//   - probe         — только проверка доступности сервера
//   - history       — журнал импортов из PostgreSQL
//
// Данные выводятся в stdout, логи (slog) — в stderr. С флагом --json
// stdout содержит один JSON-документ, пригодный для jq.
//
// # Sinks
//
// После импорта результат опционально записывается в журнал (--journal,
// DB_URL) и публикуется в RabbitMQ (--notify, RABBITMQ_URL). Ошибки
// sinks логируются и не меняют код выхода.
package cli
