// Package mq публикует события импорта в RabbitMQ.
//
// Структура:
//   - connection.go — соединение и канал AMQP
//   - topology.go   — объявление exchange, queue, binding
//   - publisher.go  — публикация событий
//
// Типы сообщений:
//   - workflow.imported       — workflow создан на сервере
//   - workflow.import_failed  — все попытки исчерпаны
//
// Exchanges:
//   - wfimport.events (topic) → очередь wfimport.imports [routing: workflow.#]
package mq
