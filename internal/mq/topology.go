package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — тип для имени обменника.
type Exchange string

// Queue — тип для имени очереди.
type Queue string

// RoutingKey — тип для ключа маршрутизации.
type RoutingKey string

const (
	// ExchangeEvents — обменник событий импорта.
	ExchangeEvents Exchange = "wfimport.events"

	// QueueImports — очередь для потребителей событий импорта.
	QueueImports Queue = "wfimport.imports"

	// RoutingKeyImported — workflow создан.
	RoutingKeyImported RoutingKey = "workflow.imported"

	// RoutingKeyImportFailed — импорт не удался.
	RoutingKeyImportFailed RoutingKey = "workflow.import_failed"

	// bindingPattern — все события workflow.
	bindingPattern RoutingKey = "workflow.#"
)

// SetupTopology объявляет exchange, очередь и привязку. Операции идемпотентны.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.ExchangeDeclare(
			string(ExchangeEvents), // name
			"topic",                // type
			true,                   // durable
			false,                  // auto-deleted
			false,                  // internal
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ExchangeEvents, err)
		}

		_, err = ch.QueueDeclare(
			string(QueueImports), // name
			true,                 // durable
			false,                // delete when unused
			false,                // exclusive
			false,                // no-wait
			nil,                  // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", QueueImports, err)
		}

		err = ch.QueueBind(
			string(QueueImports),   // queue name
			string(bindingPattern), // routing key
			string(ExchangeEvents), // exchange
			false,                  // no-wait
			nil,                    // arguments
		)
		if err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", QueueImports, ExchangeEvents, err)
		}

		return nil
	})
}
