package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/wfimport/internal/domain"
)

// MessageType — тип сообщения.
type MessageType string

// Типы сообщений.
const (
	MessageTypeImported     MessageType = "workflow.imported"
	MessageTypeImportFailed MessageType = "workflow.import_failed"
)

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// ImportPayload — payload события импорта.
type ImportPayload struct {
	ImportID     uuid.UUID     `json:"import_id"`
	WorkflowID   string        `json:"workflow_id,omitempty"`
	WorkflowName string        `json:"workflow_name"`
	BaseURL      string        `json:"base_url"`
	SourceFile   string        `json:"source_file,omitempty"`
	Scheme       domain.Scheme `json:"scheme,omitempty"`
	Endpoint     string        `json:"endpoint,omitempty"`
	Attempts     int           `json:"attempts"`
	Error        string        `json:"error,omitempty"`
}

// Publisher публикует события импорта.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),   // exchange
			string(routingKey), // routing key
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)

		return nil
	})
}

// Record публикует событие о результате импорта.
func (p *Publisher) Record(ctx context.Context, res *domain.ImportResult) error {
	routingKey, msg := NewImportMessage(res)
	return p.Publish(ctx, ExchangeEvents, routingKey, msg)
}

// NewImportMessage строит сообщение и routing key для результата импорта.
func NewImportMessage(res *domain.ImportResult) (RoutingKey, *Message) {
	msgType, routingKey := MessageTypeImportFailed, RoutingKeyImportFailed
	if res.Succeeded {
		msgType, routingKey = MessageTypeImported, RoutingKeyImported
	}

	return routingKey, &Message{
		ID:   uuid.New().String(),
		Type: msgType,
		Payload: ImportPayload{
			ImportID:     res.ImportID,
			WorkflowID:   res.WorkflowID,
			WorkflowName: res.WorkflowName,
			BaseURL:      res.BaseURL,
			SourceFile:   res.SourceFile,
			Scheme:       res.Scheme,
			Endpoint:     res.Endpoint,
			Attempts:     len(res.Attempts),
			Error:        res.Error,
		},
		Timestamp: time.Now(),
	}
}
