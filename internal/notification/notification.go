// Package notification delivers best-effort messages (seller emails) off the
// request path. Producers call Notify, which never blocks and never fails;
// delivery problems are logged.
package notification

import (
	"context"
	"log/slog"
	"time"
)

// Message is one outbound notification.
type Message struct {
	ID        string    `json:"id"`
	Recipient string    `json:"recipient"`
	Subject   string    `json:"subject"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

// Notifier accepts messages for asynchronous delivery.
type Notifier interface {
	Notify(msg Message)
}

// Sender hands a message to the next stage (outbox, log).
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the structured log. Used when no outbox is
// configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	log := s.Logger
	if log == nil {
		log = slog.Default()
	}
	log.Info("notification",
		slog.String("id", msg.ID),
		slog.String("recipient", msg.Recipient),
		slog.String("subject", msg.Subject),
	)
	return nil
}

// Discard drops every message.
type Discard struct{}

func (Discard) Notify(Message) {}
