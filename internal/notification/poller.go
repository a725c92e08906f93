package notification

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
)

// Outbox is the storage side the poller drains.
type Outbox interface {
	FetchPending(ctx context.Context, limit int) ([]Message, error)
	MarkSent(ctx context.Context, ids []string) error
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// Poller periodically publishes pending outbox messages to Kafka.
type Poller struct {
	outbox    Outbox
	writer    MessageWriter
	tick      time.Duration
	batchSize int
}

func NewPoller(outbox Outbox, writer MessageWriter) *Poller {
	return &Poller{outbox: outbox, writer: writer, tick: time.Second, batchSize: 100}
}

// NewKafkaWriter builds the writer used in production.
func NewKafkaWriter(topic string, brokers ...string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}
}

// Run blocks until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			p.publishPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (p *Poller) publishPending(ctx context.Context) {
	msgs, err := p.outbox.FetchPending(ctx, p.batchSize)
	if err != nil {
		slog.Error("failed to fetch outbox messages", slog.Any("err", err))
		return
	}
	if len(msgs) == 0 {
		return
	}

	sent := make([]string, 0, len(msgs))
	for _, m := range msgs {
		payload, err := json.Marshal(m)
		if err != nil {
			slog.Error("failed to marshal notification", slog.String("id", m.ID), slog.Any("err", err))
			continue
		}
		err = p.writer.WriteMessages(ctx, kafka.Message{
			Key:   []byte(m.Recipient),
			Value: payload,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte("notification.email")},
			},
		})
		if err != nil {
			slog.Error("failed to publish notification", slog.String("id", m.ID), slog.Any("err", err))
			continue
		}
		sent = append(sent, m.ID)
	}

	if err := p.outbox.MarkSent(ctx, sent); err != nil {
		slog.Error("failed to mark notifications as sent", slog.Any("err", err))
	}
}
