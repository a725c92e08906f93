package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Dispatcher queues messages in memory and delivers them with a fixed pool
// of workers. A full queue drops the message.
type Dispatcher struct {
	sender      Sender
	queue       chan Message
	workers     int
	sendTimeout time.Duration

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewDispatcher(sender Sender, workers, buffer int) *Dispatcher {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		sender:      sender,
		queue:       make(chan Message, buffer),
		workers:     workers,
		sendTimeout: 5 * time.Second,
	}
}

// Start launches the workers. They exit once Close has drained the queue.
func (d *Dispatcher) Start() {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.work()
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for msg := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), d.sendTimeout)
		if err := d.sender.Send(ctx, msg); err != nil {
			slog.Error("notification delivery failed",
				slog.String("id", msg.ID),
				slog.String("recipient", msg.Recipient),
				slog.Any("err", err),
			)
		}
		cancel()
	}
}

// Notify enqueues msg without blocking.
func (d *Dispatcher) Notify(msg Message) {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		slog.Warn("notification dropped after shutdown", slog.String("id", msg.ID))
		return
	}
	select {
	case d.queue <- msg:
	default:
		slog.Warn("notification queue full, dropping message",
			slog.String("id", msg.ID),
			slog.String("recipient", msg.Recipient),
		)
	}
}

// Close stops accepting messages and waits for queued ones to be sent.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}
