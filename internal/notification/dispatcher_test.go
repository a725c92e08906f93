package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

type recordingSender struct {
	mu   sync.Mutex
	msgs []Message
	err  error
	gate chan struct{}
}

func (r *recordingSender) Send(_ context.Context, msg Message) error {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return r.err
}

func (r *recordingSender) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestDispatcher_DeliversAndDrains(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{}
	d := NewDispatcher(sender, 3, 16)
	d.Start()

	for i := 0; i < 10; i++ {
		d.Notify(Message{Recipient: "seller@example.com", Subject: "hi"})
	}
	d.Close()

	assert.Equal(t, 10, sender.count())
	for _, m := range sender.msgs {
		assert.NotEmpty(t, m.ID)
		assert.False(t, m.CreatedAt.IsZero())
	}
}

func TestDispatcher_SenderErrorsAreSwallowed(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{err: errors.New("smtp down")}
	d := NewDispatcher(sender, 1, 4)
	d.Start()
	d.Notify(Message{Recipient: "a@b.c"})
	d.Notify(Message{Recipient: "a@b.c"})
	d.Close()

	assert.Equal(t, 2, sender.count())
}

func TestDispatcher_FullQueueDrops(t *testing.T) {
	defer goleak.VerifyNone(t)

	sender := &recordingSender{gate: make(chan struct{})}
	d := NewDispatcher(sender, 1, 1)
	// workers not started yet, so the single slot fills immediately
	d.Notify(Message{ID: "1"})
	d.Notify(Message{ID: "2"})
	d.Notify(Message{ID: "3"})

	d.Start()
	close(sender.gate)
	d.Close()

	assert.Equal(t, 1, sender.count())
	assert.Equal(t, "1", sender.msgs[0].ID)
}

func TestDispatcher_NotifyAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := NewDispatcher(&recordingSender{}, 1, 1)
	d.Start()
	d.Close()
	d.Close()

	assert.NotPanics(t, func() { d.Notify(Message{ID: "late"}) })
}
