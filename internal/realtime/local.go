package realtime

import (
	"context"
	"sync"
)

// LocalBroker delivers changes inside a single process. Its subscription
// can never be lost, so it never asks for a resync.
type LocalBroker struct {
	mu    sync.RWMutex
	next  int
	sinks map[int]func(Change)
}

func NewLocalBroker() *LocalBroker {
	return &LocalBroker{sinks: make(map[int]func(Change))}
}

func (b *LocalBroker) Publish(_ context.Context, appointmentID uint) error {
	ch := newChange(appointmentID)

	b.mu.RLock()
	sinks := make([]func(Change), 0, len(b.sinks))
	for _, s := range b.sinks {
		sinks = append(sinks, s)
	}
	b.mu.RUnlock()

	for _, deliver := range sinks {
		deliver(ch)
	}
	return nil
}

func (b *LocalBroker) Listen(ctx context.Context, deliver func(Change), _ func()) error {
	b.mu.Lock()
	id := b.next
	b.next++
	b.sinks[id] = deliver
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.sinks, id)
		b.mu.Unlock()
	}()
	return nil
}

var _ Broker = (*LocalBroker)(nil)
