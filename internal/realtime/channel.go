package realtime

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

// Signal is what a per-appointment subscriber is told.
type Signal int

const (
	// SignalChanged means the appointment changed.
	SignalChanged Signal = iota
	// SignalResync means changes may have been missed; reload everything.
	SignalResync
)

// Channel routes broker changes to in-process subscribers. A subscriber
// learns only that its appointment changed and is expected to re-read the
// full view. Delivery is at least once and unordered.
type Channel struct {
	broker Broker
	log    logrus.FieldLogger

	mu      sync.RWMutex
	next    uint64
	byID    map[uint]map[uint64]func(Signal)
	every   map[uint64]func(uint)
	resyncs map[uint64]func()
}

func NewChannel(broker Broker, log logrus.FieldLogger) *Channel {
	return &Channel{
		broker:  broker,
		log:     log.WithField("component", "realtime"),
		byID:    make(map[uint]map[uint64]func(Signal)),
		every:   make(map[uint64]func(uint)),
		resyncs: make(map[uint64]func()),
	}
}

// Start attaches the channel to the broker feed until ctx is done.
func (c *Channel) Start(ctx context.Context) error {
	return c.broker.Listen(ctx, c.dispatch, c.resyncAll)
}

// Publish implements the change notifier used by the use cases.
func (c *Channel) Publish(ctx context.Context, appointmentID uint) error {
	if err := c.broker.Publish(ctx, appointmentID); err != nil {
		c.log.WithError(err).WithField("appointment_id", appointmentID).Warn("change not published")
		return err
	}
	return nil
}

// Subscribe calls onSignal whenever appointmentID changes and whenever the
// feed recovers from a gap. onSignal runs on the broker goroutine and must
// not block.
func (c *Channel) Subscribe(appointmentID uint, onSignal func(Signal)) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++

	subs, ok := c.byID[appointmentID]
	if !ok {
		subs = make(map[uint64]func(Signal))
		c.byID[appointmentID] = subs
	}
	subs[id] = onSignal

	return &Subscription{cancel: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.byID[appointmentID], id)
		if len(c.byID[appointmentID]) == 0 {
			delete(c.byID, appointmentID)
		}
	}}
}

// SubscribeAll observes every appointment.
func (c *Channel) SubscribeAll(onChange func(appointmentID uint)) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	c.every[id] = onChange

	return &Subscription{cancel: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.every, id)
	}}
}

// OnResync calls fn whenever the feed recovers from a gap. Like the other
// callbacks it must not block.
func (c *Channel) OnResync(fn func()) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := c.next
	c.next++
	c.resyncs[id] = fn

	return &Subscription{cancel: func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.resyncs, id)
	}}
}

// Subscribers reports how many viewers watch appointmentID.
func (c *Channel) Subscribers(appointmentID uint) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID[appointmentID])
}

func (c *Channel) dispatch(ch Change) {
	c.mu.RLock()
	viewers := make([]func(Signal), 0, len(c.byID[ch.AppointmentID]))
	for _, fn := range c.byID[ch.AppointmentID] {
		viewers = append(viewers, fn)
	}
	watchers := make([]func(uint), 0, len(c.every))
	for _, fn := range c.every {
		watchers = append(watchers, fn)
	}
	c.mu.RUnlock()

	for _, fn := range viewers {
		fn(SignalChanged)
	}
	for _, fn := range watchers {
		fn(ch.AppointmentID)
	}
}

// resyncAll tells every viewer and every resync hook that changes were
// missed while the broker was disconnected.
func (c *Channel) resyncAll() {
	c.mu.RLock()
	var viewers []func(Signal)
	for _, subs := range c.byID {
		for _, fn := range subs {
			viewers = append(viewers, fn)
		}
	}
	hooks := make([]func(), 0, len(c.resyncs))
	for _, fn := range c.resyncs {
		hooks = append(hooks, fn)
	}
	c.mu.RUnlock()

	c.log.WithField("viewers", len(viewers)).Info("resyncing after feed gap")

	for _, fn := range viewers {
		fn(SignalResync)
	}
	for _, fn := range hooks {
		fn()
	}
}

type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}

var _ domain.Notifier = (*Channel)(nil)
