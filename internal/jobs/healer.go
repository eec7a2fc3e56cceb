package jobs

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/realtime"
)

const healerQueueSize = 256

// Reconciler re-derives one appointment's status.
type Reconciler interface {
	Reconcile(ctx context.Context, appointmentID uint) (domain.Status, bool, error)
}

// Healer re-derives every appointment that shows up on the change feed.
// It covers derivations that a worker request could not finish. After a
// feed gap it re-derives every open appointment, since it cannot know
// which announcements were lost.
type Healer struct {
	channel      *realtime.Channel
	appointments ActiveLister
	reconciler   Reconciler
	log          logrus.FieldLogger

	mu      sync.Mutex
	pending map[uint]struct{}
	queue   chan uint

	ctx  context.Context
	subs []*realtime.Subscription
	stop context.CancelFunc
	done chan struct{}
}

func NewHealer(
	channel *realtime.Channel,
	appointments ActiveLister,
	reconciler Reconciler,
	log logrus.FieldLogger,
) *Healer {
	return &Healer{
		channel:      channel,
		appointments: appointments,
		reconciler:   reconciler,
		log:          log.WithField("component", "healer"),
		pending:      make(map[uint]struct{}),
		queue:        make(chan uint, healerQueueSize),
	}
}

func (h *Healer) Start(ctx context.Context) {
	ctx, h.stop = context.WithCancel(ctx)
	h.ctx = ctx
	h.done = make(chan struct{})

	h.subs = []*realtime.Subscription{
		h.channel.SubscribeAll(h.enqueue),
		h.channel.OnResync(func() { go h.requeueActive() }),
	}

	go func() {
		defer close(h.done)
		for {
			select {
			case <-ctx.Done():
				return
			case id := <-h.queue:
				h.mu.Lock()
				delete(h.pending, id)
				h.mu.Unlock()
				h.heal(ctx, id)
			}
		}
	}()
}

// Stop unsubscribes and waits for the in-flight derivation.
func (h *Healer) Stop() {
	if h.stop == nil {
		return
	}
	for _, sub := range h.subs {
		sub.Unsubscribe()
	}
	h.stop()
	<-h.done
}

// enqueue runs on the broker goroutine, so it never blocks. A dropped id
// is picked up by the periodic sweep.
func (h *Healer) enqueue(appointmentID uint) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.pending[appointmentID]; ok {
		return
	}

	select {
	case h.queue <- appointmentID:
		h.pending[appointmentID] = struct{}{}
	default:
		h.log.WithField("appointment_id", appointmentID).Warn("healer queue full, leaving to sweep")
	}
}

func (h *Healer) requeueActive() {
	ctx, cancel := context.WithTimeout(h.ctx, sweepTimeout)
	defer cancel()

	ids, err := h.appointments.ListActiveAppointmentIDs(ctx, sweepBatch)
	if err != nil {
		if ctx.Err() == nil {
			h.log.WithError(err).Warn("resync: list active appointments")
		}
		return
	}
	for _, id := range ids {
		if !h.enqueueWait(ctx, id) {
			return
		}
	}
	h.log.WithField("appointments", len(ids)).Info("requeued after feed gap")
}

// enqueueWait is enqueue for callers off the broker goroutine: it waits for
// room instead of dropping.
func (h *Healer) enqueueWait(ctx context.Context, appointmentID uint) bool {
	h.mu.Lock()
	if _, ok := h.pending[appointmentID]; ok {
		h.mu.Unlock()
		return true
	}
	h.pending[appointmentID] = struct{}{}
	h.mu.Unlock()

	select {
	case h.queue <- appointmentID:
		return true
	case <-ctx.Done():
		h.mu.Lock()
		delete(h.pending, appointmentID)
		h.mu.Unlock()
		return false
	}
}

func (h *Healer) heal(ctx context.Context, appointmentID uint) {
	status, changed, err := h.reconciler.Reconcile(ctx, appointmentID)
	if err != nil {
		if ctx.Err() == nil {
			h.log.WithError(err).WithField("appointment_id", appointmentID).Warn("heal failed")
		}
		return
	}
	if changed {
		h.log.WithFields(logrus.Fields{
			"appointment_id": appointmentID,
			"status":         status,
		}).Info("status healed")
	}
}
