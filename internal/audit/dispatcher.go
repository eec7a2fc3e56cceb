package audit

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

const (
	ActionAppointmentCreated = "appointment_created"
	ActionWorkersAssigned    = "workers_assigned"
	ActionWorkerStarted      = "worker_started"
	ActionWorkSubmitted      = "work_submitted"
	ActionStatusDerived      = "status_derived"
	ActionStatusOverridden   = "status_overridden"
	ActionRatingSubmitted    = "rating_submitted"
)

const (
	RoleWorker   = "worker"
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleSystem   = "system"
)

type Event struct {
	AppointmentID *uint
	ActorID       *uint
	ActorRole     string
	Action        string
	Metadata      any
}

// Sink persists audit events.
type Sink interface {
	Log(ctx context.Context, ev Event) error
}

type Dispatcher struct {
	sink  Sink
	log   logrus.FieldLogger
	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sink Sink, log logrus.FieldLogger) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		log:   log.WithField("component", "audit"),
		queue: make(chan Event, 100),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)

	for ev := range d.queue {
		if err := d.sink.Log(context.Background(), ev); err != nil {
			d.log.WithError(err).WithField("action", ev.Action).Error("audit write failed")
		}
	}
}

// Dispatch never blocks the caller. When the queue is full the event is
// dropped.
func (d *Dispatcher) Dispatch(ev Event) {
	if d == nil {
		return
	}

	defer func() {
		// Dispatch after Close.
		if recover() != nil {
			d.log.WithField("action", ev.Action).Warn("audit dispatcher closed, dropping event")
		}
	}()

	select {
	case d.queue <- ev:
	default:
		d.log.WithField("action", ev.Action).Warn("audit queue full, dropping event")
	}
}

// Close drains queued events and stops the worker.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.queue) })
	<-d.done
}

// Appointment is a shorthand for building an event about one appointment.
func Appointment(appointmentID uint, action, role string, actorID *uint, metadata any) Event {
	id := appointmentID
	return Event{
		AppointmentID: &id,
		ActorID:       actorID,
		ActorRole:     role,
		Action:        action,
		Metadata:      metadata,
	}
}
