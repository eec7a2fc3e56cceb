package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const (
	sweepBatch   = 500
	sweepTimeout = 2 * time.Minute
)

// ActiveLister lists appointments whose status can still be derived.
type ActiveLister interface {
	ListActiveAppointmentIDs(ctx context.Context, limit int) ([]uint, error)
}

// Scheduler periodically re-derives every open appointment, catching
// changes whose announcement was lost.
type Scheduler struct {
	cronEngine   *cron.Cron
	appointments ActiveLister
	reconciler   Reconciler
	log          logrus.FieldLogger
	spec         string
}

func NewScheduler(
	appointments ActiveLister,
	reconciler Reconciler,
	log logrus.FieldLogger,
	spec string,
	loc *time.Location,
) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cronEngine:   cron.New(cron.WithLocation(loc)),
		appointments: appointments,
		reconciler:   reconciler,
		log:          log.WithField("component", "scheduler"),
		spec:         spec,
	}
}

func (s *Scheduler) Start() error {
	_, err := s.cronEngine.AddFunc(s.spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cronEngine.Start()
	s.log.WithField("spec", s.spec).Info("reconcile sweep scheduled")
	return nil
}

// Stop waits for a running sweep to finish.
func (s *Scheduler) Stop() {
	<-s.cronEngine.Stop().Done()
	s.log.Info("scheduler stopped")
}

// Sweep re-derives open appointments and returns how many changed.
func (s *Scheduler) Sweep(ctx context.Context) int {
	ids, err := s.appointments.ListActiveAppointmentIDs(ctx, sweepBatch)
	if err != nil {
		s.log.WithError(err).Error("sweep: list active appointments")
		return 0
	}

	healed := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		_, changed, err := s.reconciler.Reconcile(ctx, id)
		if err != nil {
			s.log.WithError(err).WithField("appointment_id", id).Warn("sweep: reconcile")
			continue
		}
		if changed {
			healed++
		}
	}

	s.log.WithFields(logrus.Fields{
		"checked": len(ids),
		"healed":  healed,
	}).Info("sweep finished")
	return healed
}
