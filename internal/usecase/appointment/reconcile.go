package appointment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

const maxDeriveAttempts = 5

// Reconciler re-derives an appointment's status from a fresh read of all
// its assignments and persists it.
type Reconciler struct {
	appointments domain.Repository
	assignments  domain.AssignmentStore
	notifier     domain.Notifier
	audit        *audit.Dispatcher
	log          logrus.FieldLogger
}

func NewReconciler(
	appointments domain.Repository,
	assignments domain.AssignmentStore,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
	log logrus.FieldLogger,
) *Reconciler {
	return &Reconciler{
		appointments: appointments,
		assignments:  assignments,
		notifier:     notifier,
		audit:        audit,
		log:          log.WithField("component", "reconciler"),
	}
}

// Reconcile returns the appointment's status after derivation and whether
// this call changed it. A change is published to viewers.
//
// The write is a compare-and-set on the status read at the start of the
// attempt; losing it means someone else wrote in between, so everything is
// read again.
func (r *Reconciler) Reconcile(
	ctx context.Context,
	appointmentID uint,
) (domain.Status, bool, error) {

	for attempt := 0; attempt < maxDeriveAttempts; attempt++ {

		ap, err := r.appointments.GetAppointment(ctx, appointmentID)
		if err != nil {
			return "", false, err
		}

		stored, err := r.assignments.ListByAppointment(ctx, appointmentID)
		if err != nil {
			return "", false, err
		}

		current := domain.Status(ap.Status)
		next, changed := domain.Rederive(ap, stored)
		if !changed {
			return current, false, nil
		}

		ok, err := r.appointments.SetDerivedStatus(ctx, appointmentID, current, next)
		if err != nil {
			return "", false, err
		}
		if !ok {
			continue
		}

		r.log.WithFields(logrus.Fields{
			"appointment_id": appointmentID,
			"from":           current,
			"to":             next,
		}).Info("status derived")

		r.audit.Dispatch(audit.Appointment(
			appointmentID,
			audit.ActionStatusDerived,
			audit.RoleSystem,
			nil,
			map[string]any{"from": current, "to": next},
		))

		notify(ctx, r.notifier, appointmentID)
		return next, true, nil
	}

	return "", false, fmt.Errorf("reconcile appointment %d: status kept changing", appointmentID)
}

// settle runs after a worker mutation. The mutation is already durable, so
// a failed derivation is logged and left to the healer rather than
// reported to the worker.
func (r *Reconciler) settle(ctx context.Context, appointmentID uint) domain.Status {
	status, changed, err := r.Reconcile(ctx, appointmentID)
	if err != nil {
		r.log.WithError(err).WithField("appointment_id", appointmentID).Warn("derivation deferred to healer")
		if ap, getErr := r.appointments.GetAppointment(ctx, appointmentID); getErr == nil {
			status = domain.Status(ap.Status)
		}
	}
	if !changed {
		// The row change itself still needs announcing.
		notify(ctx, r.notifier, appointmentID)
	}
	return status
}
