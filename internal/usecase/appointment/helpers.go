package appointment

import (
	"context"
	"errors"
	"time"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
)

// findAssignment looks workerID up in the effective assignment set, which
// includes the legacy virtual row.
func findAssignment(
	ap *models.Appointment,
	stored []models.Assignment,
	workerID uint,
) (*models.Assignment, bool) {

	for _, a := range domain.EffectiveAssignments(ap, stored) {
		if a.WorkerID == workerID {
			return &a, true
		}
	}
	return nil, false
}

// materialize returns workerID's stored row. On a legacy appointment the
// virtual row of its staff member is written first, carrying over its
// started and completed flags, so the worker's action can proceed normally.
func materialize(
	ctx context.Context,
	assignments domain.AssignmentStore,
	ap *models.Appointment,
	workerID uint,
	now time.Time,
) (*models.Assignment, bool, error) {

	a, err := assignments.Get(ctx, ap.ID, workerID)
	if err == nil {
		return a, false, nil
	}
	if !errors.Is(err, domain.ErrWorkerNotAssigned) {
		return nil, false, err
	}

	stored, err := assignments.ListByAppointment(ctx, ap.ID)
	if err != nil {
		return nil, false, err
	}
	if !domain.IsLegacy(ap, stored) {
		return nil, false, domain.ErrWorkerNotAssigned
	}

	virtual, _ := domain.VirtualAssignment(ap)
	if virtual.WorkerID != workerID {
		return nil, false, domain.ErrWorkerNotAssigned
	}

	// A concurrent action may have materialised the row already.
	if _, err := assignments.Assign(ctx, ap.ID, workerID); err != nil &&
		!errors.Is(err, domain.ErrDuplicateAssignment) {
		return nil, false, err
	}
	if virtual.HasStarted {
		if err := assignments.Start(ctx, ap.ID, workerID, now); err != nil {
			return nil, false, err
		}
	}
	if virtual.HasCompleted {
		if err := assignments.Complete(ctx, ap.ID, workerID, now); err != nil {
			return nil, false, err
		}
	}

	a, err = assignments.Get(ctx, ap.ID, workerID)
	if err != nil {
		return nil, false, err
	}
	return a, true, nil
}

// notify is best effort: a lost signal is healed by the next change or the
// periodic sweep.
func notify(ctx context.Context, n domain.Notifier, appointmentID uint) {
	if n == nil {
		return
	}
	_ = n.Publish(ctx, appointmentID)
}

func uintPtr(v uint) *uint {
	return &v
}
