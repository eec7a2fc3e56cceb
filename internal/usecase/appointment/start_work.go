package appointment

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
	"github.com/BruksfildServices01/field-service/internal/timezone"
)

type StartWork struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
	reconciler  *Reconciler
	audit       *audit.Dispatcher
	clock       timezone.Clock
}

func NewStartWork(
	repo domain.Repository,
	assignments domain.AssignmentStore,
	reconciler *Reconciler,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *StartWork {
	return &StartWork{
		repo:        repo,
		assignments: assignments,
		reconciler:  reconciler,
		audit:       audit,
		clock:       clock,
	}
}

// Execute starts workerID's part of the job. Starting twice is not an
// error; the first start time is kept.
func (uc *StartWork) Execute(
	ctx context.Context,
	publicID uuid.UUID,
	workerID uint,
) (*models.Assignment, error) {

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	// A closed appointment is only read, so a legacy row is never
	// materialised on it.
	if domain.Status(ap.Status).IsTerminal() {
		a, err := workerAssignment(ctx, uc.assignments, ap, workerID)
		if err != nil {
			return nil, err
		}
		if !a.HasStarted {
			return nil, domain.ErrAppointmentClosed
		}
		return a, nil
	}

	now := uc.clock()

	a, materialized, err := materialize(ctx, uc.assignments, ap, workerID, now)
	if err != nil {
		return nil, err
	}
	if a.HasStarted && !materialized {
		return a, nil
	}

	if err := uc.assignments.Start(ctx, ap.ID, workerID, now); err != nil {
		return nil, err
	}

	if !a.HasStarted {
		uc.audit.Dispatch(audit.Appointment(
			ap.ID,
			audit.ActionWorkerStarted,
			audit.RoleWorker,
			uintPtr(workerID),
			nil,
		))
	}

	uc.reconciler.settle(ctx, ap.ID)

	return uc.assignments.Get(ctx, ap.ID, workerID)
}
