package appointment

import (
	"context"
	"errors"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
	"github.com/BruksfildServices01/field-service/internal/timezone"
)

// AssignWorkers adds workers to an existing appointment. Pairs that already
// exist are skipped, so progress recorded on them is never touched and the
// call can be repeated with the full desired list.
type AssignWorkers struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
	directory   domain.Directory
	reconciler  *Reconciler
	audit       *audit.Dispatcher
	clock       timezone.Clock
}

func NewAssignWorkers(
	repo domain.Repository,
	assignments domain.AssignmentStore,
	directory domain.Directory,
	reconciler *Reconciler,
	audit *audit.Dispatcher,
	clock timezone.Clock,
) *AssignWorkers {
	return &AssignWorkers{
		repo:        repo,
		assignments: assignments,
		directory:   directory,
		reconciler:  reconciler,
		audit:       audit,
		clock:       clock,
	}
}

func (uc *AssignWorkers) Execute(
	ctx context.Context,
	appointmentID uint,
	workerIDs []uint,
	adminID uint,
) ([]models.Assignment, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if domain.Status(ap.Status).IsTerminal() {
		return nil, domain.ErrAppointmentClosed
	}

	ids := uniqueIDs(workerIDs)
	for _, id := range ids {
		if _, err := uc.directory.GetWorkerByID(ctx, id); err != nil {
			return nil, err
		}
	}

	existing, err := uc.assignments.ListByAppointment(ctx, ap.ID)
	if err != nil {
		return nil, err
	}

	// The legacy staff member would vanish from the effective set once real
	// rows exist, so keep them as a row of their own.
	if domain.IsLegacy(ap, existing) {
		if _, _, err := materialize(ctx, uc.assignments, ap, *ap.StaffID, uc.clock()); err != nil {
			return nil, err
		}
		if existing, err = uc.assignments.ListByAppointment(ctx, ap.ID); err != nil {
			return nil, err
		}
	}

	assigned := make(map[uint]struct{}, len(existing))
	for _, a := range existing {
		assigned[a.WorkerID] = struct{}{}
	}

	added := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := assigned[id]; ok {
			continue
		}
		if _, err := uc.assignments.Assign(ctx, ap.ID, id); err != nil {
			if errors.Is(err, domain.ErrDuplicateAssignment) {
				continue
			}
			return nil, err
		}
		added = append(added, id)
	}

	if len(added) > 0 {
		uc.audit.Dispatch(audit.Appointment(
			ap.ID,
			audit.ActionWorkersAssigned,
			audit.RoleAdmin,
			uintPtr(adminID),
			map[string]any{"added": added},
		))

		// A new unstarted worker can pull pending_review back to in_progress.
		uc.reconciler.settle(ctx, ap.ID)
	}

	return uc.assignments.ListByAppointment(ctx, ap.ID)
}
