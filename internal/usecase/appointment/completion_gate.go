package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

// CompletionGate decides whether a worker may submit their part of the job
// with pendingPhotos staged.
type CompletionGate struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
}

func NewCompletionGate(
	repo domain.Repository,
	assignments domain.AssignmentStore,
) *CompletionGate {
	return &CompletionGate{
		repo:        repo,
		assignments: assignments,
	}
}

// CanSubmit reports, in order: missing evidence, an unknown worker, a
// worker who has not started, a worker who already submitted, and a closed
// appointment.
func (g *CompletionGate) CanSubmit(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
	pendingPhotos int,
) error {

	if pendingPhotos <= 0 {
		return domain.ErrNoEvidence
	}

	ap, err := g.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	stored, err := g.assignments.ListByAppointment(ctx, appointmentID)
	if err != nil {
		return err
	}

	a, ok := findAssignment(ap, stored, workerID)
	if !ok {
		return domain.ErrWorkerNotAssigned
	}

	if err := domain.CanSubmit(a, pendingPhotos); err != nil {
		return err
	}

	if domain.Status(ap.Status).IsTerminal() {
		return domain.ErrAppointmentClosed
	}
	return nil
}
