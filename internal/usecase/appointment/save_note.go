package appointment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
)

// SaveNote stores a worker's free-text note, replacing any earlier one.
type SaveNote struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
	notes       domain.NoteStore
	notifier    domain.Notifier
}

func NewSaveNote(
	repo domain.Repository,
	assignments domain.AssignmentStore,
	notes domain.NoteStore,
	notifier domain.Notifier,
) *SaveNote {
	return &SaveNote{
		repo:        repo,
		assignments: assignments,
		notes:       notes,
		notifier:    notifier,
	}
}

func (uc *SaveNote) Execute(
	ctx context.Context,
	publicID uuid.UUID,
	workerID uint,
	body string,
) (*models.WorkerNote, error) {

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if _, err := workerAssignment(ctx, uc.assignments, ap, workerID); err != nil {
		return nil, err
	}

	note, err := uc.notes.SaveNote(ctx, ap.ID, workerID, strings.TrimSpace(body))
	if err != nil {
		return nil, err
	}

	notify(ctx, uc.notifier, ap.ID)
	return note, nil
}
