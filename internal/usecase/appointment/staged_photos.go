package appointment

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/dto"
	"github.com/BruksfildServices01/field-service/internal/models"
)

// ======================================================
// STAGE
// ======================================================

// StagePhoto uploads an image and keeps it pending for the worker's next
// submission. Nothing becomes evidence until the submission commits.
type StagePhoto struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
	staging     domain.StagingBuffer
	storage     domain.EvidenceStorage
}

func NewStagePhoto(
	repo domain.Repository,
	assignments domain.AssignmentStore,
	staging domain.StagingBuffer,
	storage domain.EvidenceStorage,
) *StagePhoto {
	return &StagePhoto{
		repo:        repo,
		assignments: assignments,
		staging:     staging,
		storage:     storage,
	}
}

func (uc *StagePhoto) Execute(
	ctx context.Context,
	publicID uuid.UUID,
	workerID uint,
	image []byte,
	contentType string,
) (*dto.StagedView, error) {

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	a, err := workerAssignment(ctx, uc.assignments, ap, workerID)
	if err != nil {
		return nil, err
	}
	if a.HasCompleted {
		return nil, domain.ErrAlreadyCompleted
	}
	if domain.Status(ap.Status).IsTerminal() {
		return nil, domain.ErrAppointmentClosed
	}

	url, err := uc.storage.Upload(ctx, ap.ID, image, contentType)
	if err != nil {
		return nil, err
	}

	idx, err := uc.staging.Stage(ctx, ap.ID, workerID, url)
	if err != nil {
		return nil, err
	}

	return &dto.StagedView{Index: idx, URL: url}, nil
}

// ======================================================
// UNSTAGE
// ======================================================

type UnstagePhoto struct {
	repo    domain.Repository
	staging domain.StagingBuffer
}

func NewUnstagePhoto(
	repo domain.Repository,
	staging domain.StagingBuffer,
) *UnstagePhoto {
	return &UnstagePhoto{
		repo:    repo,
		staging: staging,
	}
}

func (uc *UnstagePhoto) Execute(
	ctx context.Context,
	publicID uuid.UUID,
	workerID uint,
	index int,
) ([]dto.StagedView, error) {

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}

	if err := uc.staging.Unstage(ctx, ap.ID, workerID, index); err != nil {
		return nil, err
	}

	return stagedViews(ctx, uc.staging, ap.ID, workerID)
}

// ======================================================
// LIST
// ======================================================

type ListStagedPhotos struct {
	repo    domain.Repository
	staging domain.StagingBuffer
}

func NewListStagedPhotos(
	repo domain.Repository,
	staging domain.StagingBuffer,
) *ListStagedPhotos {
	return &ListStagedPhotos{
		repo:    repo,
		staging: staging,
	}
}

func (uc *ListStagedPhotos) Execute(
	ctx context.Context,
	publicID uuid.UUID,
	workerID uint,
) ([]dto.StagedView, error) {

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return stagedViews(ctx, uc.staging, ap.ID, workerID)
}

func stagedViews(
	ctx context.Context,
	staging domain.StagingBuffer,
	appointmentID uint,
	workerID uint,
) ([]dto.StagedView, error) {

	refs, err := staging.Staged(ctx, appointmentID, workerID)
	if err != nil {
		return nil, err
	}

	out := make([]dto.StagedView, 0, len(refs))
	for i, ref := range refs {
		out = append(out, dto.StagedView{Index: i, URL: ref})
	}
	return out, nil
}

// workerAssignment reads workerID's effective assignment without writing.
func workerAssignment(
	ctx context.Context,
	assignments domain.AssignmentStore,
	ap *models.Appointment,
	workerID uint,
) (*models.Assignment, error) {

	stored, err := assignments.ListByAppointment(ctx, ap.ID)
	if err != nil {
		return nil, err
	}

	a, ok := findAssignment(ap, stored, workerID)
	if !ok {
		return nil, domain.ErrWorkerNotAssigned
	}
	return a, nil
}
