package appointment

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
)

// SubmitRating records the customer's single rating of a completed
// appointment.
type SubmitRating struct {
	repo     domain.Repository
	ratings  domain.RatingStore
	notifier domain.Notifier
	audit    *audit.Dispatcher
}

func NewSubmitRating(
	repo domain.Repository,
	ratings domain.RatingStore,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
) *SubmitRating {
	return &SubmitRating{
		repo:     repo,
		ratings:  ratings,
		notifier: notifier,
		audit:    audit,
	}
}

func (uc *SubmitRating) Execute(
	ctx context.Context,
	publicID uuid.UUID,
	score int,
	comment string,
) (*models.Rating, error) {

	if err := domain.ValidateRating(score); err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	if domain.Status(ap.Status) != domain.StatusCompleted {
		return nil, domain.ErrNotCompleted
	}

	r := &models.Rating{
		AppointmentID: ap.ID,
		Score:         score,
		Comment:       strings.TrimSpace(comment),
	}

	// The unique index decides between concurrent submissions.
	if err := uc.ratings.CreateRating(ctx, r); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Appointment(
		ap.ID,
		audit.ActionRatingSubmitted,
		audit.RoleCustomer,
		nil,
		map[string]any{"rating": score},
	))

	notify(ctx, uc.notifier, ap.ID)
	return r, nil
}
