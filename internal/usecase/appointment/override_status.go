package appointment

import (
	"context"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
)

const maxOverrideAttempts = 3

// OverrideStatus is the administrative status change: promoting a reviewed
// appointment to completed, or cancelling one that is still open.
type OverrideStatus struct {
	repo     domain.Repository
	notifier domain.Notifier
	audit    *audit.Dispatcher
}

func NewOverrideStatus(
	repo domain.Repository,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
) *OverrideStatus {
	return &OverrideStatus{
		repo:     repo,
		notifier: notifier,
		audit:    audit,
	}
}

func (uc *OverrideStatus) Execute(
	ctx context.Context,
	appointmentID uint,
	target string,
	adminID uint,
) (*models.Appointment, error) {

	to, err := domain.ParseStatus(target)
	if err != nil {
		return nil, err
	}

	// A derivation may move the row between our read and our write; the
	// override is re-validated against whatever it moved to.
	for attempt := 0; attempt < maxOverrideAttempts; attempt++ {

		ap, err := uc.repo.GetAppointment(ctx, appointmentID)
		if err != nil {
			return nil, err
		}

		from := domain.Status(ap.Status)
		if err := domain.Override(ap, to); err != nil {
			return nil, err
		}

		ok, err := uc.repo.OverrideStatus(ctx, appointmentID, from, to)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		uc.audit.Dispatch(audit.Appointment(
			ap.ID,
			audit.ActionStatusOverridden,
			audit.RoleAdmin,
			uintPtr(adminID),
			map[string]any{"from": from, "to": to},
		))

		notify(ctx, uc.notifier, ap.ID)
		return ap, nil
	}

	return nil, domain.ErrInvalidTransition
}
