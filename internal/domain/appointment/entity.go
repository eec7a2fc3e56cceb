package appointment

import (
	"github.com/BruksfildServices01/field-service/internal/models"
)

// ===============================
// Domain Actions
// ===============================

// Override applies an administrative status change to ap.
func Override(ap *models.Appointment, target Status) error {
	if err := CanOverride(Status(ap.Status), target); err != nil {
		return err
	}

	ap.Status = string(target)
	return nil
}

// Rederive recomputes ap's status from assignments and reports whether it
// changed. The legacy shim is applied before deriving.
func Rederive(ap *models.Appointment, stored []models.Assignment) (Status, bool) {
	current := Status(ap.Status)
	next := DeriveStatus(current, EffectiveAssignments(ap, stored))
	return next, next != current
}
