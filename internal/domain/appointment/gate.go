package appointment

import "github.com/BruksfildServices01/field-service/internal/models"

// CanSubmit decides whether a worker's completion may be accepted.
// Evidence is checked first so an empty submission is always reported as
// such, whatever the worker's state.
func CanSubmit(a *models.Assignment, pendingPhotos int) error {
	if pendingPhotos <= 0 {
		return ErrNoEvidence
	}
	if a == nil || !a.HasStarted {
		return ErrNotStarted
	}
	if a.HasCompleted {
		return ErrAlreadyCompleted
	}
	return nil
}

// ValidateRating checks the score range accepted from customers.
func ValidateRating(score int) error {
	if score < 1 || score > 5 {
		return ErrInvalidRating
	}
	return nil
}
