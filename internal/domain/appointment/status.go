package appointment

import "github.com/BruksfildServices01/field-service/internal/httperr"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusConfirmed     Status = "confirmed"
	StatusInProgress    Status = "in_progress"
	StatusPendingReview Status = "pending_review"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
)

var knownStatuses = map[Status]struct{}{
	StatusConfirmed:     {},
	StatusInProgress:    {},
	StatusPendingReview: {},
	StatusCompleted:     {},
	StatusCancelled:     {},
}

// TerminalStatuses lists the states derivation never leaves.
var TerminalStatuses = []Status{StatusCompleted, StatusCancelled}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	_, ok := knownStatuses[s]
	return ok
}

func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", httperr.ErrBusiness("invalid_status")
	}
	return s, nil
}

// ===============================
// Validations
// ===============================

// CanOverride decides whether an administrator may move an appointment
// from current to target. Terminal states are final; completion is only
// reachable from review.
func CanOverride(current, target Status) error {
	if current.IsTerminal() {
		return ErrInvalidTransition
	}

	switch target {
	case StatusCompleted:
		if current != StatusPendingReview {
			return ErrInvalidTransition
		}
		return nil
	case StatusCancelled:
		return nil
	}

	return ErrInvalidTransition
}

// InitialStatus is the status of a freshly scheduled appointment.
func InitialStatus() Status {
	return StatusConfirmed
}
