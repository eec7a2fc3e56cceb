package appointment

import "github.com/BruksfildServices01/field-service/internal/models"

// DeriveStatus computes the overall status from the appointment's current
// status and a complete, freshly read set of its assignments.
//
// The "all completed" branch depends on every row, so callers must never
// pass a cached or partial slice. Derivation stops at pending review;
// completion is an administrative decision.
func DeriveStatus(current Status, assignments []models.Assignment) Status {
	if len(assignments) == 0 {
		return current
	}
	if current.IsTerminal() {
		return current
	}

	allCompleted := true
	anyStarted := false
	for _, a := range assignments {
		if !a.HasCompleted {
			allCompleted = false
		}
		if a.HasStarted {
			anyStarted = true
		}
	}

	switch {
	case allCompleted:
		return StatusPendingReview
	case anyStarted:
		return StatusInProgress
	default:
		return StatusConfirmed
	}
}

// Progress summarises assignment flags for list views.
type Progress struct {
	Assigned  int `json:"assigned"`
	Started   int `json:"started"`
	Completed int `json:"completed"`
}

func Summarize(assignments []models.Assignment) Progress {
	p := Progress{Assigned: len(assignments)}
	for _, a := range assignments {
		if a.HasStarted {
			p.Started++
		}
		if a.HasCompleted {
			p.Completed++
		}
	}
	return p
}
