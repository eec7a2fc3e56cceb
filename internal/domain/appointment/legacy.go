package appointment

import "github.com/BruksfildServices01/field-service/internal/models"

// VirtualAssignment synthesises the assignment an appointment created before
// multi-worker support would have had. It only applies when the appointment
// carries a staff id and no assignment rows exist; nothing is written.
func VirtualAssignment(ap *models.Appointment) (models.Assignment, bool) {
	if ap == nil || ap.StaffID == nil {
		return models.Assignment{}, false
	}

	a := models.Assignment{
		AppointmentID: ap.ID,
		WorkerID:      *ap.StaffID,
	}

	switch Status(ap.Status) {
	case StatusInProgress:
		a.HasStarted = true
	case StatusPendingReview, StatusCompleted:
		a.HasStarted = true
		a.HasCompleted = true
	}

	return a, true
}

// EffectiveAssignments returns the stored rows, or the virtual legacy
// assignment when there are none.
func EffectiveAssignments(ap *models.Appointment, stored []models.Assignment) []models.Assignment {
	if len(stored) > 0 {
		return stored
	}
	if v, ok := VirtualAssignment(ap); ok {
		return []models.Assignment{v}
	}
	return stored
}

// IsLegacy reports whether reads of ap go through the virtual assignment.
func IsLegacy(ap *models.Appointment, stored []models.Assignment) bool {
	return len(stored) == 0 && ap != nil && ap.StaffID != nil
}
