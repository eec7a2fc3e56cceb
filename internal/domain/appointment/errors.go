package appointment

import "github.com/BruksfildServices01/field-service/internal/httperr"

var (
	ErrNoEvidence          = httperr.ErrBusiness("no_evidence")
	ErrNotStarted          = httperr.ErrBusiness("not_started")
	ErrAlreadyCompleted    = httperr.ErrBusiness("already_completed")
	ErrAlreadyRated        = httperr.ErrBusiness("already_rated")
	ErrNotCompleted        = httperr.ErrBusiness("not_completed")
	ErrDuplicateAssignment = httperr.ErrBusiness("duplicate_assignment")
	ErrInvalidRating       = httperr.ErrBusiness("invalid_rating")
	ErrInvalidTransition   = httperr.ErrBusiness("invalid_transition")
	ErrAppointmentNotFound = httperr.ErrBusiness("appointment_not_found")
	ErrWorkerNotFound      = httperr.ErrBusiness("worker_not_found")
	ErrCustomerNotFound    = httperr.ErrBusiness("customer_not_found")
	ErrWorkerNotAssigned   = httperr.ErrBusiness("worker_not_assigned")
	ErrStagedPhotoNotFound = httperr.ErrBusiness("staged_photo_not_found")
	ErrAppointmentClosed   = httperr.ErrBusiness("appointment_closed")
)
