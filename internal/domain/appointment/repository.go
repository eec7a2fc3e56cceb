package appointment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/field-service/internal/models"
)

type Repository interface {
	// -------- Appointment --------
	GetAppointment(
		ctx context.Context,
		id uint,
	) (*models.Appointment, error)

	GetAppointmentByPublicID(
		ctx context.Context,
		publicID uuid.UUID,
	) (*models.Appointment, error)

	CreateAppointment(
		ctx context.Context,
		ap *models.Appointment,
	) error

	// SetDerivedStatus moves a non-terminal row from `from` to `to`. It
	// reports false when the row no longer holds `from`, so a derivation
	// computed from stale reads is never written.
	SetDerivedStatus(
		ctx context.Context,
		appointmentID uint,
		from Status,
		to Status,
	) (bool, error)

	// OverrideStatus moves the row from `from` to `to` only if it still holds
	// `from`, so a concurrent change makes the override fail instead of
	// clobbering it.
	OverrideStatus(
		ctx context.Context,
		appointmentID uint,
		from Status,
		to Status,
	) (bool, error)

	ListAppointmentsForPeriod(
		ctx context.Context,
		start time.Time,
		end time.Time,
	) ([]models.Appointment, error)

	// ListActiveAppointmentIDs returns non-terminal appointments, newest first.
	ListActiveAppointmentIDs(
		ctx context.Context,
		limit int,
	) ([]uint, error)
}

// AssignmentStore holds per-worker progress. Every mutation touches one row.
type AssignmentStore interface {
	Assign(ctx context.Context, appointmentID, workerID uint) (*models.Assignment, error)
	Start(ctx context.Context, appointmentID, workerID uint, now time.Time) error
	Complete(ctx context.Context, appointmentID, workerID uint, now time.Time) error
	Get(ctx context.Context, appointmentID, workerID uint) (*models.Assignment, error)
	ListByAppointment(ctx context.Context, appointmentID uint) ([]models.Assignment, error)
	ListByAppointments(ctx context.Context, appointmentIDs []uint) (map[uint][]models.Assignment, error)
}

// EvidenceLedger is the append-only list of committed evidence photos.
type EvidenceLedger interface {
	Commit(ctx context.Context, appointmentID, workerID uint, refs []string) error
	ListByAppointment(ctx context.Context, appointmentID uint) ([]models.EvidencePhoto, error)
}

// SubmissionStore commits a worker's evidence and completion together.
// Photos are written before the completion flag.
type SubmissionStore interface {
	CommitSubmission(
		ctx context.Context,
		appointmentID uint,
		workerID uint,
		refs []string,
		now time.Time,
	) error
}

type RatingStore interface {
	// CreateRating fails with ErrAlreadyRated when the appointment already
	// has a rating, including when a concurrent insert won the race.
	CreateRating(ctx context.Context, r *models.Rating) error
	GetRating(ctx context.Context, appointmentID uint) (*models.Rating, error)
}

type NoteStore interface {
	SaveNote(ctx context.Context, appointmentID, workerID uint, body string) (*models.WorkerNote, error)
	ListNotes(ctx context.Context, appointmentID uint) ([]models.WorkerNote, error)
}

// Directory resolves customers and workers owned by other parts of the system.
type Directory interface {
	GetCustomerByID(ctx context.Context, id uint) (*models.Customer, error)
	GetWorkerByID(ctx context.Context, id uint) (*models.User, error)
	ListWorkersByIDs(ctx context.Context, ids []uint) (map[uint]models.User, error)
}

// StagingBuffer holds a worker's photos between upload and submission.
// Contents are not evidence until committed to the ledger.
type StagingBuffer interface {
	Stage(ctx context.Context, appointmentID, workerID uint, ref string) (int, error)
	Unstage(ctx context.Context, appointmentID, workerID uint, index int) error
	Staged(ctx context.Context, appointmentID, workerID uint) ([]string, error)
	// Drop removes one staged copy of each ref, leaving anything staged
	// after the refs were read.
	Drop(ctx context.Context, appointmentID, workerID uint, refs []string) error
}

// EvidenceStorage stores an uploaded image and returns its public URL.
type EvidenceStorage interface {
	Upload(ctx context.Context, appointmentID uint, image []byte, contentType string) (string, error)
}

// Notifier announces that something about an appointment changed.
type Notifier interface {
	Publish(ctx context.Context, appointmentID uint) error
}
