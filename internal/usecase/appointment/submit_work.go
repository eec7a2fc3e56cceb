package appointment

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/timezone"
)

type SubmitWorkInput struct {
	PublicID uuid.UUID
	WorkerID uint
	Note     *string
}

type SubmitWorkResult struct {
	Photos int           `json:"photos"`
	Status domain.Status `json:"status"`
}

// SubmitWork commits the worker's staged photos as evidence, marks them
// complete and re-derives the appointment status.
type SubmitWork struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
	submissions domain.SubmissionStore
	notes       domain.NoteStore
	staging     domain.StagingBuffer
	gate        *CompletionGate
	reconciler  *Reconciler
	audit       *audit.Dispatcher
	clock       timezone.Clock
	log         logrus.FieldLogger
}

func NewSubmitWork(
	repo domain.Repository,
	assignments domain.AssignmentStore,
	submissions domain.SubmissionStore,
	notes domain.NoteStore,
	staging domain.StagingBuffer,
	gate *CompletionGate,
	reconciler *Reconciler,
	audit *audit.Dispatcher,
	clock timezone.Clock,
	log logrus.FieldLogger,
) *SubmitWork {
	return &SubmitWork{
		repo:        repo,
		assignments: assignments,
		submissions: submissions,
		notes:       notes,
		staging:     staging,
		gate:        gate,
		reconciler:  reconciler,
		audit:       audit,
		clock:       clock,
		log:         log.WithField("component", "submit_work"),
	}
}

func (uc *SubmitWork) Execute(
	ctx context.Context,
	in SubmitWorkInput,
) (*SubmitWorkResult, error) {

	// --------------------------------------------------
	// 1️⃣ Gate
	// --------------------------------------------------
	ap, err := uc.repo.GetAppointmentByPublicID(ctx, in.PublicID)
	if err != nil {
		return nil, err
	}

	refs, err := uc.staging.Staged(ctx, ap.ID, in.WorkerID)
	if err != nil {
		return nil, err
	}

	if err := uc.gate.CanSubmit(ctx, ap.ID, in.WorkerID, len(refs)); err != nil {
		return nil, err
	}

	now := uc.clock()

	if _, _, err := materialize(ctx, uc.assignments, ap, in.WorkerID, now); err != nil {
		return nil, err
	}

	// The note is an upsert, so writing it before the commit is harmless if
	// the commit then loses to a concurrent submit.
	if in.Note != nil {
		if body := strings.TrimSpace(*in.Note); body != "" {
			if _, err := uc.notes.SaveNote(ctx, ap.ID, in.WorkerID, body); err != nil {
				return nil, err
			}
		}
	}

	// --------------------------------------------------
	// 2️⃣ Evidence, then completion, as one unit
	// --------------------------------------------------
	if err := uc.submissions.CommitSubmission(ctx, ap.ID, in.WorkerID, refs, now); err != nil {
		return nil, err
	}

	// Only the committed refs leave the buffer; a photo uploaded while this
	// ran stays staged. The completion flag already blocks a second submit,
	// so a failed drop leaves stale entries but no duplicate evidence.
	if err := uc.staging.Drop(ctx, ap.ID, in.WorkerID, refs); err != nil {
		uc.log.WithError(err).WithFields(logrus.Fields{
			"appointment_id": ap.ID,
			"worker_id":      in.WorkerID,
		}).Warn("committed photos left in staging")
	}

	uc.audit.Dispatch(audit.Appointment(
		ap.ID,
		audit.ActionWorkSubmitted,
		audit.RoleWorker,
		uintPtr(in.WorkerID),
		map[string]any{"photos": len(refs)},
	))

	// --------------------------------------------------
	// 3️⃣ Fresh derivation
	// --------------------------------------------------
	status := uc.reconciler.settle(ctx, ap.ID)

	return &SubmitWorkResult{
		Photos: len(refs),
		Status: status,
	}, nil
}
