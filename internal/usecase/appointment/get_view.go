package appointment

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/dto"
	"github.com/BruksfildServices01/field-service/internal/models"
)

// GetAppointmentView assembles the full read model viewers reload on every
// change signal. Assignments are always read fresh.
type GetAppointmentView struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
	evidence    domain.EvidenceLedger
	ratings     domain.RatingStore
	notes       domain.NoteStore
	directory   domain.Directory
	staging     domain.StagingBuffer
}

func NewGetAppointmentView(
	repo domain.Repository,
	assignments domain.AssignmentStore,
	evidence domain.EvidenceLedger,
	ratings domain.RatingStore,
	notes domain.NoteStore,
	directory domain.Directory,
	staging domain.StagingBuffer,
) *GetAppointmentView {
	return &GetAppointmentView{
		repo:        repo,
		assignments: assignments,
		evidence:    evidence,
		ratings:     ratings,
		notes:       notes,
		directory:   directory,
		staging:     staging,
	}
}

// ByID is the staff view.
func (uc *GetAppointmentView) ByID(
	ctx context.Context,
	appointmentID uint,
) (*dto.AppointmentView, error) {

	ap, err := uc.repo.GetAppointment(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	return uc.build(ctx, ap, true, nil)
}

// ByPublicID is the public link view. When stagedFor is set, that worker's
// pending photos are included.
func (uc *GetAppointmentView) ByPublicID(
	ctx context.Context,
	publicID uuid.UUID,
	stagedFor *uint,
) (*dto.AppointmentView, error) {

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return nil, err
	}
	return uc.build(ctx, ap, false, stagedFor)
}

// Resolve maps a public link to the appointment id change signals use.
func (uc *GetAppointmentView) Resolve(
	ctx context.Context,
	publicID uuid.UUID,
) (uint, error) {

	ap, err := uc.repo.GetAppointmentByPublicID(ctx, publicID)
	if err != nil {
		return 0, err
	}
	return ap.ID, nil
}

func (uc *GetAppointmentView) Exists(ctx context.Context, appointmentID uint) error {
	_, err := uc.repo.GetAppointment(ctx, appointmentID)
	return err
}

func (uc *GetAppointmentView) build(
	ctx context.Context,
	ap *models.Appointment,
	internal bool,
	stagedFor *uint,
) (*dto.AppointmentView, error) {

	stored, err := uc.assignments.ListByAppointment(ctx, ap.ID)
	if err != nil {
		return nil, err
	}
	effective := domain.EffectiveAssignments(ap, stored)

	ids := make([]uint, 0, len(effective))
	for _, a := range effective {
		ids = append(ids, a.WorkerID)
	}
	workers, err := uc.directory.ListWorkersByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	notes, err := uc.notes.ListNotes(ctx, ap.ID)
	if err != nil {
		return nil, err
	}
	noteBy := make(map[uint]string, len(notes))
	for _, n := range notes {
		noteBy[n.WorkerID] = n.Body
	}

	photos, err := uc.evidence.ListByAppointment(ctx, ap.ID)
	if err != nil {
		return nil, err
	}

	rating, err := uc.ratings.GetRating(ctx, ap.ID)
	if err != nil {
		return nil, err
	}

	view := &dto.AppointmentView{
		PublicID:    ap.PublicID.String(),
		Title:       ap.Title,
		Description: ap.Description,
		Location:    ap.Location,
		Date:        ap.Date.Format("2006-01-02"),
		StartTime:   ap.StartTime,
		EndTime:     ap.EndTime,
		Status:      ap.Status,
		Customer:    dto.CustomerView{Name: ap.Customer.Name},
		Workers:     make([]dto.WorkerView, 0, len(effective)),
		Progress:    domain.Summarize(effective),
		Legacy:      domain.IsLegacy(ap, stored),
		Photos:      make([]dto.PhotoView, 0, len(photos)),
	}

	if internal {
		view.ID = ap.ID
		view.Notes = ap.Notes
		view.Customer.Phone = ap.Customer.Phone
		view.Customer.Email = ap.Customer.Email
		view.Customer.Address = ap.Customer.Address
	}

	for _, a := range effective {
		view.Workers = append(view.Workers, dto.WorkerView{
			ID:           a.WorkerID,
			Name:         workers[a.WorkerID].Name,
			HasStarted:   a.HasStarted,
			StartedAt:    a.StartedAt,
			HasCompleted: a.HasCompleted,
			CompletedAt:  a.CompletedAt,
			Note:         noteBy[a.WorkerID],
		})
	}

	for _, p := range photos {
		view.Photos = append(view.Photos, dto.PhotoView{
			URL:         p.URL,
			CommittedBy: p.CommittedBy,
			CreatedAt:   p.CreatedAt,
		})
	}

	if rating != nil {
		view.Rating = &dto.RatingView{
			Rating:    rating.Score,
			Comment:   rating.Comment,
			CreatedAt: rating.CreatedAt,
		}
	}

	if stagedFor != nil {
		if _, ok := findAssignment(ap, stored, *stagedFor); ok {
			staged, err := stagedViews(ctx, uc.staging, ap.ID, *stagedFor)
			if err != nil {
				return nil, err
			}
			view.Staged = staged
		}
	}

	return view, nil
}
