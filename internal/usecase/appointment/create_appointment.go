package appointment

import (
	"context"
	"strings"

	"github.com/BruksfildServices01/field-service/internal/audit"
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/httperr"
	"github.com/BruksfildServices01/field-service/internal/models"
	"github.com/BruksfildServices01/field-service/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	CustomerID uint
	WorkerIDs  []uint

	Title       string
	Description string
	Location    string
	Notes       string

	Date      string
	StartTime string
	EndTime   string
}

// ======================================================
// USE CASE
// ======================================================

type CreateAppointment struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
	directory   domain.Directory
	notifier    domain.Notifier
	audit       *audit.Dispatcher
}

func NewCreateAppointment(
	repo domain.Repository,
	assignments domain.AssignmentStore,
	directory domain.Directory,
	notifier domain.Notifier,
	audit *audit.Dispatcher,
) *CreateAppointment {
	return &CreateAppointment{
		repo:        repo,
		assignments: assignments,
		directory:   directory,
		notifier:    notifier,
		audit:       audit,
	}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
	adminID uint,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1️⃣ Input
	// --------------------------------------------------
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, httperr.ErrBusiness("invalid_title")
	}

	date, err := timezone.CalendarDate(in.Date)
	if err != nil {
		return nil, err
	}
	if err := timezone.ParseHM(in.StartTime); err != nil {
		return nil, err
	}
	if err := timezone.ParseHM(in.EndTime); err != nil {
		return nil, err
	}
	if in.EndTime <= in.StartTime {
		return nil, httperr.ErrBusiness("invalid_time")
	}

	// --------------------------------------------------
	// 2️⃣ Customer and workers
	// --------------------------------------------------
	customer, err := uc.directory.GetCustomerByID(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	workerIDs := uniqueIDs(in.WorkerIDs)
	for _, id := range workerIDs {
		if _, err := uc.directory.GetWorkerByID(ctx, id); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 3️⃣ Appointment (status centralised in the domain)
	// --------------------------------------------------
	ap := &models.Appointment{
		CustomerID:  customer.ID,
		Title:       title,
		Description: in.Description,
		Location:    in.Location,
		Notes:       in.Notes,
		Date:        date,
		StartTime:   in.StartTime,
		EndTime:     in.EndTime,
		Status:      string(domain.InitialStatus()),
	}

	if err := uc.repo.CreateAppointment(ctx, ap); err != nil {
		return nil, err
	}
	ap.Customer = *customer

	// --------------------------------------------------
	// 4️⃣ Assignments
	// --------------------------------------------------
	for _, id := range workerIDs {
		if _, err := uc.assignments.Assign(ctx, ap.ID, id); err != nil {
			return nil, err
		}
	}

	// --------------------------------------------------
	// 5️⃣ Audit
	// --------------------------------------------------
	uc.audit.Dispatch(audit.Appointment(
		ap.ID,
		audit.ActionAppointmentCreated,
		audit.RoleAdmin,
		uintPtr(adminID),
		map[string]any{"workers": workerIDs},
	))

	notify(ctx, uc.notifier, ap.ID)
	return ap, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
