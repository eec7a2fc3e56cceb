package appointment

import (
	"context"
	"time"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/dto"
	"github.com/BruksfildServices01/field-service/internal/models"
)

type ListAppointmentsByDate struct {
	repo        domain.Repository
	assignments domain.AssignmentStore
}

func NewListAppointmentsByDate(
	repo domain.Repository,
	assignments domain.AssignmentStore,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo:        repo,
		assignments: assignments,
	}
}

// Execute lists the appointments on date, a calendar date as returned by
// timezone.CalendarDate.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	date time.Time,
) ([]dto.AppointmentListDTO, error) {

	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	return listPeriod(ctx, uc.repo, uc.assignments, start, end)
}

// listPeriod is shared by the day and month dashboards.
func listPeriod(
	ctx context.Context,
	repo domain.Repository,
	assignments domain.AssignmentStore,
	start time.Time,
	end time.Time,
) ([]dto.AppointmentListDTO, error) {

	appointments, err := repo.ListAppointmentsForPeriod(ctx, start, end)
	if err != nil {
		return nil, err
	}

	ids := make([]uint, 0, len(appointments))
	for _, ap := range appointments {
		ids = append(ids, ap.ID)
	}

	byAppointment, err := assignments.ListByAppointments(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]dto.AppointmentListDTO, 0, len(appointments))
	for i := range appointments {
		out = append(out, listItem(&appointments[i], byAppointment[appointments[i].ID]))
	}

	return out, nil
}

func listItem(ap *models.Appointment, stored []models.Assignment) dto.AppointmentListDTO {
	return dto.AppointmentListDTO{
		ID:           ap.ID,
		PublicID:     ap.PublicID.String(),
		Title:        ap.Title,
		Date:         ap.Date.Format("2006-01-02"),
		StartTime:    ap.StartTime,
		EndTime:      ap.EndTime,
		Location:     ap.Location,
		Status:       ap.Status,
		CustomerName: ap.Customer.Name,
		Progress:     domain.Summarize(domain.EffectiveAssignments(ap, stored)),
	}
}
