package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/dto"
	"github.com/BruksfildServices01/field-service/internal/httperr"
)

type ListAppointmentsByMonth struct {
	repo        appointment.Repository
	assignments appointment.AssignmentStore
}

func NewListAppointmentsByMonth(
	repo appointment.Repository,
	assignments appointment.AssignmentStore,
) *ListAppointmentsByMonth {
	return &ListAppointmentsByMonth{
		repo:        repo,
		assignments: assignments,
	}
}

func (uc *ListAppointmentsByMonth) Execute(
	ctx context.Context,
	year int,
	month int,
) ([]dto.AppointmentListDTO, error) {

	if year < 2000 || month < 1 || month > 12 {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	return listPeriod(ctx, uc.repo, uc.assignments, start, end)
}
