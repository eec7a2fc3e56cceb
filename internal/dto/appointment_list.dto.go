package dto

import (
	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

type AppointmentListDTO struct {
	ID           uint            `json:"id"`
	PublicID     string          `json:"public_id"`
	Title        string          `json:"title"`
	Date         string          `json:"date"`
	StartTime    string          `json:"start_time"`
	EndTime      string          `json:"end_time"`
	Location     string          `json:"location"`
	Status       string          `json:"status"`
	CustomerName string          `json:"customer_name"`
	Progress     domain.Progress `json:"progress"`
}
