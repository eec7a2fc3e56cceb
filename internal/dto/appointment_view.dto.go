package dto

import (
	"time"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
)

// AppointmentView is everything a viewer re-reads after a change signal.
// Staff and public links share it; staff-only fields are left empty on the
// public surface.
type AppointmentView struct {
	ID          uint   `json:"id,omitempty"`
	PublicID    string `json:"public_id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Notes       string `json:"notes,omitempty"`
	Date        string `json:"date"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Status      string `json:"status"`

	Customer CustomerView    `json:"customer"`
	Workers  []WorkerView    `json:"workers"`
	Progress domain.Progress `json:"progress"`
	Legacy   bool            `json:"legacy"`

	Photos []PhotoView  `json:"photos"`
	Rating *RatingView  `json:"rating"`
	Staged []StagedView `json:"staged,omitempty"`
}

type CustomerView struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

type WorkerView struct {
	ID           uint       `json:"id"`
	Name         string     `json:"name"`
	HasStarted   bool       `json:"has_started"`
	StartedAt    *time.Time `json:"started_at"`
	HasCompleted bool       `json:"has_completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	Note         string     `json:"note,omitempty"`
}

type PhotoView struct {
	URL         string    `json:"url"`
	CommittedBy uint      `json:"committed_by"`
	CreatedAt   time.Time `json:"created_at"`
}

type RatingView struct {
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

type StagedView struct {
	Index int    `json:"index"`
	URL   string `json:"url"`
}
