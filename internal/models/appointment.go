package models

import (
	"time"

	"github.com/google/uuid"
)

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// PublicID keys the customer-facing link; the numeric id never leaves the staff surface.
	PublicID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"public_id"`

	CustomerID uint     `gorm:"not null;index" json:"customer_id"`
	Customer   Customer `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"customer"`

	// StaffID is the single-worker field from before multi-worker assignment.
	// Only read when the appointment has no assignment rows.
	StaffID *uint `json:"staff_id"`

	Title       string `gorm:"size:150;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Location    string `gorm:"size:255" json:"location"`
	Notes       string `gorm:"type:text" json:"notes"`

	Date      time.Time `gorm:"type:date;index" json:"date"`
	StartTime string    `gorm:"size:5" json:"start_time"`
	EndTime   string    `gorm:"size:5" json:"end_time"`

	Status string `gorm:"size:20;default:'confirmed';index" json:"status"`

	Assignments []Assignment    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Photos      []EvidencePhoto `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	WorkerNotes []WorkerNote    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Rating      *Rating         `gorm:"constraint:OnDelete:CASCADE;" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
