package models

import "time"

type WorkerNote struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"not null;uniqueIndex:idx_worker_note_pair" json:"appointment_id"`
	WorkerID      uint   `gorm:"not null;uniqueIndex:idx_worker_note_pair" json:"worker_id"`
	Body          string `gorm:"type:text" json:"body"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
