package models

import "time"

// Assignment is one worker's progress on one appointment.
type Assignment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	AppointmentID uint `gorm:"not null;uniqueIndex:idx_assignment_pair" json:"appointment_id"`
	WorkerID      uint `gorm:"not null;uniqueIndex:idx_assignment_pair;index" json:"worker_id"`
	Worker        User `gorm:"foreignKey:WorkerID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	HasStarted   bool       `gorm:"not null;default:false" json:"has_started"`
	StartedAt    *time.Time `json:"started_at"`
	HasCompleted bool       `gorm:"not null;default:false" json:"has_completed"`
	CompletedAt  *time.Time `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
