package models

import "time"

type Rating struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"not null;uniqueIndex" json:"appointment_id"`
	Score         int    `gorm:"not null;check:score >= 1 AND score <= 5" json:"rating"`
	Comment       string `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
