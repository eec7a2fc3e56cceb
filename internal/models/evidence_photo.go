package models

import "time"

// EvidencePhoto is a committed proof-of-work image. Rows are only ever
// inserted; commit order is id order.
type EvidencePhoto struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	AppointmentID uint   `gorm:"not null;index" json:"appointment_id"`
	URL           string `gorm:"size:1024;not null" json:"url"`
	CommittedBy   uint   `json:"committed_by"`

	CreatedAt time.Time `json:"created_at"`
}
