package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
)

type EvidenceGormRepository struct {
	db *gorm.DB
}

func NewEvidenceGormRepository(db *gorm.DB) *EvidenceGormRepository {
	return &EvidenceGormRepository{db: db}
}

func photoRows(appointmentID, workerID uint, refs []string) []models.EvidencePhoto {
	rows := make([]models.EvidencePhoto, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, models.EvidencePhoto{
			AppointmentID: appointmentID,
			URL:           ref,
			CommittedBy:   workerID,
		})
	}
	return rows
}

func (r *EvidenceGormRepository) Commit(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
	refs []string,
) error {
	if len(refs) == 0 {
		return nil
	}
	rows := photoRows(appointmentID, workerID, refs)
	return r.db.WithContext(ctx).Create(&rows).Error
}

func (r *EvidenceGormRepository) ListByAppointment(
	ctx context.Context,
	appointmentID uint,
) ([]models.EvidencePhoto, error) {

	var rows []models.EvidencePhoto
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CommitSubmission appends the photos and then completes the worker in one
// transaction. A failed completion (not started, already completed by a
// concurrent submit) rolls the photos back with it.
func (r *EvidenceGormRepository) CommitSubmission(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
	refs []string,
	now time.Time,
) error {

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(refs) > 0 {
			rows := photoRows(appointmentID, workerID, refs)
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		return markCompleted(tx, appointmentID, workerID, now, true)
	})
}

var (
	_ domain.EvidenceLedger  = (*EvidenceGormRepository)(nil)
	_ domain.SubmissionStore = (*EvidenceGormRepository)(nil)
)
