package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
)

// AssignmentGormRepository never locks more than the row it updates:
// workers on the same appointment write disjoint rows.
type AssignmentGormRepository struct {
	db *gorm.DB
}

func NewAssignmentGormRepository(db *gorm.DB) *AssignmentGormRepository {
	return &AssignmentGormRepository{db: db}
}

func (r *AssignmentGormRepository) Assign(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
) (*models.Assignment, error) {

	a := models.Assignment{
		AppointmentID: appointmentID,
		WorkerID:      workerID,
	}
	if err := r.db.WithContext(ctx).Omit("Worker").Create(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, domain.ErrDuplicateAssignment
		}
		return nil, err
	}
	return &a, nil
}

// Start is a no-op for an already started worker so retried calls are safe.
func (r *AssignmentGormRepository) Start(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
	now time.Time,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Assignment{}).
		Where("appointment_id = ? AND worker_id = ? AND has_started = ?", appointmentID, workerID, false).
		Updates(map[string]any{
			"has_started": true,
			"started_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	_, err := r.Get(ctx, appointmentID, workerID)
	return err
}

// Complete is a no-op for an already completed worker.
func (r *AssignmentGormRepository) Complete(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
	now time.Time,
) error {
	return markCompleted(r.db.WithContext(ctx), appointmentID, workerID, now, false)
}

// markCompleted flips has_completed on a started row. With strict set, an
// already completed row is reported instead of ignored.
func markCompleted(
	tx *gorm.DB,
	appointmentID uint,
	workerID uint,
	now time.Time,
	strict bool,
) error {

	res := tx.
		Model(&models.Assignment{}).
		Where(
			"appointment_id = ? AND worker_id = ? AND has_started = ? AND has_completed = ?",
			appointmentID, workerID, true, false,
		).
		Updates(map[string]any{
			"has_completed": true,
			"completed_at":  now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var a models.Assignment
	if err := tx.
		Where("appointment_id = ? AND worker_id = ?", appointmentID, workerID).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domain.ErrWorkerNotAssigned
		}
		return err
	}

	if !a.HasStarted {
		return domain.ErrNotStarted
	}
	if strict {
		return domain.ErrAlreadyCompleted
	}
	return nil
}

func (r *AssignmentGormRepository) Get(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
) (*models.Assignment, error) {

	var a models.Assignment
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND worker_id = ?", appointmentID, workerID).
		First(&a).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrWorkerNotAssigned
		}
		return nil, err
	}
	return &a, nil
}

func (r *AssignmentGormRepository) ListByAppointment(
	ctx context.Context,
	appointmentID uint,
) ([]models.Assignment, error) {

	var rows []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AssignmentGormRepository) ListByAppointments(
	ctx context.Context,
	appointmentIDs []uint,
) (map[uint][]models.Assignment, error) {

	out := make(map[uint][]models.Assignment, len(appointmentIDs))
	if len(appointmentIDs) == 0 {
		return out, nil
	}

	var rows []models.Assignment
	if err := r.db.WithContext(ctx).
		Where("appointment_id IN ?", appointmentIDs).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	for _, a := range rows {
		out[a.AppointmentID] = append(out[a.AppointmentID], a)
	}
	return out, nil
}

var _ domain.AssignmentStore = (*AssignmentGormRepository)(nil)
