package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/field-service/internal/domain/appointment"
	"github.com/BruksfildServices01/field-service/internal/models"
)

// FeedbackGormRepository stores customer ratings and worker notes.
type FeedbackGormRepository struct {
	db *gorm.DB
}

func NewFeedbackGormRepository(db *gorm.DB) *FeedbackGormRepository {
	return &FeedbackGormRepository{db: db}
}

// --------------------------------------------------
// Rating
// --------------------------------------------------

// CreateRating relies on the unique index on appointment_id; two racing
// inserts cannot both succeed.
func (r *FeedbackGormRepository) CreateRating(
	ctx context.Context,
	rating *models.Rating,
) error {
	if err := r.db.WithContext(ctx).Create(rating).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrAlreadyRated
		}
		return err
	}
	return nil
}

// GetRating returns nil without error when the appointment is unrated.
func (r *FeedbackGormRepository) GetRating(
	ctx context.Context,
	appointmentID uint,
) (*models.Rating, error) {

	var rating models.Rating
	err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		First(&rating).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

// --------------------------------------------------
// Worker notes
// --------------------------------------------------

func (r *FeedbackGormRepository) SaveNote(
	ctx context.Context,
	appointmentID uint,
	workerID uint,
	body string,
) (*models.WorkerNote, error) {

	note := models.WorkerNote{
		AppointmentID: appointmentID,
		WorkerID:      workerID,
		Body:          body,
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "appointment_id"}, {Name: "worker_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
		}).
		Create(&note).Error
	if err != nil {
		return nil, err
	}

	var saved models.WorkerNote
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ? AND worker_id = ?", appointmentID, workerID).
		First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *FeedbackGormRepository) ListNotes(
	ctx context.Context,
	appointmentID uint,
) ([]models.WorkerNote, error) {

	var notes []models.WorkerNote
	if err := r.db.WithContext(ctx).
		Where("appointment_id = ?", appointmentID).
		Order("id ASC").
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

var (
	_ domain.RatingStore = (*FeedbackGormRepository)(nil)
	_ domain.NoteStore   = (*FeedbackGormRepository)(nil)
)
