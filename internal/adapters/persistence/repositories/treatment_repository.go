package repositories

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// treatmentRepository handles treatment data access
type treatmentRepository struct {
	db *gorm.DB
}

// NewTreatmentRepository creates a new treatment repository
func NewTreatmentRepository(db *gorm.DB) TreatmentRepository {
	return &treatmentRepository{db: db}
}

func (r *treatmentRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("User").
		Preload("Disease").
		Preload("Hospital").
		Preload("PayLater")
}

// Create creates a new treatment
func (r *treatmentRepository) Create(ctx context.Context, treatment *models.Treatment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(treatment).Error
}

// GetByID gets a treatment by ID with relations
func (r *treatmentRepository) GetByID(ctx context.Context, id uint) (*models.Treatment, error) {
	var treatment models.Treatment
	if err := r.withRelations(ctx).First(&treatment, id).Error; err != nil {
		return nil, err
	}
	return &treatment, nil
}

// Update updates a treatment
func (r *treatmentRepository) Update(ctx context.Context, treatment *models.Treatment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(treatment).Error
}

// Delete deletes a treatment
func (r *treatmentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Treatment{}, id).Error
}

// List lists treatments with pagination, latest appointment first
func (r *treatmentRepository) List(ctx context.Context, offset, limit int) ([]*models.Treatment, int64, error) {
	var treatments []*models.Treatment
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Treatment{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.withRelations(ctx).
		Order("appointment_date DESC").
		Offset(offset).
		Limit(limit).
		Find(&treatments).Error

	return treatments, total, err
}
