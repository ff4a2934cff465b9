package repositories

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type diseaseRepository struct {
	db *gorm.DB
}

// NewDiseaseRepository creates a new disease repository
func NewDiseaseRepository(db *gorm.DB) DiseaseRepository {
	return &diseaseRepository{db: db}
}

func (r *diseaseRepository) Create(ctx context.Context, disease *models.Disease) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(disease).Error
}

// GetByID gets a disease with its hospital
func (r *diseaseRepository) GetByID(ctx context.Context, id uint) (*models.Disease, error) {
	var disease models.Disease
	err := r.db.WithContext(ctx).
		Preload("Hospital").
		First(&disease, id).Error
	if err != nil {
		return nil, err
	}
	return &disease, nil
}

func (r *diseaseRepository) Update(ctx context.Context, disease *models.Disease) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(disease).Error
}

func (r *diseaseRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Disease{}, id).Error
}

func (r *diseaseRepository) List(ctx context.Context, offset, limit int) ([]*models.Disease, int64, error) {
	var diseases []*models.Disease
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Disease{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Hospital").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&diseases).Error

	return diseases, total, err
}
