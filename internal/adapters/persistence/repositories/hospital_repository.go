package repositories

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

type hospitalRepository struct {
	db *gorm.DB
}

// NewHospitalRepository creates a new hospital repository
func NewHospitalRepository(db *gorm.DB) HospitalRepository {
	return &hospitalRepository{db: db}
}

func (r *hospitalRepository) Create(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Create(hospital).Error
}

func (r *hospitalRepository) GetByID(ctx context.Context, id uint) (*models.Hospital, error) {
	var hospital models.Hospital
	if err := r.db.WithContext(ctx).First(&hospital, id).Error; err != nil {
		return nil, err
	}
	return &hospital, nil
}

func (r *hospitalRepository) Update(ctx context.Context, hospital *models.Hospital) error {
	return r.db.WithContext(ctx).Save(hospital).Error
}

func (r *hospitalRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Hospital{}, id).Error
}

func (r *hospitalRepository) List(ctx context.Context, offset, limit int) ([]*models.Hospital, int64, error) {
	var hospitals []*models.Hospital
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.Hospital{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&hospitals).Error

	return hospitals, total, err
}

func (r *hospitalRepository) ExistsByPhone(ctx context.Context, phone string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Hospital{}).
		Where("phone = ?", phone).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}
