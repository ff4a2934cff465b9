package repositories

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/core/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// payLaterRepository handles paylater data access
type payLaterRepository struct {
	db *gorm.DB
}

// NewPayLaterRepository creates a new paylater repository
func NewPayLaterRepository(db *gorm.DB) PayLaterRepository {
	return &payLaterRepository{db: db}
}

// Create creates a new paylater
func (r *payLaterRepository) Create(ctx context.Context, payLater *models.PayLater) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(payLater).Error
}

// GetByID gets a paylater by ID with its owner
func (r *payLaterRepository) GetByID(ctx context.Context, id uint) (*models.PayLater, error) {
	var payLater models.PayLater
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&payLater, id).Error
	if err != nil {
		return nil, err
	}
	return &payLater, nil
}

// Update updates a paylater
func (r *payLaterRepository) Update(ctx context.Context, payLater *models.PayLater) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(payLater).Error
}

// Delete deletes a paylater
func (r *payLaterRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.PayLater{}, id).Error
}

// List lists paylaters with pagination, newest first
func (r *payLaterRepository) List(ctx context.Context, offset, limit int) ([]*models.PayLater, int64, error) {
	var payLaters []*models.PayLater
	var total int64

	if err := r.db.WithContext(ctx).Model(&models.PayLater{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&payLaters).Error

	return payLaters, total, err
}

// HasActiveByUserID checks for a PENDING or APPROVED paylater
func (r *payLaterRepository) HasActiveByUserID(ctx context.Context, userID uint, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PayLater{}).
		Where("user_id = ?", userID).
		Where("status IN ?", []domain.PayLaterStatus{domain.PayLaterPending, domain.PayLaterApproved}).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}
