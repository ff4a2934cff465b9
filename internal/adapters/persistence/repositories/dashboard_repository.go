package repositories

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// dashboardRepository runs grouped counts for the admin dashboard
type dashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository creates a new dashboard repository
func NewDashboardRepository(db *gorm.DB) DashboardRepository {
	return &dashboardRepository{db: db}
}

func (r *dashboardRepository) CountUsersByRole(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Select("role AS group_key, COUNT(*) AS count, 0 AS amount").
		Group("role").
		Scan(&rows).Error
	return rows, err
}

func (r *dashboardRepository) PayLaterTotalsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).Model(&models.PayLater{}).
		Select("status AS group_key, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS amount").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *dashboardRepository) CountTreatmentsByStatus(ctx context.Context) ([]StatusTotal, error) {
	var rows []StatusTotal
	err := r.db.WithContext(ctx).Model(&models.Treatment{}).
		Select("status AS group_key, COUNT(*) AS count, 0 AS amount").
		Group("status").
		Scan(&rows).Error
	return rows, err
}

func (r *dashboardRepository) RecentPayLaters(ctx context.Context, limit int) ([]*models.PayLater, error) {
	var payLaters []*models.PayLater
	err := r.db.WithContext(ctx).
		Preload("User").
		Order("created_at DESC").
		Limit(limit).
		Find(&payLaters).Error
	return payLaters, err
}
