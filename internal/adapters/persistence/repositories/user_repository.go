package repositories

import (
	"context"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/core/domain"

	"gorm.io/gorm"
)

// profileColumns are the user columns editable outside the BPJS flow
var profileColumns = []string{
	"full_name", "email", "phone", "province", "city", "district", "postal_code", "nik", "salary",
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID gets a user by ID
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail gets a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile updates profile columns of a user
func (r *userRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Model(user).
		Select(profileColumns).
		Updates(user).Error
}

// UpdateBPJS updates BPJS data and role in a single statement
func (r *userRepository) UpdateBPJS(ctx context.Context, id uint, bpjsNumber *string, lastPaymentDate *time.Time, role domain.Role) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"bpjs_number":       bpjsNumber,
			"last_payment_date": lastPaymentDate,
			"role":              role,
		}).Error
}

// UpdatePassword replaces the password hash of a user
func (r *userRepository) UpdatePassword(ctx context.Context, id uint, passwordHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("password", passwordHash).Error
}

// Delete soft deletes a user
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

// List lists users with pagination, newest first
func (r *userRepository) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	// Count total
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// Get users with pagination
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// ListWithBPJS pages through users holding a BPJS number by id
func (r *userRepository) ListWithBPJS(ctx context.Context, afterID uint, limit int) ([]*models.User, error) {
	var users []*models.User
	err := r.db.WithContext(ctx).
		Where("id > ?", afterID).
		Where("bpjs_number IS NOT NULL AND bpjs_number <> ''").
		Order("id ASC").
		Limit(limit).
		Find(&users).Error
	return users, err
}

// ExistsByEmail checks if email is taken by another user
func (r *userRepository) ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("email = ?", email).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}

// ExistsByPhone checks if phone is taken by another user
func (r *userRepository) ExistsByPhone(ctx context.Context, phone string, excludeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("phone = ?", phone).
		Where("id <> ?", excludeID).
		Count(&count).Error
	return count > 0, err
}
