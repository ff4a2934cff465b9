package repositories

import (
	"context"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/core/domain"
)

// UserRepository defines user repository interface
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	// UpdateProfile writes profile columns only. Role and BPJS columns are never touched.
	UpdateProfile(ctx context.Context, user *models.User) error
	// UpdateBPJS writes the BPJS number, last payment date and derived role together.
	UpdateBPJS(ctx context.Context, id uint, bpjsNumber *string, lastPaymentDate *time.Time, role domain.Role) error
	UpdatePassword(ctx context.Context, id uint, passwordHash string) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.User, int64, error)
	// ListWithBPJS returns up to limit users holding a BPJS number with id > afterID, ordered by id.
	ListWithBPJS(ctx context.Context, afterID uint, limit int) ([]*models.User, error)
	// ExistsByEmail and ExistsByPhone ignore the user with excludeID (0 excludes nobody).
	ExistsByEmail(ctx context.Context, email string, excludeID uint) (bool, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID uint) (bool, error)
}

// RefreshTokenRepository stores hashed refresh sessions
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Rotate(ctx context.Context, currentID uint, next *models.RefreshToken) error
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForUser(ctx context.Context, userID uint) (int64, error)
	Purge(ctx context.Context, cutoff time.Time) (int64, error)
}

// HospitalRepository defines hospital repository interface
type HospitalRepository interface {
	Create(ctx context.Context, hospital *models.Hospital) error
	GetByID(ctx context.Context, id uint) (*models.Hospital, error)
	Update(ctx context.Context, hospital *models.Hospital) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Hospital, int64, error)
	ExistsByPhone(ctx context.Context, phone string, excludeID uint) (bool, error)
}

// DiseaseRepository defines disease repository interface
type DiseaseRepository interface {
	Create(ctx context.Context, disease *models.Disease) error
	GetByID(ctx context.Context, id uint) (*models.Disease, error)
	Update(ctx context.Context, disease *models.Disease) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Disease, int64, error)
}

// PayLaterRepository defines paylater repository interface
type PayLaterRepository interface {
	Create(ctx context.Context, payLater *models.PayLater) error
	// GetByID preloads the owner
	GetByID(ctx context.Context, id uint) (*models.PayLater, error)
	Update(ctx context.Context, payLater *models.PayLater) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.PayLater, int64, error)
	// HasActiveByUserID reports a PENDING or APPROVED paylater for userID other than excludeID.
	HasActiveByUserID(ctx context.Context, userID uint, excludeID uint) (bool, error)
}

// TreatmentRepository defines treatment repository interface
type TreatmentRepository interface {
	Create(ctx context.Context, treatment *models.Treatment) error
	// GetByID preloads user, disease, hospital and paylater
	GetByID(ctx context.Context, id uint) (*models.Treatment, error)
	Update(ctx context.Context, treatment *models.Treatment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, offset, limit int) ([]*models.Treatment, int64, error)
}

// StatusTotal is a count and amount sum for one status or role value
type StatusTotal struct {
	Key    string  `gorm:"column:group_key"`
	Count  int64   `gorm:"column:count"`
	Amount float64 `gorm:"column:amount"`
}

// DashboardRepository defines aggregate queries for the admin dashboard
type DashboardRepository interface {
	CountUsersByRole(ctx context.Context) ([]StatusTotal, error)
	// PayLaterTotalsByStatus sums amount per status
	PayLaterTotalsByStatus(ctx context.Context) ([]StatusTotal, error)
	CountTreatmentsByStatus(ctx context.Context) ([]StatusTotal, error)
	// RecentPayLaters returns the newest paylaters with their owners
	RecentPayLaters(ctx context.Context, limit int) ([]*models.PayLater, error)
}
