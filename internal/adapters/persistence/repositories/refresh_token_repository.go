package repositories

import (
	"context"
	"errors"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"

	"gorm.io/gorm"
)

// ErrSessionRotated is returned by Rotate when the session was revoked concurrently
var ErrSessionRotated = errors.New("refresh session already rotated")

type refreshTokenRepository struct {
	db *gorm.DB
}

// NewRefreshTokenRepository creates the gorm-backed refresh session store
func NewRefreshTokenRepository(db *gorm.DB) RefreshTokenRepository {
	return &refreshTokenRepository{db: db}
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	return r.db.WithContext(ctx).Omit("User").Create(token).Error
}

func (r *refreshTokenRepository) FindByHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// Rotate revokes the session with currentID and stores next in one transaction.
// Two refreshes racing on the same token: only the first wins, the second gets ErrSessionRotated.
func (r *refreshTokenRepository) Rotate(ctx context.Context, currentID uint, next *models.RefreshToken) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("id = ? AND revoked_at IS NULL", currentID).
			Update("revoked_at", time.Now())
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSessionRotated
		}
		return tx.Omit("User").Create(next).Error
	})
}

func (r *refreshTokenRepository) RevokeByHash(ctx context.Context, tokenHash string) error {
	return r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", tokenHash).
		Update("revoked_at", time.Now()).Error
}

// RevokeAllForUser ends every live session of a user and reports how many were open
func (r *refreshTokenRepository) RevokeAllForUser(ctx context.Context, userID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.RefreshToken{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", time.Now())
	return res.RowsAffected, res.Error
}

// Purge removes sessions that expired, or were revoked, before cutoff
func (r *refreshTokenRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("expires_at < ? OR revoked_at < ?", cutoff, cutoff).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
