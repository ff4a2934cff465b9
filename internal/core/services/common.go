package services

import (
	"errors"
	"fmt"
	"time"

	"sehatku-paylater/internal/pkg/pagination"

	"gorm.io/gorm"
)

// Clock returns the current time. Services default to utcNow.
type Clock func() time.Time

// utcNow keeps service time in the zone dates are stored in
func utcNow() time.Time {
	return time.Now().UTC()
}

// ListInput represents list input shared by paginated endpoints
type ListInput struct {
	Page  int
	Limit int
}

func (in *ListInput) params() *pagination.Params {
	if in == nil {
		return pagination.FromQuery(0, 0)
	}
	return pagination.FromQuery(in.Page, in.Limit)
}

// notFoundOr swaps gorm's record-not-found for the given domain error
func notFoundOr(err error, notFound error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound
	}
	return err
}

func payLaterLockKey(userID uint) string {
	return fmt.Sprintf("paylater:user:%d", userID)
}

func treatmentLockKey(userID uint) string {
	return fmt.Sprintf("treatment:user:%d", userID)
}

func treatmentRecordLockKey(id uint) string {
	return fmt.Sprintf("treatment:%d", id)
}
