package services

import (
	"context"
	"strings"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/keylock"

	"github.com/rs/zerolog/log"
)

// reclassifyBatchSize is how many users ReclassifyAll loads per query
const reclassifyBatchSize = 200

// BPJSService owns BPJS classification and is the only writer of a user's role
type BPJSService struct {
	userRepo repositories.UserRepository
	locker   keylock.Locker
	now      Clock
}

// NewBPJSService creates a new BPJS service
func NewBPJSService(userRepo repositories.UserRepository, locker keylock.Locker) *BPJSService {
	return &BPJSService{
		userRepo: userRepo,
		locker:   locker,
		now:      utcNow,
	}
}

// UpdateBPJSInput represents BPJS data submitted for a user
type UpdateBPJSInput struct {
	BPJSNumber      *string
	LastPaymentDate *time.Time
}

// BPJSUpdateResult is the user projection returned after a BPJS update
type BPJSUpdateResult struct {
	ID              uint        `json:"id"`
	FullName        string      `json:"fullName"`
	Email           string      `json:"email"`
	Role            domain.Role `json:"role"`
	BPJSNumber      *string     `json:"bpjsNumber"`
	LastPaymentDate *time.Time  `json:"lastPaymentDate"`
}

// BPJSStatus is the read-only view of a user's BPJS standing
type BPJSStatus struct {
	HasBPJS         bool        `json:"hasBpjs"`
	IsActive        bool        `json:"isActive"`
	Role            domain.Role `json:"role"`
	LastPaymentDate *time.Time  `json:"lastPaymentDate"`
}

// ReclassifyResult summarizes a ReclassifyAll run
type ReclassifyResult struct {
	Scanned int `json:"scanned"`
	Updated int `json:"updated"`
}

// UpdateStatus stores BPJS data and the role derived from it
func (s *BPJSService) UpdateStatus(ctx context.Context, userID uint, input *UpdateBPJSInput) (*BPJSUpdateResult, error) {
	// role drives paylater eligibility
	unlock, err := s.locker.Lock(ctx, payLaterLockKey(userID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	number := normalizeBPJSNumber(input.BPJSNumber)
	role := domain.ClassifyBPJS(number, input.LastPaymentDate, s.now())
	if user.Role == domain.RoleHospitalAdmin {
		role = domain.RoleHospitalAdmin
	}

	if err := s.userRepo.UpdateBPJS(ctx, user.ID, number, input.LastPaymentDate, role); err != nil {
		return nil, err
	}

	if role != user.Role {
		log.Info().
			Uint("user_id", user.ID).
			Str("from", string(user.Role)).
			Str("to", string(role)).
			Msg("🏥 BPJS role changed")
	}

	return &BPJSUpdateResult{
		ID:              user.ID,
		FullName:        user.FullName,
		Email:           user.Email,
		Role:            role,
		BPJSNumber:      number,
		LastPaymentDate: input.LastPaymentDate,
	}, nil
}

// CheckStatus reports a user's BPJS standing without writing anything
func (s *BPJSService) CheckStatus(ctx context.Context, userID uint) (*BPJSStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	return &BPJSStatus{
		HasBPJS:         domain.HasBPJSNumber(user.BPJSNumber),
		IsActive:        domain.IsBPJSActive(user.BPJSNumber, user.LastPaymentDate, s.now()),
		Role:            user.Role,
		LastPaymentDate: user.LastPaymentDate,
	}, nil
}

// ReclassifyAll re-runs the classifier for every BPJS holder and persists roles that drifted
// as time passed. Hospital admins are skipped.
func (s *BPJSService) ReclassifyAll(ctx context.Context) (*ReclassifyResult, error) {
	result := &ReclassifyResult{}
	today := s.now()
	var afterID uint

	for {
		users, err := s.userRepo.ListWithBPJS(ctx, afterID, reclassifyBatchSize)
		if err != nil {
			return result, err
		}
		if len(users) == 0 {
			break
		}

		for _, user := range users {
			afterID = user.ID
			result.Scanned++

			updated, err := s.reclassify(ctx, user, today)
			if err != nil {
				return result, err
			}
			if updated {
				result.Updated++
			}
		}

		if len(users) < reclassifyBatchSize {
			break
		}
	}

	log.Info().
		Int("scanned", result.Scanned).
		Int("updated", result.Updated).
		Msg("✅ BPJS reclassification finished")

	return result, nil
}

func (s *BPJSService) reclassify(ctx context.Context, user *models.User, today time.Time) (bool, error) {
	if user.Role == domain.RoleHospitalAdmin {
		return false, nil
	}

	role := domain.ClassifyBPJS(user.BPJSNumber, user.LastPaymentDate, today)
	if role == user.Role {
		return false, nil
	}

	unlock, err := s.locker.Lock(ctx, payLaterLockKey(user.ID))
	if err != nil {
		return false, err
	}
	defer unlock()

	// reload under the lock; UpdateStatus may have written since the batch was read
	current, err := s.userRepo.GetByID(ctx, user.ID)
	if err != nil {
		return false, notFoundOr(err, nil)
	}
	if current.Role == domain.RoleHospitalAdmin {
		return false, nil
	}
	role = domain.ClassifyBPJS(current.BPJSNumber, current.LastPaymentDate, today)
	if role == current.Role {
		return false, nil
	}

	if err := s.userRepo.UpdateBPJS(ctx, current.ID, current.BPJSNumber, current.LastPaymentDate, role); err != nil {
		return false, err
	}

	log.Info().
		Uint("user_id", current.ID).
		Str("from", string(current.Role)).
		Str("to", string(role)).
		Msg("🏥 BPJS role reclassified")

	return true, nil
}

func normalizeBPJSNumber(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
