package services

import (
	"context"
	"strconv"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/keylock"
	"sehatku-paylater/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
)

// PayLater service errors
var (
	ErrPayLaterNotFound      = domain.NotFound("PayLater not found")
	ErrPayLaterNeedsBPJS     = domain.InvalidRequest("User must have BPJS number to create paylater")
	ErrPayLaterBPJSActive    = domain.InvalidRequest("Cannot create paylater while BPJS is active")
	ErrPayLaterNotEligible   = domain.InvalidRequest("Only users with non-active BPJS can use paylater")
	ErrPayLaterNoSalary      = domain.InvalidRequest("User must have valid salary to create paylater")
	ErrPayLaterActiveExists  = domain.InvalidRequest("User already has an active paylater")
	ErrPayLaterInvalidAmount = domain.InvalidRequest("Amount must be a positive number")
	ErrPayLaterInvalidTenor  = domain.InvalidRequest("Tenor must be between 1 and 36 months")
	ErrPayLaterUndeletable   = domain.InvalidRequest("Cannot delete approved or paid paylater")
	ErrPayLaterLocked        = domain.InvalidRequest("Only pending paylater can change amount, tenor or owner")
	ErrPayLaterUseApprove    = domain.InvalidRequest("Use the approve endpoint to approve a paylater")
	ErrPayLaterInvalidStatus = domain.InvalidRequest("Invalid status")
	ErrPayLaterModified      = domain.Conflict("PayLater owner changed during the request, please retry")
)

// PayLaterService handles paylater pricing, eligibility and approval
type PayLaterService struct {
	payLaterRepo repositories.PayLaterRepository
	userRepo     repositories.UserRepository
	locker       keylock.Locker
	now          Clock
}

// NewPayLaterService creates a new paylater service
func NewPayLaterService(
	payLaterRepo repositories.PayLaterRepository,
	userRepo repositories.UserRepository,
	locker keylock.Locker,
) *PayLaterService {
	return &PayLaterService{
		payLaterRepo: payLaterRepo,
		userRepo:     userRepo,
		locker:       locker,
		now:          utcNow,
	}
}

// CreatePayLaterInput represents create paylater input
type CreatePayLaterInput struct {
	UserID uint    `json:"userId" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Tenor  int     `json:"tenor" validate:"required,min=1,max=36"`
}

// UpdatePayLaterInput represents a partial paylater update
type UpdatePayLaterInput struct {
	Amount *float64 `json:"amount" validate:"omitempty,gt=0"`
	Tenor  *int     `json:"tenor" validate:"omitempty,min=1,max=36"`
	Status *string  `json:"status" validate:"omitempty,oneof=PENDING APPROVED REJECTED PAID"`
	UserID *uint    `json:"userId" validate:"omitempty,min=1"`
}

// Create prices and opens a new paylater for an eligible user
func (s *PayLaterService) Create(ctx context.Context, input *CreatePayLaterInput) (*models.PayLaterResponse, error) {
	if err := validateTerms(input.Amount, input.Tenor); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, payLaterLockKey(input.UserID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	// 1. User must exist
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	// 2-5. Role, salary and cap
	if err := checkEligibility(user, input.Amount); err != nil {
		return nil, err
	}

	// 6. One active paylater per user
	active, err := s.payLaterRepo.HasActiveByUserID(ctx, user.ID, 0)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrPayLaterActiveExists
	}

	payLater := &models.PayLater{
		UserID:   user.ID,
		Amount:   input.Amount,
		Tenor:    input.Tenor,
		Interest: domain.CalculateInterest(input.Amount, input.Tenor),
		Status:   domain.PayLaterPending,
	}

	if err := s.payLaterRepo.Create(ctx, payLater); err != nil {
		return nil, err
	}
	payLater.User = user

	log.Info().
		Uint("paylater_id", payLater.ID).
		Uint("user_id", user.ID).
		Float64("amount", payLater.Amount).
		Int("tenor", payLater.Tenor).
		Float64("interest", payLater.Interest).
		Msg("✅ PayLater created")

	return payLater.ToResponse(), nil
}

// GetByID gets a paylater with its owner
func (s *PayLaterService) GetByID(ctx context.Context, id uint) (*models.PayLaterResponse, error) {
	payLater, err := s.payLaterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrPayLaterNotFound)
	}
	return payLater.ToResponse(), nil
}

// List lists paylaters, newest first
func (s *PayLaterService) List(ctx context.Context, input *ListInput) (*pagination.Page[*models.PayLaterResponse], error) {
	params := input.params()

	payLaters, total, err := s.payLaterRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	items := pagination.Map(payLaters, (*models.PayLater).ToResponse)
	return pagination.NewPage(items, params, total), nil
}

// Approve moves a PENDING paylater to APPROVED after re-checking the owner's role
func (s *PayLaterService) Approve(ctx context.Context, id uint) (*models.PayLaterResponse, error) {
	payLater, unlock, err := s.lockPayLater(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if payLater.Status != domain.PayLaterPending {
		return nil, domain.InvalidRequestf("Cannot approve PayLater with status %s", payLater.Status)
	}

	// role may have changed since creation
	if payLater.User == nil || payLater.User.Role != domain.RoleNonActiveBPJS {
		return nil, ErrPayLaterNotEligible
	}

	now := s.now()
	return s.transition(ctx, payLater, domain.PayLaterApproved, &now)
}

// Reject moves a PENDING paylater to REJECTED
func (s *PayLaterService) Reject(ctx context.Context, id uint) (*models.PayLaterResponse, error) {
	payLater, unlock, err := s.lockPayLater(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.transition(ctx, payLater, domain.PayLaterRejected, nil)
}

// MarkPaid moves an APPROVED paylater to PAID
func (s *PayLaterService) MarkPaid(ctx context.Context, id uint) (*models.PayLaterResponse, error) {
	payLater, unlock, err := s.lockPayLater(ctx, id, nil)
	if err != nil {
		return nil, err
	}
	defer unlock()
	return s.transition(ctx, payLater, domain.PayLaterPaid, nil)
}

// Update edits terms and owner of a PENDING paylater, or moves its status along the transition graph.
// APPROVED is only reachable through Approve.
func (s *PayLaterService) Update(ctx context.Context, id uint, input *UpdatePayLaterInput) (*models.PayLaterResponse, error) {
	payLater, unlock, err := s.lockPayLater(ctx, id, input.UserID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	termsChanged := input.Amount != nil || input.Tenor != nil || (input.UserID != nil && *input.UserID != payLater.UserID)
	if termsChanged {
		if err := s.applyTerms(ctx, payLater, input); err != nil {
			return nil, err
		}
	}

	var nextStatus *domain.PayLaterStatus
	if input.Status != nil {
		status, ok := domain.ParsePayLaterStatus(*input.Status)
		if !ok {
			return nil, ErrPayLaterInvalidStatus
		}
		if status != payLater.Status {
			if status == domain.PayLaterApproved {
				return nil, ErrPayLaterUseApprove
			}
			if _, err := payLater.Status.Transition(status); err != nil {
				return nil, err
			}
			nextStatus = &status
		}
	}

	if !termsChanged && nextStatus == nil {
		return payLater.ToResponse(), nil
	}

	from := payLater.Status
	if nextStatus != nil {
		payLater.Status = *nextStatus
	}

	if err := s.payLaterRepo.Update(ctx, payLater); err != nil {
		return nil, err
	}

	log.Info().
		Uint("paylater_id", payLater.ID).
		Uint("user_id", payLater.UserID).
		Str("from", string(from)).
		Str("to", string(payLater.Status)).
		Msg("✏️ PayLater updated")

	return payLater.ToResponse(), nil
}

// applyTerms validates and re-prices new amount, tenor or owner on a PENDING paylater
func (s *PayLaterService) applyTerms(ctx context.Context, payLater *models.PayLater, input *UpdatePayLaterInput) error {
	if payLater.Status != domain.PayLaterPending {
		return ErrPayLaterLocked
	}

	amount, tenor := payLater.Amount, payLater.Tenor
	if input.Amount != nil {
		amount = *input.Amount
	}
	if input.Tenor != nil {
		tenor = *input.Tenor
	}
	if err := validateTerms(amount, tenor); err != nil {
		return err
	}

	owner := payLater.User
	if input.UserID != nil && *input.UserID != payLater.UserID {
		user, err := s.userRepo.GetByID(ctx, *input.UserID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		owner = user

		active, err := s.payLaterRepo.HasActiveByUserID(ctx, user.ID, payLater.ID)
		if err != nil {
			return err
		}
		if active {
			return ErrPayLaterActiveExists
		}
	}

	if owner == nil {
		user, err := s.userRepo.GetByID(ctx, payLater.UserID)
		if err != nil {
			return notFoundOr(err, ErrUserNotFound)
		}
		owner = user
	}

	if err := checkEligibility(owner, amount); err != nil {
		return err
	}

	payLater.UserID = owner.ID
	payLater.User = owner
	payLater.Amount = amount
	payLater.Tenor = tenor
	payLater.Interest = domain.CalculateInterest(amount, tenor)
	return nil
}

// Delete removes a paylater that was never approved
func (s *PayLaterService) Delete(ctx context.Context, id uint) error {
	payLater, unlock, err := s.lockPayLater(ctx, id, nil)
	if err != nil {
		return err
	}
	defer unlock()

	if payLater.Status == domain.PayLaterApproved || payLater.Status == domain.PayLaterPaid {
		return ErrPayLaterUndeletable
	}

	if err := s.payLaterRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Uint("paylater_id", id).Msg("🗑️ PayLater deleted")
	return nil
}

// lockPayLater locks the paylater owner (and newOwner, if any) and loads the paylater under the lock
func (s *PayLaterService) lockPayLater(ctx context.Context, id uint, newOwner *uint) (*models.PayLater, func(), error) {
	current, err := s.payLaterRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, notFoundOr(err, ErrPayLaterNotFound)
	}

	keys := []string{payLaterLockKey(current.UserID)}
	if newOwner != nil {
		keys = append(keys, payLaterLockKey(*newOwner))
	}
	unlock, err := keylock.LockAll(ctx, s.locker, keys...)
	if err != nil {
		return nil, nil, err
	}

	payLater, err := s.payLaterRepo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, notFoundOr(err, ErrPayLaterNotFound)
	}
	if payLater.UserID != current.UserID {
		unlock()
		return nil, nil, ErrPayLaterModified
	}

	return payLater, unlock, nil
}

func (s *PayLaterService) transition(ctx context.Context, payLater *models.PayLater, next domain.PayLaterStatus, approvedAt *time.Time) (*models.PayLaterResponse, error) {
	from := payLater.Status
	status, err := from.Transition(next)
	if err != nil {
		return nil, err
	}

	payLater.Status = status
	if approvedAt != nil {
		payLater.ApprovedAt = approvedAt
	}

	if err := s.payLaterRepo.Update(ctx, payLater); err != nil {
		return nil, err
	}

	log.Info().
		Uint("paylater_id", payLater.ID).
		Uint("user_id", payLater.UserID).
		Str("from", string(from)).
		Str("to", string(status)).
		Msg("🔁 PayLater status changed")

	return payLater.ToResponse(), nil
}

// checkEligibility applies the role, salary and cap rules in order
func checkEligibility(user *models.User, amount float64) error {
	switch user.Role {
	case domain.RoleNonBPJS:
		return ErrPayLaterNeedsBPJS
	case domain.RoleBPJS:
		return ErrPayLaterBPJSActive
	case domain.RoleNonActiveBPJS:
	default:
		return ErrPayLaterNotEligible
	}

	if user.Salary == nil || *user.Salary <= 0 {
		return ErrPayLaterNoSalary
	}

	max := domain.MaxPayLaterAmount(*user.Salary)
	if amount > max {
		return domain.InvalidRequestf("Maximum paylater amount is %s", strconv.FormatFloat(max, 'f', -1, 64))
	}
	return nil
}

func validateTerms(amount float64, tenor int) error {
	if amount <= 0 {
		return ErrPayLaterInvalidAmount
	}
	if tenor < domain.MinTenor || tenor > domain.MaxTenor {
		return ErrPayLaterInvalidTenor
	}
	return nil
}
