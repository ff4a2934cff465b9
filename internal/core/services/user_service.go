package services

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/pagination"
	"sehatku-paylater/internal/pkg/password"

	"github.com/rs/zerolog/log"
)

// User service errors
var (
	ErrUserNotFound       = domain.NotFound("User not found")
	ErrEmailAlreadyExists = domain.Conflict("Email already taken")
	ErrPhoneAlreadyExists = domain.Conflict("Phone number already taken")
	ErrOldPasswordWrong   = domain.InvalidRequest("Old password is incorrect")
	ErrWeakPassword       = domain.Validation("Password must be 8 to 72 characters and contain letters and numbers")
	ErrCannotDeleteSelf   = domain.InvalidRequest("Cannot delete your own account")
)

// UserService handles user management business logic.
// It never writes role or BPJS columns; see BPJSService.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new user service
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateUserInput represents a partial profile update
type UpdateUserInput struct {
	FullName   *string  `json:"fullName" validate:"omitempty,min=1,max=100"`
	Email      *string  `json:"email" validate:"omitempty,email"`
	Phone      *string  `json:"phone" validate:"omitempty,idphone"`
	Province   *string  `json:"province" validate:"omitempty,max=100"`
	City       *string  `json:"city" validate:"omitempty,max=100"`
	District   *string  `json:"district" validate:"omitempty,max=100"`
	PostalCode *string  `json:"postalCode" validate:"omitempty,max=10"`
	NIK        *string  `json:"nik" validate:"omitempty,len=16,numeric"`
	Salary     *float64 `json:"salary" validate:"omitempty,gte=0"`
}

// ChangePasswordInput represents change password input
type ChangePasswordInput struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// ListUsers lists users, newest first
func (s *UserService) ListUsers(ctx context.Context, input *ListInput) (*pagination.Page[*models.UserResponse], error) {
	params := input.params()

	users, total, err := s.userRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	items := pagination.Map(users, (*models.User).ToResponse)
	return pagination.NewPage(items, params, total), nil
}

// GetUserByID gets a user by ID
func (s *UserService) GetUserByID(ctx context.Context, id uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return user.ToResponse(), nil
}

// UpdateUser updates profile fields of a user
func (s *UserService) UpdateUser(ctx context.Context, id uint, input *UpdateUserInput) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	if input.Email != nil && *input.Email != user.Email {
		exists, err := s.userRepo.ExistsByEmail(ctx, *input.Email, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrEmailAlreadyExists
		}
		user.Email = *input.Email
	}

	if input.Phone != nil && *input.Phone != user.Phone {
		exists, err := s.userRepo.ExistsByPhone(ctx, *input.Phone, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrPhoneAlreadyExists
		}
		user.Phone = *input.Phone
	}

	if input.FullName != nil {
		user.FullName = *input.FullName
	}
	if input.Province != nil {
		user.Province = *input.Province
	}
	if input.City != nil {
		user.City = *input.City
	}
	if input.District != nil {
		user.District = *input.District
	}
	if input.PostalCode != nil {
		user.PostalCode = *input.PostalCode
	}
	if input.NIK != nil {
		user.NIK = input.NIK
	}
	if input.Salary != nil {
		user.Salary = input.Salary
	}

	if err := s.userRepo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user.ToResponse(), nil
}

// DeleteUser deletes a user (soft delete)
func (s *UserService) DeleteUser(ctx context.Context, id uint, actorID uint) error {
	if id == actorID {
		return ErrCannotDeleteSelf
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Uint("user_id", id).Uint("actor_id", actorID).Msg("🗑️ User deleted")
	return nil
}

// GetProfile gets own profile
func (s *UserService) GetProfile(ctx context.Context, userID uint) (*models.UserResponse, error) {
	return s.GetUserByID(ctx, userID)
}

// UpdateProfile updates own profile
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, input *UpdateUserInput) (*models.UserResponse, error) {
	return s.UpdateUser(ctx, userID, input)
}

// ChangePassword changes user's password
func (s *UserService) ChangePassword(ctx context.Context, userID uint, input *ChangePasswordInput) error {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return notFoundOr(err, ErrUserNotFound)
	}

	// Verify old password
	if !password.Verify(input.OldPassword, user.Password) {
		return ErrOldPasswordWrong
	}

	// Validate new password
	if password.Check(input.NewPassword) != nil {
		return ErrWeakPassword
	}

	hashed, err := password.Hash(input.NewPassword)
	if err != nil {
		return err
	}

	return s.userRepo.UpdatePassword(ctx, user.ID, hashed)
}
