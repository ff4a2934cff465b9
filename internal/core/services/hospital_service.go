package services

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
)

// Hospital service errors
var (
	ErrHospitalNotFound   = domain.NotFound("Hospital not found")
	ErrHospitalPhoneTaken = domain.Conflict("Hospital phone already registered")
)

// HospitalService handles hospital master data
type HospitalService struct {
	hospitalRepo repositories.HospitalRepository
}

// NewHospitalService creates a new hospital service
func NewHospitalService(hospitalRepo repositories.HospitalRepository) *HospitalService {
	return &HospitalService{hospitalRepo: hospitalRepo}
}

// CreateHospitalInput represents create hospital input
type CreateHospitalInput struct {
	Name            string   `json:"name" validate:"required,max=150"`
	Type            string   `json:"type" validate:"required,max=50"`
	Address         string   `json:"address" validate:"required"`
	Phone           string   `json:"phone" validate:"required,max=20"`
	PriceMultiplier *float64 `json:"priceMultiplier" validate:"omitempty,gte=0"`
	OpenTime        string   `json:"openTime" validate:"required,hhmm"`
	CloseTime       string   `json:"closeTime" validate:"required,hhmm"`
}

// UpdateHospitalInput represents a partial hospital update
type UpdateHospitalInput struct {
	Name            *string  `json:"name" validate:"omitempty,min=1,max=150"`
	Type            *string  `json:"type" validate:"omitempty,min=1,max=50"`
	Address         *string  `json:"address"`
	Phone           *string  `json:"phone" validate:"omitempty,max=20"`
	PriceMultiplier *float64 `json:"priceMultiplier" validate:"omitempty,gte=0"`
	OpenTime        *string  `json:"openTime" validate:"omitempty,hhmm"`
	CloseTime       *string  `json:"closeTime" validate:"omitempty,hhmm"`
}

// Create creates a hospital
func (s *HospitalService) Create(ctx context.Context, input *CreateHospitalInput) (*models.Hospital, error) {
	exists, err := s.hospitalRepo.ExistsByPhone(ctx, input.Phone, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrHospitalPhoneTaken
	}

	hospital := &models.Hospital{
		Name:            input.Name,
		Type:            input.Type,
		Address:         input.Address,
		Phone:           input.Phone,
		PriceMultiplier: input.PriceMultiplier,
		OpenTime:        input.OpenTime,
		CloseTime:       input.CloseTime,
	}

	if err := s.hospitalRepo.Create(ctx, hospital); err != nil {
		return nil, err
	}

	log.Info().Uint("hospital_id", hospital.ID).Str("name", hospital.Name).Msg("🏥 Hospital created")
	return hospital, nil
}

// GetByID gets a hospital by ID
func (s *HospitalService) GetByID(ctx context.Context, id uint) (*models.Hospital, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrHospitalNotFound)
	}
	return hospital, nil
}

// List lists hospitals, newest first
func (s *HospitalService) List(ctx context.Context, input *ListInput) (*pagination.Page[*models.Hospital], error) {
	params := input.params()

	hospitals, total, err := s.hospitalRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	return pagination.NewPage(hospitals, params, total), nil
}

// Update updates a hospital
func (s *HospitalService) Update(ctx context.Context, id uint, input *UpdateHospitalInput) (*models.Hospital, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrHospitalNotFound)
	}

	if input.Phone != nil && *input.Phone != hospital.Phone {
		exists, err := s.hospitalRepo.ExistsByPhone(ctx, *input.Phone, hospital.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, ErrHospitalPhoneTaken
		}
		hospital.Phone = *input.Phone
	}

	if input.Name != nil {
		hospital.Name = *input.Name
	}
	if input.Type != nil {
		hospital.Type = *input.Type
	}
	if input.Address != nil {
		hospital.Address = *input.Address
	}
	if input.PriceMultiplier != nil {
		hospital.PriceMultiplier = input.PriceMultiplier
	}
	if input.OpenTime != nil {
		hospital.OpenTime = *input.OpenTime
	}
	if input.CloseTime != nil {
		hospital.CloseTime = *input.CloseTime
	}

	if err := s.hospitalRepo.Update(ctx, hospital); err != nil {
		return nil, err
	}

	return hospital, nil
}

// Delete deletes a hospital (soft delete)
func (s *HospitalService) Delete(ctx context.Context, id uint) error {
	if _, err := s.hospitalRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, ErrHospitalNotFound)
	}

	if err := s.hospitalRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Uint("hospital_id", id).Msg("🗑️ Hospital deleted")
	return nil
}
