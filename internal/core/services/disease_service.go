package services

import (
	"context"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
)

// ErrDiseaseNotFound is returned when a disease does not exist
var ErrDiseaseNotFound = domain.NotFound("Disease not found")

// DiseaseService handles disease master data. Each disease is priced at one hospital.
type DiseaseService struct {
	diseaseRepo  repositories.DiseaseRepository
	hospitalRepo repositories.HospitalRepository
}

// NewDiseaseService creates a new disease service
func NewDiseaseService(diseaseRepo repositories.DiseaseRepository, hospitalRepo repositories.HospitalRepository) *DiseaseService {
	return &DiseaseService{
		diseaseRepo:  diseaseRepo,
		hospitalRepo: hospitalRepo,
	}
}

// CreateDiseaseInput represents create disease input
type CreateDiseaseInput struct {
	Name        string  `json:"name" validate:"required,max=150"`
	Type        string  `json:"type" validate:"required,max=50"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost" validate:"gte=0"`
	HospitalID  uint    `json:"hospitalId" validate:"required"`
}

// UpdateDiseaseInput represents a partial disease update
type UpdateDiseaseInput struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=150"`
	Type        *string  `json:"type" validate:"omitempty,min=1,max=50"`
	Description *string  `json:"description"`
	Cost        *float64 `json:"cost" validate:"omitempty,gte=0"`
	HospitalID  *uint    `json:"hospitalId" validate:"omitempty,min=1"`
}

// Create creates a disease for an existing hospital
func (s *DiseaseService) Create(ctx context.Context, input *CreateDiseaseInput) (*models.DiseaseResponse, error) {
	hospital, err := s.hospitalRepo.GetByID(ctx, input.HospitalID)
	if err != nil {
		return nil, notFoundOr(err, ErrHospitalNotFound)
	}

	disease := &models.Disease{
		Name:        input.Name,
		Type:        input.Type,
		Description: input.Description,
		Cost:        input.Cost,
		HospitalID:  hospital.ID,
	}

	if err := s.diseaseRepo.Create(ctx, disease); err != nil {
		return nil, err
	}
	disease.Hospital = hospital

	log.Info().Uint("disease_id", disease.ID).Uint("hospital_id", hospital.ID).Msg("✅ Disease created")
	return disease.ToResponse(), nil
}

// GetByID gets a disease with its hospital
func (s *DiseaseService) GetByID(ctx context.Context, id uint) (*models.DiseaseResponse, error) {
	disease, err := s.diseaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrDiseaseNotFound)
	}
	return disease.ToResponse(), nil
}

// List lists diseases, newest first
func (s *DiseaseService) List(ctx context.Context, input *ListInput) (*pagination.Page[*models.DiseaseResponse], error) {
	params := input.params()

	diseases, total, err := s.diseaseRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	items := pagination.Map(diseases, (*models.Disease).ToResponse)
	return pagination.NewPage(items, params, total), nil
}

// Update updates a disease
func (s *DiseaseService) Update(ctx context.Context, id uint, input *UpdateDiseaseInput) (*models.DiseaseResponse, error) {
	disease, err := s.diseaseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrDiseaseNotFound)
	}

	if input.HospitalID != nil && *input.HospitalID != disease.HospitalID {
		hospital, err := s.hospitalRepo.GetByID(ctx, *input.HospitalID)
		if err != nil {
			return nil, notFoundOr(err, ErrHospitalNotFound)
		}
		disease.HospitalID = hospital.ID
		disease.Hospital = hospital
	}

	if input.Name != nil {
		disease.Name = *input.Name
	}
	if input.Type != nil {
		disease.Type = *input.Type
	}
	if input.Description != nil {
		disease.Description = *input.Description
	}
	if input.Cost != nil {
		disease.Cost = *input.Cost
	}

	if err := s.diseaseRepo.Update(ctx, disease); err != nil {
		return nil, err
	}

	return disease.ToResponse(), nil
}

// Delete deletes a disease (soft delete)
func (s *DiseaseService) Delete(ctx context.Context, id uint) error {
	if _, err := s.diseaseRepo.GetByID(ctx, id); err != nil {
		return notFoundOr(err, ErrDiseaseNotFound)
	}

	if err := s.diseaseRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Uint("disease_id", id).Msg("🗑️ Disease deleted")
	return nil
}
