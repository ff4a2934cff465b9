package config

import (
	"errors"
	"fmt"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db            *gorm.DB
	adminEmail    string
	adminPassword string
}

// NewSeeder creates a new seeder instance.
// SEED_ADMIN_EMAIL and SEED_ADMIN_PASSWORD override the development admin credentials.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:            db,
		adminEmail:    getEnv("SEED_ADMIN_EMAIL", "admin@sehatku.id"),
		adminPassword: getEnv("SEED_ADMIN_PASSWORD", "admin123456"),
	}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Info().Msg("🌱 Running database seeders...")

	if err := s.seedHospitalAdmin(); err != nil {
		return fmt.Errorf("seed hospital admin: %w", err)
	}

	if err := s.seedCatalogue(); err != nil {
		return fmt.Errorf("seed catalogue: %w", err)
	}

	log.Info().Msg("✅ Database seeding completed")
	return nil
}

// seedHospitalAdmin creates the first HOSPITAL_ADMIN account.
// Registration never grants this role, so it has to be seeded.
func (s *Seeder) seedHospitalAdmin() error {
	var count int64
	if err := s.db.Model(&models.User{}).Where("role = ?", domain.RoleHospitalAdmin).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if err := password.Check(s.adminPassword); err != nil {
		return fmt.Errorf("SEED_ADMIN_PASSWORD: %w", err)
	}
	hashedPassword, err := password.Hash(s.adminPassword)
	if err != nil {
		return err
	}

	admin := &models.User{
		FullName: "Hospital Admin",
		Email:    s.adminEmail,
		Phone:    "080000000000",
		Password: hashedPassword,
		Role:     domain.RoleHospitalAdmin,
	}
	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Info().Str("email", admin.Email).Msg("✅ Hospital admin created")
	return nil
}

// seedCatalogue creates a demo hospital with a few priced diseases
func (s *Seeder) seedCatalogue() error {
	multiplier := 1.05
	hospital := models.Hospital{
		Name:            "RS Sehat Sentosa",
		Type:            "General",
		Address:         "Jl. Jend. Sudirman No. 1, Jakarta Pusat",
		Phone:           "0215550100",
		PriceMultiplier: &multiplier,
		OpenTime:        "07:00",
		CloseTime:       "22:00",
	}

	var existing models.Hospital
	err := s.db.Where("phone = ?", hospital.Phone).First(&existing).Error
	switch {
	case err == nil:
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if err := s.db.Create(&hospital).Error; err != nil {
		return err
	}
	log.Info().Uint("hospital_id", hospital.ID).Str("name", hospital.Name).Msg("   Created hospital")

	diseases := []models.Disease{
		{Name: "Demam Berdarah", Type: "Infection", Description: "Dengue fever, inpatient care", Cost: 3_500_000},
		{Name: "Tifus", Type: "Infection", Description: "Typhoid fever treatment", Cost: 2_000_000},
		{Name: "Usus Buntu", Type: "Surgery", Description: "Appendectomy", Cost: 15_000_000},
	}
	for i := range diseases {
		diseases[i].HospitalID = hospital.ID
		if err := s.db.Create(&diseases[i]).Error; err != nil {
			return err
		}
		log.Info().Str("name", diseases[i].Name).Msg("   Created disease")
	}
	return nil
}
