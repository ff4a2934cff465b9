package services

import (
	"context"
	"strings"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/keylock"
	"sehatku-paylater/internal/pkg/pagination"

	"github.com/rs/zerolog/log"
)

// Treatment service errors
var (
	ErrTreatmentNotFound      = domain.NotFound("Treatment not found")
	ErrTreatmentInvalidStatus = domain.InvalidRequest("Invalid status")
	ErrTreatmentUseApprove    = domain.InvalidRequest("Use the approve endpoint to approve a treatment")
	ErrTreatmentUndeletable   = domain.InvalidRequest("Cannot delete ongoing or completed treatment")
	ErrPayLaterNotApproved    = domain.InvalidRequest("PayLater must be approved to use")
	ErrPayLaterOwnerMismatch  = domain.InvalidRequest("PayLater does not belong to this user")
)

// approvalNotePrefix starts the line appended to notes on approval
const approvalNotePrefix = "Approved at: "

// TreatmentService handles treatment booking, cost estimation and approval
type TreatmentService struct {
	treatmentRepo repositories.TreatmentRepository
	userRepo      repositories.UserRepository
	diseaseRepo   repositories.DiseaseRepository
	hospitalRepo  repositories.HospitalRepository
	payLaterRepo  repositories.PayLaterRepository
	locker        keylock.Locker
	now           Clock
}

// NewTreatmentService creates a new treatment service
func NewTreatmentService(
	treatmentRepo repositories.TreatmentRepository,
	userRepo repositories.UserRepository,
	diseaseRepo repositories.DiseaseRepository,
	hospitalRepo repositories.HospitalRepository,
	payLaterRepo repositories.PayLaterRepository,
	locker keylock.Locker,
) *TreatmentService {
	return &TreatmentService{
		treatmentRepo: treatmentRepo,
		userRepo:      userRepo,
		diseaseRepo:   diseaseRepo,
		hospitalRepo:  hospitalRepo,
		payLaterRepo:  payLaterRepo,
		locker:        locker,
		now:           utcNow,
	}
}

// CreateTreatmentInput represents create treatment input
type CreateTreatmentInput struct {
	UserID          uint    `json:"userId" validate:"required"`
	DiseaseID       uint    `json:"diseaseId" validate:"required"`
	HospitalID      uint    `json:"hospitalId" validate:"required"`
	PayLaterID      *uint   `json:"payLaterId" validate:"omitempty,min=1"`
	AppointmentDate string  `json:"appointmentDate" validate:"required"`
	Notes           *string `json:"notes" validate:"omitempty,max=1000"`
}

// UpdateTreatmentInput represents a partial treatment update
type UpdateTreatmentInput struct {
	AppointmentDate *string `json:"appointmentDate"`
	Status          *string `json:"status"`
	Notes           *string `json:"notes" validate:"omitempty,max=1000"`
}

// EstimateInput represents a cost estimate request
type EstimateInput struct {
	DiseaseID  uint  `json:"diseaseId" validate:"required"`
	HospitalID uint  `json:"hospitalId" validate:"required"`
	PayLaterID *uint `json:"payLaterId" validate:"omitempty,min=1"`
}

// EstimateDisease is the disease part of an estimate
type EstimateDisease struct {
	ID          uint    `json:"id"`
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Cost        float64 `json:"cost"`
}

// EstimateHospital is the hospital part of an estimate
type EstimateHospital struct {
	ID              uint    `json:"id"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	PriceMultiplier float64 `json:"priceMultiplier"`
}

// CostEstimate holds base and hospital-adjusted cost
type CostEstimate struct {
	BaseCost  float64 `json:"baseCost"`
	TotalCost float64 `json:"totalCost"`
	Currency  string  `json:"currency"`
}

// PayLaterEstimate is the repayment schedule when financed by a PayLater
type PayLaterEstimate struct {
	PayLaterID     uint    `json:"payLaterId"`
	Amount         float64 `json:"amount"`
	Tenor          int     `json:"tenor"`
	Interest       float64 `json:"interest"`
	MonthlyPayment float64 `json:"monthlyPayment"`
	TotalPayment   float64 `json:"totalPayment"`
}

// EstimateResult is the full cost estimate response
type EstimateResult struct {
	Disease      EstimateDisease   `json:"disease"`
	Hospital     EstimateHospital  `json:"hospital"`
	CostEstimate CostEstimate      `json:"costEstimate"`
	PayLater     *PayLaterEstimate `json:"payLater,omitempty"`
}

// EstimateCost prices a disease at a hospital, optionally financed by an approved PayLater.
// It writes nothing.
func (s *TreatmentService) EstimateCost(ctx context.Context, input *EstimateInput) (*EstimateResult, error) {
	disease, err := s.diseaseRepo.GetByID(ctx, input.DiseaseID)
	if err != nil {
		return nil, notFoundOr(err, ErrDiseaseNotFound)
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, input.HospitalID)
	if err != nil {
		return nil, notFoundOr(err, ErrHospitalNotFound)
	}

	totalCost := domain.TreatmentCost(disease.Cost, hospital.PriceMultiplier)

	result := &EstimateResult{
		Disease: EstimateDisease{
			ID:          disease.ID,
			Name:        disease.Name,
			Type:        disease.Type,
			Description: disease.Description,
			Cost:        disease.Cost,
		},
		Hospital: EstimateHospital{
			ID:              hospital.ID,
			Name:            hospital.Name,
			Type:            hospital.Type,
			PriceMultiplier: hospital.EffectiveMultiplier(),
		},
		CostEstimate: CostEstimate{
			BaseCost:  disease.Cost,
			TotalCost: totalCost,
			Currency:  domain.Currency,
		},
	}

	if input.PayLaterID == nil {
		return result, nil
	}

	payLater, err := s.payLaterRepo.GetByID(ctx, *input.PayLaterID)
	if err != nil {
		return nil, notFoundOr(err, ErrPayLaterNotFound)
	}
	if payLater.Status != domain.PayLaterApproved {
		return nil, ErrPayLaterNotApproved
	}

	installment := domain.Amortize(totalCost, payLater.Interest, payLater.Tenor)
	result.PayLater = &PayLaterEstimate{
		PayLaterID:     payLater.ID,
		Amount:         payLater.Amount,
		Tenor:          payLater.Tenor,
		Interest:       payLater.Interest,
		MonthlyPayment: installment.MonthlyPayment,
		TotalPayment:   installment.TotalPayment,
	}

	return result, nil
}

// Create books a treatment, optionally financed by the user's approved PayLater
func (s *TreatmentService) Create(ctx context.Context, input *CreateTreatmentInput) (*models.TreatmentResponse, error) {
	appointment, err := domain.ParseDate(input.AppointmentDate)
	if err != nil {
		return nil, err
	}

	// the paylater key keeps the financing status stable until the booking is stored
	unlock, err := keylock.LockAll(ctx, s.locker, treatmentLockKey(input.UserID), payLaterLockKey(input.UserID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}

	disease, err := s.diseaseRepo.GetByID(ctx, input.DiseaseID)
	if err != nil {
		return nil, notFoundOr(err, ErrDiseaseNotFound)
	}

	hospital, err := s.hospitalRepo.GetByID(ctx, input.HospitalID)
	if err != nil {
		return nil, notFoundOr(err, ErrHospitalNotFound)
	}

	var payLater *models.PayLater
	if input.PayLaterID != nil {
		payLater, err = s.payLaterRepo.GetByID(ctx, *input.PayLaterID)
		if err != nil {
			return nil, notFoundOr(err, ErrPayLaterNotFound)
		}
		if payLater.Status != domain.PayLaterApproved {
			return nil, ErrPayLaterNotApproved
		}
		if payLater.UserID != user.ID {
			return nil, ErrPayLaterOwnerMismatch
		}
	}

	treatment := &models.Treatment{
		UserID:          user.ID,
		DiseaseID:       disease.ID,
		HospitalID:      hospital.ID,
		PayLaterID:      input.PayLaterID,
		AppointmentDate: appointment,
		Status:          domain.TreatmentPending,
		Notes:           input.Notes,
	}

	if err := s.treatmentRepo.Create(ctx, treatment); err != nil {
		return nil, err
	}
	treatment.User = user
	treatment.Disease = disease
	treatment.Hospital = hospital
	treatment.PayLater = payLater

	log.Info().
		Uint("treatment_id", treatment.ID).
		Uint("user_id", user.ID).
		Uint("hospital_id", hospital.ID).
		Bool("paylater", payLater != nil).
		Msg("✅ Treatment booked")

	return treatment.ToResponse(), nil
}

// GetByID gets a treatment with its relations
func (s *TreatmentService) GetByID(ctx context.Context, id uint) (*models.TreatmentResponse, error) {
	treatment, err := s.treatmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, ErrTreatmentNotFound)
	}
	return treatment.ToResponse(), nil
}

// List lists treatments, latest appointment first
func (s *TreatmentService) List(ctx context.Context, input *ListInput) (*pagination.Page[*models.TreatmentResponse], error) {
	params := input.params()

	treatments, total, err := s.treatmentRepo.List(ctx, params.Offset, params.Limit)
	if err != nil {
		return nil, err
	}

	items := pagination.Map(treatments, (*models.Treatment).ToResponse)
	return pagination.NewPage(items, params, total), nil
}

// Update reschedules a treatment, edits its notes or moves its status.
// APPROVED is only reachable through Approve.
func (s *TreatmentService) Update(ctx context.Context, id uint, input *UpdateTreatmentInput) (*models.TreatmentResponse, error) {
	treatment, unlock, err := s.lockTreatment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	from := treatment.Status
	if input.Status != nil {
		status, ok := domain.ParseTreatmentStatus(*input.Status)
		if !ok {
			return nil, ErrTreatmentInvalidStatus
		}
		if status != treatment.Status {
			if status == domain.TreatmentApproved {
				return nil, ErrTreatmentUseApprove
			}
			next, err := treatment.Status.Transition(status)
			if err != nil {
				return nil, err
			}
			treatment.Status = next
		}
	}

	if input.AppointmentDate != nil {
		appointment, err := domain.ParseDate(*input.AppointmentDate)
		if err != nil {
			return nil, err
		}
		treatment.AppointmentDate = appointment
	}

	if input.Notes != nil {
		treatment.Notes = input.Notes
	}

	if err := s.treatmentRepo.Update(ctx, treatment); err != nil {
		return nil, err
	}

	if from != treatment.Status {
		log.Info().
			Uint("treatment_id", treatment.ID).
			Uint("user_id", treatment.UserID).
			Str("from", string(from)).
			Str("to", string(treatment.Status)).
			Msg("🔁 Treatment status changed")
	}

	return treatment.ToResponse(), nil
}

// Approve moves a PENDING treatment to APPROVED and stamps the approval time into notes
func (s *TreatmentService) Approve(ctx context.Context, id uint) (*models.TreatmentResponse, error) {
	treatment, unlock, err := s.lockTreatment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if treatment.Status != domain.TreatmentPending {
		return nil, domain.InvalidRequestf("Cannot approve treatment with status %s", treatment.Status)
	}

	status, err := treatment.Status.Transition(domain.TreatmentApproved)
	if err != nil {
		return nil, err
	}

	treatment.Status = status
	notes := appendApprovalNote(treatment.Notes, s.now())
	treatment.Notes = &notes

	if err := s.treatmentRepo.Update(ctx, treatment); err != nil {
		return nil, err
	}

	log.Info().
		Uint("treatment_id", treatment.ID).
		Uint("user_id", treatment.UserID).
		Str("from", string(domain.TreatmentPending)).
		Str("to", string(status)).
		Msg("✅ Treatment approved")

	return treatment.ToResponse(), nil
}

// Delete removes a treatment that has not started
func (s *TreatmentService) Delete(ctx context.Context, id uint) error {
	treatment, unlock, err := s.lockTreatment(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()

	if treatment.Status == domain.TreatmentOngoing || treatment.Status == domain.TreatmentCompleted {
		return ErrTreatmentUndeletable
	}

	if err := s.treatmentRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Uint("treatment_id", id).Msg("🗑️ Treatment deleted")
	return nil
}

// lockTreatment takes the record lock and loads the treatment under it.
// The caller must call unlock once it has saved.
func (s *TreatmentService) lockTreatment(ctx context.Context, id uint) (*models.Treatment, func(), error) {
	unlock, err := s.locker.Lock(ctx, treatmentRecordLockKey(id))
	if err != nil {
		return nil, nil, err
	}

	treatment, err := s.treatmentRepo.GetByID(ctx, id)
	if err != nil {
		unlock()
		return nil, nil, notFoundOr(err, ErrTreatmentNotFound)
	}
	return treatment, unlock, nil
}

func appendApprovalNote(notes *string, at time.Time) string {
	line := approvalNotePrefix + at.UTC().Format(time.RFC3339)
	if notes == nil || strings.TrimSpace(*notes) == "" {
		return line
	}
	return *notes + "\n" + line
}
