package services

import (
	"context"
	"fmt"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/core/domain"

	"github.com/shopspring/decimal"
)

const recentPayLaterLimit = 5

// DashboardService builds the hospital admin overview
type DashboardService struct {
	dashboardRepo repositories.DashboardRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(dashboardRepo repositories.DashboardRepository) *DashboardService {
	return &DashboardService{dashboardRepo: dashboardRepo}
}

// StatusSummary is a count and total amount for one status
type StatusSummary struct {
	Count  int64   `json:"count"`
	Amount float64 `json:"amount"`
}

// AdminDashboardData represents admin dashboard data
type AdminDashboardData struct {
	TotalUsers  int64                 `json:"totalUsers"`
	UsersByRole map[domain.Role]int64 `json:"usersByRole"`

	TotalPayLaters    int64                                   `json:"totalPayLaters"`
	PayLatersByStatus map[domain.PayLaterStatus]StatusSummary `json:"payLatersByStatus"`
	OutstandingAmount float64                                 `json:"outstandingAmount"`
	PendingPayLaters  int64                                   `json:"pendingPayLaters"`

	TotalTreatments    int64                            `json:"totalTreatments"`
	TreatmentsByStatus map[domain.TreatmentStatus]int64 `json:"treatmentsByStatus"`
	PendingTreatments  int64                            `json:"pendingTreatments"`

	RecentPayLaters []*models.PayLaterResponse `json:"recentPayLaters"`
}

// GetAdminDashboard returns admin dashboard data.
// Every known role and status is present, zero when nothing matches.
func (s *DashboardService) GetAdminDashboard(ctx context.Context) (*AdminDashboardData, error) {
	data := &AdminDashboardData{
		UsersByRole: map[domain.Role]int64{
			domain.RoleBPJS:          0,
			domain.RoleNonBPJS:       0,
			domain.RoleNonActiveBPJS: 0,
			domain.RoleHospitalAdmin: 0,
		},
		PayLatersByStatus: map[domain.PayLaterStatus]StatusSummary{
			domain.PayLaterPending:  {},
			domain.PayLaterApproved: {},
			domain.PayLaterRejected: {},
			domain.PayLaterPaid:     {},
		},
		TreatmentsByStatus: map[domain.TreatmentStatus]int64{
			domain.TreatmentPending:   0,
			domain.TreatmentApproved:  0,
			domain.TreatmentOngoing:   0,
			domain.TreatmentCompleted: 0,
			domain.TreatmentCancelled: 0,
		},
		RecentPayLaters: []*models.PayLaterResponse{},
	}

	users, err := s.dashboardRepo.CountUsersByRole(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}
	for _, row := range users {
		data.UsersByRole[domain.Role(row.Key)] += row.Count
		data.TotalUsers += row.Count
	}

	payLaters, err := s.dashboardRepo.PayLaterTotalsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("sum paylaters by status: %w", err)
	}
	for _, row := range payLaters {
		status := domain.PayLaterStatus(row.Key)
		summary := data.PayLatersByStatus[status]
		summary.Count += row.Count
		summary.Amount = decimal.NewFromFloat(summary.Amount).Add(decimal.NewFromFloat(row.Amount)).Round(2).InexactFloat64()
		data.PayLatersByStatus[status] = summary
		data.TotalPayLaters += row.Count
	}
	data.OutstandingAmount = data.PayLatersByStatus[domain.PayLaterApproved].Amount
	data.PendingPayLaters = data.PayLatersByStatus[domain.PayLaterPending].Count

	treatments, err := s.dashboardRepo.CountTreatmentsByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("count treatments by status: %w", err)
	}
	for _, row := range treatments {
		data.TreatmentsByStatus[domain.TreatmentStatus(row.Key)] += row.Count
		data.TotalTreatments += row.Count
	}
	data.PendingTreatments = data.TreatmentsByStatus[domain.TreatmentPending]

	recent, err := s.dashboardRepo.RecentPayLaters(ctx, recentPayLaterLimit)
	if err != nil {
		return nil, fmt.Errorf("recent paylaters: %w", err)
	}
	for _, p := range recent {
		data.RecentPayLaters = append(data.RecentPayLaters, p.ToResponse())
	}

	return data, nil
}
