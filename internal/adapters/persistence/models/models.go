package models

import (
	"time"

	"sehatku-paylater/internal/core/domain"

	"gorm.io/gorm"
)

// ============================================================
// Auth & User Tables
// ============================================================

// User represents users table
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	FullName        string         `gorm:"size:100;not null" json:"fullName"`
	Email           string         `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Phone           string         `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	Password        string         `gorm:"size:255;not null" json:"-"`
	Province        string         `gorm:"size:100" json:"province"`
	City            string         `gorm:"size:100" json:"city"`
	District        string         `gorm:"size:100" json:"district"`
	PostalCode      string         `gorm:"size:10" json:"postalCode"`
	NIK             *string        `gorm:"column:nik;size:16" json:"nik"`
	Salary          *float64       `gorm:"type:decimal(15,2)" json:"salary"`
	BPJSNumber      *string        `gorm:"column:bpjs_number;size:20;index" json:"bpjsNumber"`
	LastPaymentDate *time.Time     `gorm:"type:date" json:"lastPaymentDate"`
	Role            domain.Role    `gorm:"size:20;not null;default:'NON_BPJS';index" json:"role"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse DTO
type UserResponse struct {
	ID              uint        `json:"id"`
	FullName        string      `json:"fullName"`
	Email           string      `json:"email"`
	Phone           string      `json:"phone"`
	Province        string      `json:"province"`
	City            string      `json:"city"`
	District        string      `json:"district"`
	PostalCode      string      `json:"postalCode"`
	NIK             *string     `json:"nik,omitempty"`
	Salary          *float64    `json:"salary,omitempty"`
	BPJSNumber      *string     `json:"bpjsNumber,omitempty"`
	LastPaymentDate *time.Time  `json:"lastPaymentDate,omitempty"`
	Role            domain.Role `json:"role"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:              u.ID,
		FullName:        u.FullName,
		Email:           u.Email,
		Phone:           u.Phone,
		Province:        u.Province,
		City:            u.City,
		District:        u.District,
		PostalCode:      u.PostalCode,
		NIK:             u.NIK,
		Salary:          u.Salary,
		BPJSNumber:      u.BPJSNumber,
		LastPaymentDate: u.LastPaymentDate,
		Role:            u.Role,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// UserSummary is the owner projection embedded in PayLater and Treatment responses
type UserSummary struct {
	ID       uint        `json:"id"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

func (u *User) ToSummary() *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// RefreshToken represents refresh_tokens table
type RefreshToken struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	UserID    uint       `gorm:"index;not null" json:"user_id"`
	TokenHash string     `gorm:"size:255;not null;index" json:"-"`
	ExpiresAt time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	RevokedAt *time.Time `gorm:"index" json:"revoked_at"`
	User      User       `gorm:"foreignKey:UserID" json:"-"`
}

func (RefreshToken) TableName() string {
	return "refresh_tokens"
}

func (rt *RefreshToken) IsRevoked() bool {
	return rt.RevokedAt != nil
}

func (rt *RefreshToken) IsExpired() bool {
	return time.Now().After(rt.ExpiresAt)
}

// ============================================================
// Master Tables
// ============================================================

// Hospital represents hospitals table
type Hospital struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Name            string         `gorm:"size:150;not null" json:"name"`
	Type            string         `gorm:"size:50;not null" json:"type"`
	Address         string         `gorm:"type:text" json:"address"`
	Phone           string         `gorm:"uniqueIndex;size:20;not null" json:"phone"`
	PriceMultiplier *float64       `gorm:"type:decimal(6,3)" json:"priceMultiplier"`
	OpenTime        string         `gorm:"size:5" json:"openTime"`
	CloseTime       string         `gorm:"size:5" json:"closeTime"`
	CreatedAt       time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Hospital) TableName() string {
	return "hospitals"
}

// EffectiveMultiplier returns the price multiplier, 1 when unset
func (h *Hospital) EffectiveMultiplier() float64 {
	if h.PriceMultiplier == nil {
		return 1
	}
	return *h.PriceMultiplier
}

// HospitalSummary is the projection embedded in disease responses
type HospitalSummary struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

func (h *Hospital) ToSummary() *HospitalSummary {
	if h == nil {
		return nil
	}
	return &HospitalSummary{ID: h.ID, Name: h.Name, Type: h.Type}
}

// Disease represents diseases table
type Disease struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Name        string         `gorm:"size:150;not null" json:"name"`
	Type        string         `gorm:"size:50" json:"type"`
	Description string         `gorm:"type:text" json:"description"`
	Cost        float64        `gorm:"type:decimal(15,2);not null" json:"cost"`
	HospitalID  uint           `gorm:"not null;index" json:"hospitalId"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"autoUpdateTime" json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"-"`
}

func (Disease) TableName() string {
	return "diseases"
}

// DiseaseResponse DTO
type DiseaseResponse struct {
	ID          uint             `json:"id"`
	Name        string           `json:"name"`
	Type        string           `json:"type"`
	Description string           `json:"description"`
	Cost        float64          `json:"cost"`
	HospitalID  uint             `json:"hospitalId"`
	Hospital    *HospitalSummary `json:"hospital,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func (d *Disease) ToResponse() *DiseaseResponse {
	return &DiseaseResponse{
		ID:          d.ID,
		Name:        d.Name,
		Type:        d.Type,
		Description: d.Description,
		Cost:        d.Cost,
		HospitalID:  d.HospitalID,
		Hospital:    d.Hospital.ToSummary(),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// ============================================================
// Main Tables
// ============================================================

// PayLater represents pay_laters table
type PayLater struct {
	ID         uint                  `gorm:"primaryKey" json:"id"`
	UserID     uint                  `gorm:"not null;index:idx_pay_laters_user_status" json:"userId"`
	Amount     float64               `gorm:"type:decimal(15,2);not null" json:"amount"`
	Tenor      int                   `gorm:"not null" json:"tenor"`
	Interest   float64               `gorm:"type:decimal(5,4);not null" json:"interest"`
	Status     domain.PayLaterStatus `gorm:"size:20;not null;default:'PENDING';index:idx_pay_laters_user_status" json:"status"`
	ApprovedAt *time.Time            `json:"approvedAt"`
	CreatedAt  time.Time             `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt  time.Time             `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (PayLater) TableName() string {
	return "pay_laters"
}

// PayLaterResponse DTO
type PayLaterResponse struct {
	ID         uint                  `json:"id"`
	UserID     uint                  `json:"userId"`
	Amount     float64               `json:"amount"`
	Tenor      int                   `json:"tenor"`
	Interest   float64               `json:"interest"`
	Status     domain.PayLaterStatus `json:"status"`
	ApprovedAt *time.Time            `json:"approvedAt"`
	User       *UserSummary          `json:"user,omitempty"`
	CreatedAt  time.Time             `json:"createdAt"`
	UpdatedAt  time.Time             `json:"updatedAt"`
}

func (p *PayLater) ToResponse() *PayLaterResponse {
	return &PayLaterResponse{
		ID:         p.ID,
		UserID:     p.UserID,
		Amount:     p.Amount,
		Tenor:      p.Tenor,
		Interest:   p.Interest,
		Status:     p.Status,
		ApprovedAt: p.ApprovedAt,
		User:       p.User.ToSummary(),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// Treatment represents treatments table
type Treatment struct {
	ID              uint                   `gorm:"primaryKey" json:"id"`
	UserID          uint                   `gorm:"not null;index" json:"userId"`
	DiseaseID       uint                   `gorm:"not null;index" json:"diseaseId"`
	HospitalID      uint                   `gorm:"not null;index" json:"hospitalId"`
	PayLaterID      *uint                  `gorm:"index" json:"payLaterId"`
	AppointmentDate time.Time              `gorm:"not null;index" json:"appointmentDate"`
	Status          domain.TreatmentStatus `gorm:"size:20;not null;default:'PENDING'" json:"status"`
	Notes           *string                `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time              `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt       time.Time              `gorm:"autoUpdateTime" json:"updatedAt"`

	// Relations
	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Disease  *Disease  `gorm:"foreignKey:DiseaseID" json:"-"`
	Hospital *Hospital `gorm:"foreignKey:HospitalID" json:"-"`
	PayLater *PayLater `gorm:"foreignKey:PayLaterID" json:"-"`
}

func (Treatment) TableName() string {
	return "treatments"
}

// TreatmentResponse DTO
type TreatmentResponse struct {
	ID              uint                   `json:"id"`
	UserID          uint                   `json:"userId"`
	DiseaseID       uint                   `json:"diseaseId"`
	HospitalID      uint                   `json:"hospitalId"`
	PayLaterID      *uint                  `json:"payLaterId"`
	AppointmentDate time.Time              `json:"appointmentDate"`
	Status          domain.TreatmentStatus `json:"status"`
	Notes           *string                `json:"notes"`
	User            *UserSummary           `json:"user,omitempty"`
	Disease         *DiseaseResponse       `json:"disease,omitempty"`
	Hospital        *Hospital              `json:"hospital,omitempty"`
	PayLater        *PayLaterResponse      `json:"payLater,omitempty"`
	CreatedAt       time.Time              `json:"createdAt"`
	UpdatedAt       time.Time              `json:"updatedAt"`
}

func (t *Treatment) ToResponse() *TreatmentResponse {
	resp := &TreatmentResponse{
		ID:              t.ID,
		UserID:          t.UserID,
		DiseaseID:       t.DiseaseID,
		HospitalID:      t.HospitalID,
		PayLaterID:      t.PayLaterID,
		AppointmentDate: t.AppointmentDate,
		Status:          t.Status,
		Notes:           t.Notes,
		User:            t.User.ToSummary(),
		Hospital:        t.Hospital,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}

	if t.Disease != nil {
		resp.Disease = t.Disease.ToResponse()
	}
	if t.PayLater != nil {
		resp.PayLater = t.PayLater.ToResponse()
	}

	return resp
}

// ============================================================
// Auto Migration
// ============================================================

// AutoMigrate runs auto migration for all tables
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&RefreshToken{},
		&Hospital{},
		&Disease{},
		&PayLater{},
		&Treatment{},
	)
}
