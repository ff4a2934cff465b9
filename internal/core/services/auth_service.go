package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"sehatku-paylater/internal/adapters/persistence/models"
	"sehatku-paylater/internal/adapters/persistence/repositories"
	"sehatku-paylater/internal/config"
	"sehatku-paylater/internal/core/domain"
	"sehatku-paylater/internal/pkg/jwt"
	"sehatku-paylater/internal/pkg/password"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Auth errors
var (
	ErrInvalidCredentials = domain.Unauthorized("Invalid credentials")
	ErrUserAlreadyExists  = domain.Conflict("User already exists")
	ErrInvalidToken       = domain.Unauthorized("Invalid refresh token")
	ErrTokenExpired       = domain.Unauthorized("Refresh token expired")
	ErrTokenRevoked       = domain.Unauthorized("Refresh token revoked")
)

// sessionRetention is how long revoked or expired sessions stay before cleanup
const sessionRetention = 24 * time.Hour

// AuthService handles authentication business logic
type AuthService struct {
	userRepo         repositories.UserRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *jwt.Issuer
	now              Clock
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo repositories.UserRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           cfg.JWT.TokenIssuer(),
		now:              utcNow,
	}
}

// RegisterInput represents registration input.
// Role is never accepted from the client; it is derived from the BPJS fields.
type RegisterInput struct {
	FullName        string   `json:"fullName" validate:"required,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"required,idphone"`
	Password        string   `json:"password" validate:"required,min=8"`
	Province        string   `json:"province" validate:"required"`
	City            string   `json:"city" validate:"required"`
	District        string   `json:"district" validate:"required"`
	PostalCode      string   `json:"postalCode" validate:"required,max=10"`
	NIK             *string  `json:"nik" validate:"omitempty,len=16,numeric"`
	Salary          *float64 `json:"salary" validate:"omitempty,gte=0"`
	BPJSNumber      *string  `json:"bpjsNumber" validate:"omitempty,max=20"`
	LastPaymentDate *string  `json:"lastPaymentDate"`
}

// LoginInput represents login input
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents access and refresh tokens
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResponse represents authentication response
type AuthResponse struct {
	User         *models.UserResponse `json:"user"`
	AccessToken  string               `json:"accessToken"`
	RefreshToken string               `json:"refreshToken"`
}

// Register registers a new user and signs them in
func (s *AuthService) Register(ctx context.Context, input *RegisterInput) (*AuthResponse, error) {
	user, err := s.createUser(ctx, input)
	if err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("✅ User registered")
	return resp, nil
}

// CreateUser creates a patient account on behalf of a hospital admin.
// No session is issued and the role is classified exactly as on registration.
func (s *AuthService) CreateUser(ctx context.Context, input *RegisterInput, adminID uint) (*models.UserResponse, error) {
	user, err := s.createUser(ctx, input)
	if err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", user.ID).Uint("admin_id", adminID).Str("role", string(user.Role)).Msg("👤 User created by admin")
	return user.ToResponse(), nil
}

func (s *AuthService) createUser(ctx context.Context, input *RegisterInput) (*models.User, error) {
	// 1. Password policy
	if password.Check(input.Password) != nil {
		return nil, ErrWeakPassword
	}

	// 2. Parse last payment date
	var lastPayment *time.Time
	if input.LastPaymentDate != nil && strings.TrimSpace(*input.LastPaymentDate) != "" {
		t, err := domain.ParseDate(*input.LastPaymentDate)
		if err != nil {
			return nil, err
		}
		lastPayment = &t
	}

	// 3. Email and phone must be unused
	exists, err := s.userRepo.ExistsByEmail(ctx, input.Email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	exists, err = s.userRepo.ExistsByPhone(ctx, input.Phone, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserAlreadyExists
	}

	// 4. Hash password
	hashedPassword, err := password.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	// 5. Create user with a classified role
	bpjsNumber := normalizeBPJSNumber(input.BPJSNumber)
	user := &models.User{
		FullName:        input.FullName,
		Email:           input.Email,
		Phone:           input.Phone,
		Password:        hashedPassword,
		Province:        input.Province,
		City:            input.City,
		District:        input.District,
		PostalCode:      input.PostalCode,
		NIK:             input.NIK,
		Salary:          input.Salary,
		BPJSNumber:      bpjsNumber,
		LastPaymentDate: lastPayment,
		Role:            domain.ClassifyBPJS(bpjsNumber, lastPayment, s.now()),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates a user
func (s *AuthService) Login(ctx context.Context, input *LoginInput) (*AuthResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !password.Verify(input.Password, user.Password) {
		return nil, ErrInvalidCredentials
	}

	resp, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	log.Info().Uint("user_id", user.ID).Msg("✅ User logged in")
	return resp, nil
}

// RefreshToken rotates the refresh token and issues a new pair
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*AuthResponse, error) {
	// 1. Validate refresh token JWT
	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	// 2. Find stored token by hash
	storedToken, err := s.refreshTokenRepo.FindByHash(ctx, password.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if storedToken.IsRevoked() {
		// a revoked token being replayed means the chain leaked
		if _, err := s.refreshTokenRepo.RevokeAllForUser(ctx, storedToken.UserID); err != nil {
			log.Error().Err(err).Uint("user_id", storedToken.UserID).Msg("❌ Failed to revoke sessions")
		}
		log.Warn().Uint("user_id", storedToken.UserID).Msg("⚠️ Revoked refresh token reused")
		return nil, ErrTokenRevoked
	}
	if storedToken.IsExpired() {
		return nil, ErrTokenExpired
	}
	if storedToken.UserID != claims.UserID {
		return nil, ErrInvalidToken
	}

	// 3. Load user
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, notFoundOr(err, ErrInvalidToken)
	}

	// 4. Rotate
	tokens, session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokenRepo.Rotate(ctx, storedToken.ID, session); err != nil {
		if errors.Is(err, repositories.ErrSessionRotated) {
			return nil, ErrTokenRevoked
		}
		return nil, err
	}
	resp := &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}

	log.Debug().Uint("user_id", user.ID).Msg("🔄 Token refreshed")
	return resp, nil
}

// Logout revokes the refresh token
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.RevokeByHash(ctx, password.HashToken(refreshToken)); err != nil {
		return err
	}

	log.Debug().Msg("👋 User logged out")
	return nil
}

// LogoutAll revokes all refresh tokens for a user
func (s *AuthService) LogoutAll(ctx context.Context, userID uint) error {
	revoked, err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID)
	if err != nil {
		return err
	}

	log.Info().Uint("user_id", userID).Int64("sessions", revoked).Msg("👋 All sessions revoked")
	return nil
}

// CleanupExpiredTokens deletes sessions that expired or were revoked more than a day ago.
// Revoked rows are kept that long so a replayed token is still recognised as reuse.
func (s *AuthService) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.refreshTokenRepo.Purge(ctx, s.now().Add(-sessionRetention))
}

// ValidateAccessToken validates an access token
func (s *AuthService) ValidateAccessToken(accessToken string) (*jwt.Claims, error) {
	return s.tokens.ParseAccess(accessToken)
}

// GetUserByID gets a user by ID
func (s *AuthService) GetUserByID(ctx context.Context, userID uint) (*models.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, ErrUserNotFound)
	}
	return user.ToResponse(), nil
}

// issueTokens generates a token pair and stores the refresh token hash
func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*AuthResponse, error) {
	tokens, session, err := s.newSession(user)
	if err != nil {
		return nil, err
	}
	if err := s.refreshTokenRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &AuthResponse{
		User:         user.ToResponse(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

// newSession signs a token pair and builds the stored record for its refresh half
func (s *AuthService) newSession(user *models.User) (*TokenPair, *models.RefreshToken, error) {
	accessToken, err := s.tokens.Access(user.ID, user.Email, string(user.Role))
	if err != nil {
		return nil, nil, err
	}
	refreshToken, expiresAt, err := s.tokens.Refresh(user.ID)
	if err != nil {
		return nil, nil, err
	}

	return &TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: password.HashToken(refreshToken),
		ExpiresAt: expiresAt,
	}, nil
}
