package jwt

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("token is invalid")
)

const issuerName = "sehatku-paylater"

// Claims are carried by access tokens
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// RefreshClaims are carried by refresh tokens. The JWT ID makes every refresh token unique.
type RefreshClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// Issuer signs and verifies the access/refresh token pair.
// Access and refresh tokens use different secrets so one can never pass for the other.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewIssuer creates an issuer
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (i *Issuer) registered(ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuerName,
	}
}

// Access signs an access token for the user
func (i *Issuer) Access(userID uint, email, role string) (string, error) {
	claims := Claims{UserID: userID, Email: email, Role: role, RegisteredClaims: i.registered(i.accessTTL)}
	claims.Subject = strconv.FormatUint(uint64(userID), 10)
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.accessSecret)
}

// Refresh signs a refresh token and returns when it expires
func (i *Issuer) Refresh(userID uint) (string, time.Time, error) {
	claims := RefreshClaims{UserID: userID, RegisteredClaims: i.registered(i.refreshTTL)}
	claims.ID = uuid.NewString()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.refreshSecret)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, claims.ExpiresAt.Time, nil
}

// ParseAccess verifies an access token
func (i *Issuer) ParseAccess(token string) (*Claims, error) {
	return parse(token, i.accessSecret, &Claims{})
}

// ParseRefresh verifies a refresh token
func (i *Issuer) ParseRefresh(token string) (*RefreshClaims, error) {
	return parse(token, i.refreshSecret, &RefreshClaims{})
}

func parse[C jwt.Claims](tokenString string, secret []byte, claims C) (C, error) {
	var zero C
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secret, nil
	}, jwt.WithIssuer(issuerName))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return zero, ErrTokenExpired
		}
		return zero, ErrTokenInvalid
	}
	if !token.Valid {
		return zero, ErrTokenInvalid
	}
	return claims, nil
}
