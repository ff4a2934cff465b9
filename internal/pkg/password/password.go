package password

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultCost is the bcrypt cost used outside tests
	DefaultCost = 12

	MinLength = 8
	// MaxLength is bcrypt's input limit in bytes
	MaxLength = 72
)

var (
	ErrTooShort     = errors.New("password is too short")
	ErrTooLong      = errors.New("password is too long")
	ErrMissingClass = errors.New("password needs at least one letter and one digit")
)

// Cost is the bcrypt cost used by Hash. Tests lower it.
var Cost = DefaultCost

// Check enforces the password policy: MinLength to MaxLength bytes with a letter and a digit
func Check(plain string) error {
	switch {
	case len(plain) < MinLength:
		return ErrTooShort
	case len(plain) > MaxLength:
		return ErrTooLong
	}

	var letter, digit bool
	for _, r := range plain {
		letter = letter || unicode.IsLetter(r)
		digit = digit || unicode.IsDigit(r)
	}
	if !letter || !digit {
		return ErrMissingClass
	}
	return nil
}

// Hash returns the bcrypt hash of plain
func Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), Cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether plain matches the bcrypt hash
func Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

// HashToken returns the hex SHA-256 of a refresh token. Only this digest is stored.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
