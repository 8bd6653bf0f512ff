// Package auth owns registration, email verification, and login for the
// portal. Sessions are stateless JWTs; one-time codes live in Redis.
package auth

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
)

// User is a portal account. Members get a profile in the membership module;
// admins are provisioned out of band.
type User struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	Role          rbac.Role
	EmailVerified bool
	CreatedAt     time.Time
}

// Config holds the auth module's tunables.
type Config struct {
	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTIssuer   string        `env:"JWT_ISSUER" envDefault:"ayo-portal"`
	TokenTTL    time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	OTPTTL      time.Duration `env:"AUTH_OTP_TTL" envDefault:"10m"`
	BcryptCost  int           `env:"AUTH_BCRYPT_COST" envDefault:"12"`
	LoginWindow time.Duration `env:"AUTH_LOGIN_WINDOW" envDefault:"1m"`
	LoginBudget int           `env:"AUTH_LOGIN_BUDGET" envDefault:"10"`
}

var (
	ErrEmailTaken         = errors.New("auth: email is already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrUserNotFound       = errors.New("auth: user not found")
	ErrInvalidOTP         = errors.New("auth: invalid or expired verification code")
	ErrEmailNotVerified   = errors.New("auth: email address is not verified")
	ErrRateLimited        = errors.New("auth: too many attempts, try again later")
	ErrWeakPassword       = errors.New("auth: password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("auth: invalid email address")
	ErrEmptyName          = errors.New("auth: name is required")
)
