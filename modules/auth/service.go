package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/zafarimam8588/ayo-portal/pkg/email"
	"github.com/zafarimam8588/ayo-portal/pkg/jwt"
	"github.com/zafarimam8588/ayo-portal/pkg/logger"
	"github.com/zafarimam8588/ayo-portal/pkg/rbac"
	"github.com/zafarimam8588/ayo-portal/pkg/sanitizer"
)

// CodeStore issues and verifies one-time codes. *OTPStore is the Redis
// implementation.
type CodeStore interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, email, code string) error
}

// Limiter throttles repeated attempts per key. *RateLimiter is the Redis
// implementation.
type Limiter interface {
	Allow(ctx context.Context, key string) error
}

// Service implements registration, email verification, and login.
type Service struct {
	cfg     Config
	repo    UserRepository
	otp     CodeStore
	limiter Limiter
	tokens  *jwt.Service
	sender  email.EmailSender
	log     *slog.Logger
}

func NewService(cfg Config, repo UserRepository, otp CodeStore, limiter Limiter, tokens *jwt.Service, sender email.EmailSender, log *slog.Logger) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		otp:     otp,
		limiter: limiter,
		tokens:  tokens,
		sender:  sender,
		log:     log.With(logger.Component("auth")),
	}
}

// Register creates an unverified member account and emails a one-time code.
// The account is persisted before the email goes out; a failed send is logged
// and the user can request a fresh code by registering again.
func (s *Service) Register(ctx context.Context, name, emailAddr, password string) (User, error) {
	name = sanitizer.Name(name)
	if name == "" {
		return User{}, ErrEmptyName
	}
	if !sanitizer.IsValidEmail(emailAddr) {
		return User{}, ErrInvalidEmail
	}
	if len(password) < 8 {
		return User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return User{}, fmt.Errorf("auth: hash password: %w", err)
	}

	user := User{
		ID:            uuid.New(),
		Name:          name,
		Email:         sanitizer.NormalizeEmail(emailAddr),
		PasswordHash:  string(hash),
		Role:          rbac.RoleMember,
		EmailVerified: false,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return User{}, err
	}

	s.sendOTP(ctx, user)
	return user, nil
}

// ResendCode issues a fresh verification code for an unverified account.
func (s *Service) ResendCode(ctx context.Context, emailAddr string) error {
	if !sanitizer.IsValidEmail(emailAddr) {
		return ErrInvalidEmail
	}
	addr := sanitizer.NormalizeEmail(emailAddr)
	if err := s.limiter.Allow(ctx, "otp:"+addr); err != nil {
		return err
	}
	user, err := s.repo.GetByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if user.EmailVerified {
		return nil
	}
	s.sendOTP(ctx, user)
	return nil
}

// VerifyEmail consumes the one-time code and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, emailAddr, code string) error {
	if !sanitizer.IsValidEmail(emailAddr) {
		return ErrInvalidEmail
	}
	addr := sanitizer.NormalizeEmail(emailAddr)
	code = sanitizer.OTP(code)
	if code == "" {
		return ErrInvalidOTP
	}

	user, err := s.repo.GetByEmail(ctx, addr)
	if err != nil {
		return err
	}
	if err := s.otp.Verify(ctx, addr, code); err != nil {
		return err
	}
	if err := s.repo.MarkEmailVerified(ctx, user.ID); err != nil {
		return err
	}

	params := email.WelcomeEmail(user.Email, user.Name)
	if err := s.sender.SendEmail(ctx, params); err != nil {
		s.log.ErrorContext(ctx, "welcome email failed", logger.Recipient(user.Email), logger.Error(err))
	}
	return nil
}

// Login checks credentials and returns a signed session token. Attempts are
// rate limited per email address.
func (s *Service) Login(ctx context.Context, emailAddr, password string) (string, User, error) {
	if !sanitizer.IsValidEmail(emailAddr) {
		return "", User{}, ErrInvalidCredentials
	}
	addr := sanitizer.NormalizeEmail(emailAddr)

	if err := s.limiter.Allow(ctx, "login:"+addr); err != nil {
		return "", User{}, err
	}

	user, err := s.repo.GetByEmail(ctx, addr)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", User{}, ErrInvalidCredentials
		}
		return "", User{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", User{}, ErrInvalidCredentials
	}
	if !user.EmailVerified {
		return "", User{}, ErrEmailNotVerified
	}

	token, err := s.tokens.Issue(user.ID.String(), string(user.Role))
	if err != nil {
		return "", User{}, fmt.Errorf("auth: issue token: %w", err)
	}
	return token, user, nil
}

// GetUser loads an account by id.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) sendOTP(ctx context.Context, user User) {
	code, err := s.otp.Issue(ctx, user.Email)
	if err != nil {
		s.log.ErrorContext(ctx, "otp issue failed", logger.Recipient(user.Email), logger.Error(err))
		return
	}
	params, err := email.OTPEmail(user.Email, user.Name, code)
	if err != nil {
		s.log.ErrorContext(ctx, "otp email build failed", logger.Recipient(user.Email), logger.Error(err))
		return
	}
	if err := s.sender.SendEmail(ctx, params); err != nil {
		s.log.ErrorContext(ctx, "otp email failed", logger.Recipient(user.Email), logger.Error(err))
	}
}
