package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// otpLength is the number of digits in a verification code.
const otpLength = 6

// OTPStore keeps one-time verification codes in Redis with a TTL. Codes are
// keyed by email so a fresh registration attempt overwrites the old code.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string { return "auth:otp:" + email }

// Issue generates a new code for the email and stores it, replacing any
// previous code.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	code, err := generateOTP()
	if err != nil {
		return "", fmt.Errorf("auth: generate otp: %w", err)
	}
	if err := s.client.Set(ctx, otpKey(email), code, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("auth: store otp: %w", err)
	}
	return code, nil
}

// Verify checks the code and consumes it on success. A wrong code leaves the
// stored one intact so the user can retry until it expires.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.Get(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrInvalidOTP
		}
		return fmt.Errorf("auth: read otp: %w", err)
	}
	if stored != code {
		return ErrInvalidOTP
	}
	if err := s.client.Del(ctx, otpKey(email)).Err(); err != nil {
		return fmt.Errorf("auth: consume otp: %w", err)
	}
	return nil
}

func generateOTP() (string, error) {
	max := big.NewInt(1)
	for i := 0; i < otpLength; i++ {
		max.Mul(max, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpLength, n), nil
}

// RateLimiter is a fixed-window counter in Redis. The first hit in a window
// sets the expiry; once the budget is exceeded further hits are refused until
// the window rolls over.
type RateLimiter struct {
	client *redis.Client
	window time.Duration
	budget int
}

func NewRateLimiter(client *redis.Client, window time.Duration, budget int) *RateLimiter {
	return &RateLimiter{client: client, window: window, budget: budget}
}

// Allow records a hit for the key and reports whether it is within budget.
func (l *RateLimiter) Allow(ctx context.Context, key string) error {
	full := "auth:rl:" + key
	count, err := l.client.Incr(ctx, full).Result()
	if err != nil {
		return fmt.Errorf("auth: rate limit incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, full, l.window).Err(); err != nil {
			return fmt.Errorf("auth: rate limit expire: %w", err)
		}
	}
	if count > int64(l.budget) {
		return ErrRateLimited
	}
	return nil
}
