/**
 * @description
 * This file contains the registration, login, and profile logic. Passwords are
 * hashed with bcrypt and never stored or logged in clear text. Successful
 * logins are answered with a signed HS256 JWT whose subject is the internal
 * user id; the API middleware validates it on every protected request.
 *
 * Login failures are deliberately indistinguishable: whether the phone number
 * is unknown or the password is wrong, callers receive the same generic error.
 */

package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/mesfinance/finance-service/internal/store"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// LoginRateLimiter throttles login attempts per phone number. Implementations
// must fail open: a limiter error never blocks a legitimate login.
type LoginRateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// Register creates a new user. The initial balance is parsed as an exact
// decimal and frozen at creation; the service never changes it afterwards.
func (s *Service) Register(ctx context.Context, req domain.RegisterRequest) (*domain.User, error) {
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" {
		return nil, validationErr("first_name", "is required")
	}
	lastName := strings.TrimSpace(req.LastName)
	if lastName == "" {
		return nil, validationErr("last_name", "is required")
	}
	phoneNumber := strings.TrimSpace(req.PhoneNumber)
	if phoneNumber == "" {
		return nil, validationErr("phone_number", "is required")
	}
	if req.Password == "" {
		return nil, validationErr("password", "is required")
	}
	if req.Password != req.PasswordConfirm {
		return nil, validationErr("password_confirm", "passwords do not match")
	}

	// Unlike transaction amounts, the initial balance may be zero: omitting
	// the field and writing an explicit "0" mean the same thing.
	initialBalance := decimal.Zero
	if raw := strings.TrimSpace(req.InitialBalance); raw != "" {
		parsed, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, validationErr("initial_balance", "must be a valid number")
		}
		if parsed.IsNegative() {
			return nil, validationErr("initial_balance", "must not be negative")
		}
		initialBalance = parsed
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		PhoneNumber:    phoneNumber,
		FirstName:      firstName,
		LastName:       lastName,
		InitialBalance: initialBalance,
		PasswordHash:   string(hash),
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	event := domain.UserRegisteredEvent{
		UserID:      user.ID,
		PhoneNumber: user.PhoneNumber,
		Timestamp:   user.CreatedAt,
	}
	if err := s.eventProducer.Publish(ctx, "finance.events", "user.registered", event); err != nil {
		log.Printf("level=warn component=app msg=\"user.registered publish failed\" user_id=%s err=%v", user.ID, err)
	}
	return user, nil
}

// Login checks credentials and issues a session token. The rate limiter, when
// configured, is consulted first and counts every attempt against the phone
// number, valid or not.
func (s *Service) Login(ctx context.Context, req domain.LoginRequest) (token string, user *domain.User, err error) {
	phoneNumber := strings.TrimSpace(req.PhoneNumber)
	if phoneNumber == "" || req.Password == "" {
		return "", nil, validationErr("", "phone number and password are required")
	}

	if s.loginLimiter != nil && s.loginAttemptLimit > 0 {
		count, retryAfter, limiterErr := s.loginLimiter.ConsumeRateLimit(ctx, "login", phoneNumber, s.loginAttemptLimit, s.loginAttemptWindow)
		if limiterErr != nil {
			log.Printf("level=warn component=app msg=\"login limiter unavailable; failing open\" err=%v", limiterErr)
		} else if count > s.loginAttemptLimit {
			return "", nil, &TooManyLoginAttemptsError{RetryAfterSeconds: retryAfter}
		}
	}

	user, err = s.repo.FindUserByPhoneNumber(ctx, phoneNumber)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err = s.issueToken(user.ID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, user, nil
}

func (s *Service) issueToken(userID uuid.UUID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// Profile returns the user together with their linked accounts.
func (s *Service) Profile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	accounts, err := s.repo.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &domain.Profile{User: *user, LinkedAccounts: accounts}, nil
}

// UpdateProfile applies a profile edit. The full name is split on the first
// space: everything before it becomes the first name, the remainder the last.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req domain.UpdateProfileRequest) (*domain.User, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if fullName := strings.TrimSpace(req.FullName); fullName != "" {
		first, last := splitFullName(fullName)
		user.FirstName = first
		user.LastName = last
	}
	if req.Email != nil {
		if email := strings.TrimSpace(*req.Email); email != "" {
			user.Email = &email
		}
	}
	if phone := strings.TrimSpace(req.PhoneNumber); phone != "" {
		user.PhoneNumber = phone
	}

	if err := s.repo.UpdateUserProfile(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func splitFullName(fullName string) (first, last string) {
	parts := strings.SplitN(fullName, " ", 2)
	first = parts[0]
	if len(parts) > 1 {
		last = strings.TrimSpace(parts[1])
	}
	return first, last
}
