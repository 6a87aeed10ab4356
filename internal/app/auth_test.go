package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/mesfinance/finance-service/internal/store"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func TestRegister_Validation(t *testing.T) {
	valid := domain.RegisterRequest{
		FirstName:       "Awa",
		LastName:        "Ndiaye",
		PhoneNumber:     "677000111",
		InitialBalance:  "5000",
		Password:        "secret123",
		PasswordConfirm: "secret123",
	}

	tests := []struct {
		name   string
		mutate func(req *domain.RegisterRequest)
	}{
		{"missing first name", func(req *domain.RegisterRequest) { req.FirstName = "  " }},
		{"missing last name", func(req *domain.RegisterRequest) { req.LastName = "" }},
		{"missing phone number", func(req *domain.RegisterRequest) { req.PhoneNumber = "" }},
		{"missing password", func(req *domain.RegisterRequest) { req.Password = ""; req.PasswordConfirm = "" }},
		{"password mismatch", func(req *domain.RegisterRequest) { req.PasswordConfirm = "different" }},
		{"malformed initial balance", func(req *domain.RegisterRequest) { req.InitialBalance = "cinq mille" }},
		{"negative initial balance", func(req *domain.RegisterRequest) { req.InitialBalance = "-100" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newMemoryRepoStub()
			svc, _ := newTestService(repo)

			req := valid
			tt.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if len(repo.users) != 0 {
				t.Fatal("expected no user to be created on rejection")
			}
		})
	}
}

func TestRegister_Success(t *testing.T) {
	repo := newMemoryRepoStub()
	svc, producer := newTestService(repo)

	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		FirstName:       "Awa",
		LastName:        "Ndiaye",
		PhoneNumber:     " 677000111 ",
		InitialBalance:  "5000",
		Password:        "secret123",
		PasswordConfirm: "secret123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.PhoneNumber != "677000111" {
		t.Fatalf("expected trimmed phone number, got %q", user.PhoneNumber)
	}
	if !user.InitialBalance.Equal(decimal.RequireFromString("5000")) {
		t.Fatalf("expected initial balance 5000, got %s", user.InitialBalance)
	}
	if user.PasswordHash == "secret123" || user.PasswordHash == "" {
		t.Fatal("expected the password to be stored as a bcrypt hash")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")); err != nil {
		t.Fatalf("stored hash does not verify against the password: %v", err)
	}
	if len(producer.routingKeys) != 1 || producer.routingKeys[0] != "user.registered" {
		t.Fatalf("expected one user.registered event, got %v", producer.routingKeys)
	}
}

func TestRegister_ZeroInitialBalance(t *testing.T) {
	repo := newMemoryRepoStub()
	svc, _ := newTestService(repo)

	// An explicit "0" is as valid as omitting the field entirely.
	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		FirstName:       "Awa",
		LastName:        "Ndiaye",
		PhoneNumber:     "677000111",
		InitialBalance:  "0",
		Password:        "secret123",
		PasswordConfirm: "secret123",
	})
	if err != nil {
		t.Fatalf("Register with initial balance 0 returned error: %v", err)
	}
	if !user.InitialBalance.IsZero() {
		t.Fatalf("expected initial balance 0, got %s", user.InitialBalance)
	}
}

func TestRegister_DuplicatePhoneNumber(t *testing.T) {
	repo := newMemoryRepoStub()
	svc, _ := newTestService(repo)

	req := domain.RegisterRequest{
		FirstName:       "Awa",
		LastName:        "Ndiaye",
		PhoneNumber:     "677000111",
		Password:        "secret123",
		PasswordConfirm: "secret123",
	}
	if _, err := svc.Register(context.Background(), req); err != nil {
		t.Fatalf("first registration returned error: %v", err)
	}

	_, err := svc.Register(context.Background(), req)
	if !errors.Is(err, store.ErrPhoneNumberTaken) {
		t.Fatalf("expected ErrPhoneNumberTaken, got %v", err)
	}
}

func registerTestUser(t *testing.T, svc *Service) *domain.User {
	t.Helper()
	user, err := svc.Register(context.Background(), domain.RegisterRequest{
		FirstName:       "Awa",
		LastName:        "Ndiaye",
		PhoneNumber:     "677000111",
		Password:        "secret123",
		PasswordConfirm: "secret123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	return user
}

func TestLogin(t *testing.T) {
	repo := newMemoryRepoStub()
	svc, _ := newTestService(repo)
	user := registerTestUser(t, svc)

	t.Run("valid credentials yield a token for the user", func(t *testing.T) {
		token, loggedIn, err := svc.Login(context.Background(), domain.LoginRequest{
			PhoneNumber: "677000111",
			Password:    "secret123",
		})
		if err != nil {
			t.Fatalf("Login returned error: %v", err)
		}
		if loggedIn.ID != user.ID {
			t.Fatalf("expected user %s, got %s", user.ID, loggedIn.ID)
		}

		claims := &jwt.RegisteredClaims{}
		parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte("test-secret"), nil
		})
		if err != nil || !parsed.Valid {
			t.Fatalf("expected a valid signed token, got err=%v", err)
		}
		if claims.Subject != user.ID.String() {
			t.Fatalf("expected token subject %s, got %s", user.ID, claims.Subject)
		}
	})

	t.Run("wrong password and unknown phone are indistinguishable", func(t *testing.T) {
		_, _, wrongPassword := svc.Login(context.Background(), domain.LoginRequest{
			PhoneNumber: "677000111",
			Password:    "nope",
		})
		_, _, unknownPhone := svc.Login(context.Background(), domain.LoginRequest{
			PhoneNumber: "699999999",
			Password:    "secret123",
		})
		if !errors.Is(wrongPassword, ErrInvalidCredentials) || !errors.Is(unknownPhone, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials for both failures, got %v and %v", wrongPassword, unknownPhone)
		}
	})
}

// countingLimiter counts attempts in memory, mirroring the Redis limiter contract.
type countingLimiter struct {
	counts map[string]int
	err    error
}

func (l *countingLimiter) ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (int, int, error) {
	if l.err != nil {
		return 0, 0, l.err
	}
	if l.counts == nil {
		l.counts = map[string]int{}
	}
	key := scope + ":" + subject
	l.counts[key]++
	return l.counts[key], 1, nil
}

func TestLogin_RateLimited(t *testing.T) {
	repo := newMemoryRepoStub()
	svc, _ := newTestService(repo)
	registerTestUser(t, svc)

	svc.SetLoginRateLimiter(&countingLimiter{}, 2, time.Minute)

	req := domain.LoginRequest{PhoneNumber: "677000111", Password: "secret123"}
	for i := 0; i < 2; i++ {
		if _, _, err := svc.Login(context.Background(), req); err != nil {
			t.Fatalf("login %d returned error: %v", i+1, err)
		}
	}

	_, _, err := svc.Login(context.Background(), req)
	if !errors.Is(err, ErrTooManyLoginAttempts) {
		t.Fatalf("expected ErrTooManyLoginAttempts on the third attempt, got %v", err)
	}
	var throttled *TooManyLoginAttemptsError
	if !errors.As(err, &throttled) || throttled.RetryAfterSeconds < 1 {
		t.Fatalf("expected the error to carry a retry-after hint, got %v", err)
	}
}

func TestLogin_LimiterFailsOpen(t *testing.T) {
	repo := newMemoryRepoStub()
	svc, _ := newTestService(repo)
	registerTestUser(t, svc)

	svc.SetLoginRateLimiter(&countingLimiter{err: errors.New("redis down")}, 2, time.Minute)

	if _, _, err := svc.Login(context.Background(), domain.LoginRequest{
		PhoneNumber: "677000111",
		Password:    "secret123",
	}); err != nil {
		t.Fatalf("expected login to succeed when the limiter errors, got %v", err)
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newMemoryRepoStub()
	svc, _ := newTestService(repo)
	user := registerTestUser(t, svc)

	email := "awa@example.com"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, domain.UpdateProfileRequest{
		FullName: "Fatou Diop Sall",
		Email:    &email,
	})
	if err != nil {
		t.Fatalf("UpdateProfile returned error: %v", err)
	}

	if updated.FirstName != "Fatou" || updated.LastName != "Diop Sall" {
		t.Fatalf("expected full name split on first space, got %q / %q", updated.FirstName, updated.LastName)
	}
	if updated.Email == nil || *updated.Email != email {
		t.Fatalf("expected email to be updated, got %v", updated.Email)
	}
	if updated.PhoneNumber != "677000111" {
		t.Fatalf("expected phone number to be unchanged, got %q", updated.PhoneNumber)
	}
}

func TestSplitFullName(t *testing.T) {
	tests := []struct {
		input     string
		wantFirst string
		wantLast  string
	}{
		{"Awa", "Awa", ""},
		{"Awa Ndiaye", "Awa", "Ndiaye"},
		{"Jean de la Croix", "Jean", "de la Croix"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			first, last := splitFullName(tt.input)
			if first != tt.wantFirst || last != tt.wantLast {
				t.Fatalf("expected %q / %q, got %q / %q", tt.wantFirst, tt.wantLast, first, last)
			}
		})
	}
}
