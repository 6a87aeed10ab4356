package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is the owner of a ledger. The phone number is the unique login
// identifier. InitialBalance is set once at registration and never changed by
// the service afterwards.
type User struct {
	ID             uuid.UUID       `json:"id"`
	PhoneNumber    string          `json:"phone_number"`
	FirstName      string          `json:"first_name"`
	LastName       string          `json:"last_name,omitempty"`
	Email          *string         `json:"email,omitempty"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	PasswordHash   string          `json:"-"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RegisterRequest is the DTO for new user registration. InitialBalance is a
// string for the same reason transaction amounts are: malformed numbers must
// surface as validation errors.
type RegisterRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	PhoneNumber     string `json:"phone_number"`
	InitialBalance  string `json:"initial_balance"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

// LoginRequest is the DTO for credential checks at login.
type LoginRequest struct {
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
}

// UpdateProfileRequest carries a profile edit. It is a distinct request type
// from CreateAccountRequest so that intent is decided by the route, never by
// which form fields happen to be present.
type UpdateProfileRequest struct {
	FullName    string  `json:"full_name"`
	Email       *string `json:"email,omitempty"`
	PhoneNumber string  `json:"phone_number"`
}

// Profile is the authenticated user together with their linked accounts, as
// returned by the profile read endpoint.
type Profile struct {
	User           User      `json:"user"`
	LinkedAccounts []Account `json:"linked_accounts"`
}

// UserRegisteredEvent is published to RabbitMQ after a successful registration.
type UserRegisteredEvent struct {
	UserID      uuid.UUID `json:"user_id"`
	PhoneNumber string    `json:"phone_number"`
	Timestamp   time.Time `json:"timestamp"`
}
