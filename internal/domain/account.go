package domain

import (
	"time"

	"github.com/google/uuid"
)

// AccountProvider identifies the mobile-money operator behind a linked account.
type AccountProvider string

const (
	ProviderMTN    AccountProvider = "MTN"
	ProviderOrange AccountProvider = "Orange"
)

// IsValid reports whether p is one of the known providers.
func (p AccountProvider) IsValid() bool {
	return p == ProviderMTN || p == ProviderOrange
}

// Account is a descriptive record of a money account a user has linked to
// their profile. It is not referenced by transactions: ledger entries carry an
// AccountTag instead, and the two enumerations overlap without being equal.
type Account struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.UUID       `json:"user_id"`
	Provider  AccountProvider `json:"type_compte"`
	Phone     string          `json:"phone"`
	Label     string          `json:"label"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CreateAccountRequest is the DTO for linking a new account to a profile.
type CreateAccountRequest struct {
	Provider string `json:"type_compte"`
	Phone    string `json:"phone"`
	Label    string `json:"label"`
}
