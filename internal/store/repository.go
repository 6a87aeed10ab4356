/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract for all
 * data access operations required by the finance-service. By defining an interface,
 * we decouple the application's business logic from the specific database implementation
 * (e.g., PostgreSQL), making the code more modular and easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - github.com/google/uuid: For UUID handling.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesfinance/finance-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
// Transactions are append-only by construction: the interface exposes no way
// to update or delete a ledger entry.
type Repository interface {
	// User methods
	CreateUser(ctx context.Context, user *domain.User) error
	FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	FindUserByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error)
	UpdateUserProfile(ctx context.Context, user *domain.User) error

	// Linked account methods
	CreateAccount(ctx context.Context, account *domain.Account) error
	ListAccountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error)

	// Ledger methods
	CreateTransaction(ctx context.Context, tx *domain.Transaction) error
	// ListTransactionsByUser returns the user's full ledger, newest first.
	ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error)
}
