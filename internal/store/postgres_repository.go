/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository` interface.
 * It contains all the necessary SQL queries to interact with the database tables
 * for users, linked accounts, and the append-only transactions ledger.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - github.com/shopspring/decimal: Exact decimal money values.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/shopspring/decimal"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrAccountNotFound  = errors.New("account not found")
	ErrPhoneNumberTaken = errors.New("phone number already registered")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUser inserts a new user and fills in the server-assigned id and
// timestamps. A unique-violation on the phone number is mapped to
// ErrPhoneNumberTaken so callers can surface it as a validation problem.
func (r *PostgresRepository) CreateUser(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (phone_number, first_name, last_name, email, password_hash, initial_balance)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		user.PhoneNumber,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		user.InitialBalance.StringFixed(2),
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPhoneNumberTaken
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// FindUserByID retrieves a user from the database by their ID.
func (r *PostgresRepository) FindUserByID(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	query := `
		SELECT id, phone_number, first_name, last_name, email, password_hash, initial_balance::text, created_at, updated_at
		FROM users WHERE id = $1`
	return r.scanUser(r.db.QueryRow(ctx, query, userID))
}

// FindUserByPhoneNumber retrieves a user by their unique phone number.
func (r *PostgresRepository) FindUserByPhoneNumber(ctx context.Context, phoneNumber string) (*domain.User, error) {
	query := `
		SELECT id, phone_number, first_name, last_name, email, password_hash, initial_balance::text, created_at, updated_at
		FROM users WHERE phone_number = btrim($1)`
	return r.scanUser(r.db.QueryRow(ctx, query, phoneNumber))
}

func (r *PostgresRepository) scanUser(row pgx.Row) (*domain.User, error) {
	var user domain.User
	var initialBalance string
	err := row.Scan(
		&user.ID,
		&user.PhoneNumber,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&initialBalance,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.InitialBalance, err = decimal.NewFromString(initialBalance)
	if err != nil {
		return nil, fmt.Errorf("invalid stored initial balance %q: %w", initialBalance, err)
	}
	return &user, nil
}

// UpdateUserProfile persists profile edits. The initial balance and password
// hash are not touched here; they have dedicated flows.
func (r *PostgresRepository) UpdateUserProfile(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET first_name = $2, last_name = $3, email = $4, phone_number = $5, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PhoneNumber,
	).Scan(&user.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrUserNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrPhoneNumberTaken
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}
	return nil
}

// CreateAccount inserts a linked account record for a user.
func (r *PostgresRepository) CreateAccount(ctx context.Context, account *domain.Account) error {
	query := `
		INSERT INTO accounts (user_id, provider, phone, label)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		account.UserID,
		string(account.Provider),
		account.Phone,
		account.Label,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// ListAccountsByUser returns all accounts linked by the given user, oldest first.
func (r *PostgresRepository) ListAccountsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	query := `
		SELECT id, user_id, provider, phone, label, created_at, updated_at
		FROM accounts WHERE user_id = $1
		ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	accounts := []domain.Account{}
	for rows.Next() {
		var account domain.Account
		var provider string
		if err := rows.Scan(&account.ID, &account.UserID, &provider, &account.Phone, &account.Label, &account.CreatedAt, &account.UpdatedAt); err != nil {
			return nil, err
		}
		account.Provider = domain.AccountProvider(provider)
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// CreateTransaction appends one immutable entry to the user's ledger. The
// database assigns the identifier and the creation timestamp.
func (r *PostgresRepository) CreateTransaction(ctx context.Context, tx *domain.Transaction) error {
	query := `
		INSERT INTO transactions (user_id, type, compte, amount, category, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		tx.UserID,
		string(tx.Type),
		string(tx.Compte),
		tx.Amount.StringFixed(2),
		tx.Category,
		tx.Description,
	).Scan(&tx.ID, &tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record transaction: %w", err)
	}
	return nil
}

// ListTransactionsByUser returns the user's entire ledger ordered by creation
// time descending. Balance derivation always re-reads this full sequence; no
// derived balance is ever stored.
func (r *PostgresRepository) ListTransactionsByUser(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	query := `
		SELECT id, user_id, type, compte, amount::text, category, description, created_at
		FROM transactions WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := []domain.Transaction{}
	for rows.Next() {
		var tx domain.Transaction
		var txType, compte, amount string
		if err := rows.Scan(&tx.ID, &tx.UserID, &txType, &compte, &amount, &tx.Category, &tx.Description, &tx.CreatedAt); err != nil {
			return nil, err
		}
		tx.Type = domain.TransactionType(txType)
		tx.Compte = domain.AccountTag(compte)
		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid stored amount %q: %w", amount, err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}
