/**
 * @description
 * This file contains the core business logic for the finance-service. The `Service`
 * struct orchestrates the ledger write path: it validates incoming transaction
 * requests, runs the sufficiency gate for withdrawal-type transactions, appends
 * accepted entries to the store, and publishes events for asynchronous consumers.
 *
 * Key features:
 * - Admission control: expenses are only accepted when the recomputed balance
 *   of their account tag covers the amount.
 * - The balance check and the subsequent write run under a per-user lock, so two
 *   concurrent submissions from the same user cannot both pass the gate against
 *   a stale balance and jointly overdraw an account.
 * - Listing applies type and keyword filters over the full ledger in memory,
 *   matching the recompute-on-demand read model used for balances.
 *
 * @dependencies
 * - context, strings, sync, time: Standard Go libraries.
 * - github.com/google/uuid, github.com/shopspring/decimal: Identifiers and money values.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/rabbitmq: For event publication.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/mesfinance/finance-service/internal/store"
	"github.com/mesfinance/finance-service/pkg/rabbitmq"
	"github.com/shopspring/decimal"
)

// Service provides the core business logic for the ledger, balances, and user accounts.
type Service struct {
	repo          store.Repository
	eventProducer rabbitmq.Publisher
	jwtSecret     []byte
	tokenTTL      time.Duration

	loginLimiter       LoginRateLimiter
	loginAttemptLimit  int
	loginAttemptWindow time.Duration

	// userLocks serializes the admission gate and the ledger write per user.
	userLocks sync.Map // uuid.UUID -> *sync.Mutex
}

// NewService creates a new finance service instance. producer may be a no-op
// fallback; it must not be nil.
func NewService(repo store.Repository, producer rabbitmq.Publisher, jwtSecret []byte, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		repo:          repo,
		eventProducer: producer,
		jwtSecret:     jwtSecret,
		tokenTTL:      tokenTTL,
	}
}

// SetLoginRateLimiter enables distributed throttling of login attempts.
func (s *Service) SetLoginRateLimiter(limiter LoginRateLimiter, limit int, window time.Duration) {
	s.loginLimiter = limiter
	s.loginAttemptLimit = limit
	s.loginAttemptWindow = window
}

func (s *Service) lockUser(userID uuid.UUID) *sync.Mutex {
	mu, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// RecordTransaction validates a submission, runs the sufficiency gate for
// withdrawal-type entries, and appends the transaction to the user's ledger.
// The stored record is returned with its server-assigned id and timestamp.
func (s *Service) RecordTransaction(ctx context.Context, userID uuid.UUID, req domain.RecordTransactionRequest) (*domain.Transaction, error) {
	txType := domain.TransactionType(strings.TrimSpace(req.Type))
	if !txType.IsValid() {
		return nil, validationErr("type_transaction", "must be one of revenu, depense, epargne")
	}
	compte := domain.AccountTag(strings.TrimSpace(req.Compte))
	if !compte.IsValid() {
		return nil, validationErr("compte", "must be one of espece, momo, om, banque")
	}
	category := strings.TrimSpace(req.Category)
	if category == "" {
		return nil, validationErr("categorie", "is required")
	}
	amount, err := parseAmount(req.Montant)
	if err != nil {
		return nil, err
	}

	// Income is always admitted, and so are savings contributions: an epargne
	// entry may push its tag negative (the money was earned elsewhere).
	// Expenses must be covered by the current balance of their account tag.
	mu := s.lockUser(userID)
	mu.Lock()
	defer mu.Unlock()

	if txType == domain.TransactionDepense {
		balance, err := s.AccountBalance(ctx, userID, compte)
		if err != nil {
			return nil, fmt.Errorf("failed to compute balance for %s: %w", compte, err)
		}
		if amount.GreaterThan(balance) {
			return nil, &InsufficientFundsError{Compte: compte, Balance: balance, Amount: amount}
		}
	}

	tx := &domain.Transaction{
		UserID:      userID,
		Type:        txType,
		Compte:      compte,
		Amount:      amount,
		Category:    category,
		Description: strings.TrimSpace(req.Description),
	}
	if err := s.repo.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.publishTransactionRecorded(ctx, tx)
	return tx, nil
}

// CanAfford recomputes the balance of the given account tag and reports
// whether it covers amount. The check is advisory on its own; RecordTransaction
// re-runs it under the per-user lock before writing.
func (s *Service) CanAfford(ctx context.Context, userID uuid.UUID, compte domain.AccountTag, amount decimal.Decimal) (bool, error) {
	balance, err := s.AccountBalance(ctx, userID, compte)
	if err != nil {
		return false, err
	}
	return amount.LessThanOrEqual(balance), nil
}

// ListTransactions returns the user's ledger, newest first, narrowed by the
// given filters. The keyword filter is a case-insensitive substring match over
// the category and description fields.
func (s *Service) ListTransactions(ctx context.Context, userID uuid.UUID, filters domain.TransactionFilters) ([]domain.Transaction, error) {
	transactions, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return filterTransactions(transactions, filters), nil
}

func filterTransactions(transactions []domain.Transaction, filters domain.TransactionFilters) []domain.Transaction {
	keyword := strings.ToLower(strings.TrimSpace(filters.Keyword))
	if keyword == "" && filters.Type == "" {
		return transactions
	}

	filtered := make([]domain.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if filters.Type != "" && tx.Type != filters.Type {
			continue
		}
		if keyword != "" &&
			!strings.Contains(strings.ToLower(tx.Category), keyword) &&
			!strings.Contains(strings.ToLower(tx.Description), keyword) {
			continue
		}
		filtered = append(filtered, tx)
	}
	return filtered
}

// RegisterAccount links a descriptive money account to the user's profile.
func (s *Service) RegisterAccount(ctx context.Context, userID uuid.UUID, req domain.CreateAccountRequest) (*domain.Account, error) {
	provider := domain.AccountProvider(strings.TrimSpace(req.Provider))
	if !provider.IsValid() {
		return nil, validationErr("type_compte", "must be one of MTN, Orange")
	}
	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, validationErr("phone", "is required")
	}
	label := strings.TrimSpace(req.Label)
	if label == "" {
		return nil, validationErr("label", "is required")
	}

	account := &domain.Account{
		UserID:   userID,
		Provider: provider,
		Phone:    phone,
		Label:    label,
	}
	if err := s.repo.CreateAccount(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts returns the user's linked accounts.
func (s *Service) ListAccounts(ctx context.Context, userID uuid.UUID) ([]domain.Account, error) {
	return s.repo.ListAccountsByUser(ctx, userID)
}

// parseAmount converts user-supplied numeric input into a strictly positive
// decimal. Anything unparsable or non-positive is a validation error.
func parseAmount(raw string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero, validationErr("montant", "is required")
	}
	amount, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, validationErr("montant", "must be a valid number")
	}
	if !amount.IsPositive() {
		return decimal.Zero, validationErr("montant", "must be strictly positive")
	}
	return amount, nil
}

func (s *Service) publishTransactionRecorded(ctx context.Context, tx *domain.Transaction) {
	event := domain.TransactionRecordedEvent{
		TransactionID: tx.ID,
		UserID:        tx.UserID,
		Type:          tx.Type,
		Compte:        tx.Compte,
		Amount:        tx.Amount,
		Timestamp:     tx.CreatedAt,
	}
	if err := s.eventProducer.Publish(ctx, "finance.events", "transaction.recorded", event); err != nil {
		// The transaction is already durable; a lost event is log-worthy but not fatal.
		log.Printf("level=warn component=app msg=\"transaction.recorded publish failed\" transaction_id=%s err=%v", tx.ID, err)
	}
}
