/**
 * @description
 * This file defines the core domain models for the finance-service ledger.
 * These structs represent the main entities and data transfer objects (DTOs)
 * used throughout the service's business logic, database interactions, and API layers.
 *
 * @notes
 * - Amounts are carried as `decimal.Decimal` (two decimal places) end to end.
 *   Binary floats are never used for money, so repeated balance folds cannot
 *   accumulate rounding drift.
 * - Transactions are append-only: there is no update or delete path anywhere
 *   in the service, and CreatedAt is assigned by the server at record time.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType discriminates the signed effect of a transaction on a balance.
type TransactionType string

const (
	TransactionRevenu  TransactionType = "revenu"  // income, credits the account tag
	TransactionDepense TransactionType = "depense" // expense, debits the account tag
	TransactionEpargne TransactionType = "epargne" // savings contribution, debits the tag and feeds the savings total
)

// IsValid reports whether t is one of the known transaction types.
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionRevenu, TransactionDepense, TransactionEpargne:
		return true
	}
	return false
}

// AccountTag partitions balance calculations. It is a fixed enumeration and is
// deliberately distinct from the descriptive Account entity: the two are not
// foreign-keyed together.
type AccountTag string

const (
	TagEspece AccountTag = "espece" // cash
	TagMomo   AccountTag = "momo"   // MTN Mobile Money
	TagOM     AccountTag = "om"     // Orange Money
	TagBanque AccountTag = "banque" // bank savings
)

// UsableTags are the liquid account tags. Balances under these tags make up
// usable money; the banque tag is excluded on purpose.
var UsableTags = []AccountTag{TagEspece, TagMomo, TagOM}

// IsValid reports whether tag is one of the known account tags.
func (tag AccountTag) IsValid() bool {
	switch tag {
	case TagEspece, TagMomo, TagOM, TagBanque:
		return true
	}
	return false
}

// Transaction is one immutable entry in a user's ledger.
// This struct maps directly to the `transactions` table in the database.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	Type        TransactionType `json:"type"`
	Compte      AccountTag      `json:"compte"`
	Amount      decimal.Decimal `json:"montant"`
	Category    string          `json:"categorie"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// RecordTransactionRequest is the DTO for incoming transaction submissions.
// Montant arrives as a string so that malformed numeric input can be rejected
// as a validation error instead of silently decoding to zero.
type RecordTransactionRequest struct {
	Type        string `json:"type_transaction"`
	Montant     string `json:"montant"`
	Compte      string `json:"compte"`
	Category    string `json:"categorie"`
	Description string `json:"description"`
}

// TransactionFilters narrows a ledger listing. Zero values mean no filtering.
type TransactionFilters struct {
	Keyword string
	Type    TransactionType
}

// BalanceSheet is the read-side view handed to the presentation layer. All
// quantities are derived on demand from the ledger; none of them are stored.
type BalanceSheet struct {
	Accounts       map[AccountTag]decimal.Decimal `json:"accounts"`
	UsableMoney    decimal.Decimal                `json:"usable_money"`
	SavingsTotal   decimal.Decimal                `json:"savings_total"`
	NetWorth       decimal.Decimal                `json:"net_worth"`
	RunningBalance decimal.Decimal                `json:"running_balance"`
}

// TransactionRecordedEvent is the message payload published to RabbitMQ after
// a transaction has been durably stored.
type TransactionRecordedEvent struct {
	TransactionID uuid.UUID       `json:"transaction_id"`
	UserID        uuid.UUID       `json:"user_id"`
	Type          TransactionType `json:"type"`
	Compte        AccountTag      `json:"compte"`
	Amount        decimal.Decimal `json:"montant"`
	Timestamp     time.Time       `json:"timestamp"`
}
