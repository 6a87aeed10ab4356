/**
 * @description
 * This file contains the balance calculator: pure read-side aggregation over the
 * ledger. Every quantity here is derived on demand from the full transaction
 * sequence and the user's initial balance; nothing is cached or incrementally
 * maintained, so there is no derived state to invalidate or reconcile.
 *
 * All arithmetic uses decimal.Decimal. Each fold is a plain sum, so results are
 * independent of the order transactions were inserted in.
 */

package app

import (
	"context"

	"github.com/google/uuid"
	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/shopspring/decimal"
)

// AccountBalance derives the balance of one account tag: income minus expenses
// and savings contributions recorded against that tag. Zero when the tag has
// no transactions.
func (s *Service) AccountBalance(ctx context.Context, userID uuid.UUID, compte domain.AccountTag) (decimal.Decimal, error) {
	transactions, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return accountBalanceOf(transactions, compte), nil
}

// UsableMoney is the sum of balances over the liquid tags (espece, momo, om).
// The banque tag is excluded: savings are not spendable money.
func (s *Service) UsableMoney(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	transactions, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return usableMoneyOf(transactions), nil
}

// SavingsTotal is the sum of all savings contributions across every account tag.
func (s *Service) SavingsTotal(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	transactions, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return savingsTotalOf(transactions), nil
}

// NetWorth is usable money plus the savings total.
func (s *Service) NetWorth(ctx context.Context, userID uuid.UUID) (decimal.Decimal, error) {
	transactions, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return usableMoneyOf(transactions).Add(savingsTotalOf(transactions)), nil
}

// BalanceSheet derives every balance view in a single pass over the ledger,
// for the read endpoint that feeds the presentation layer.
func (s *Service) BalanceSheet(ctx context.Context, userID uuid.UUID) (*domain.BalanceSheet, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	transactions, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts := make(map[domain.AccountTag]decimal.Decimal, 4)
	for _, tag := range []domain.AccountTag{domain.TagEspece, domain.TagMomo, domain.TagOM, domain.TagBanque} {
		accounts[tag] = accountBalanceOf(transactions, tag)
	}
	usable := usableMoneyOf(transactions)
	savings := savingsTotalOf(transactions)

	return &domain.BalanceSheet{
		Accounts:       accounts,
		UsableMoney:    usable,
		SavingsTotal:   savings,
		NetWorth:       usable.Add(savings),
		RunningBalance: runningBalance(user.InitialBalance, transactions),
	}, nil
}

func accountBalanceOf(transactions []domain.Transaction, compte domain.AccountTag) decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range transactions {
		if tx.Compte != compte {
			continue
		}
		balance = balance.Add(signedEffect(tx))
	}
	return balance
}

func usableMoneyOf(transactions []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tag := range domain.UsableTags {
		total = total.Add(accountBalanceOf(transactions, tag))
	}
	return total
}

func savingsTotalOf(transactions []domain.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range transactions {
		if tx.Type == domain.TransactionEpargne {
			total = total.Add(tx.Amount)
		}
	}
	return total
}

// runningBalance folds the whole ledger chronologically starting from the
// user's initial balance. transactions arrive newest first from the store, so
// the fold walks the slice backwards.
func runningBalance(initial decimal.Decimal, transactions []domain.Transaction) decimal.Decimal {
	balance := initial
	for i := len(transactions) - 1; i >= 0; i-- {
		balance = balance.Add(signedEffect(transactions[i]))
	}
	return balance
}

// signedEffect maps a transaction to its contribution to a balance: income
// counts positive, expenses and savings contributions count negative.
func signedEffect(tx domain.Transaction) decimal.Decimal {
	if tx.Type == domain.TransactionRevenu {
		return tx.Amount
	}
	return tx.Amount.Neg()
}
