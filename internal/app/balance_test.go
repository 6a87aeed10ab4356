package app

import (
	"context"
	"testing"

	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/shopspring/decimal"
)

func tx(txType domain.TransactionType, compte domain.AccountTag, amount string) domain.Transaction {
	return domain.Transaction{
		Type:   txType,
		Compte: compte,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestAccountBalanceOf(t *testing.T) {
	tests := []struct {
		name         string
		transactions []domain.Transaction
		compte       domain.AccountTag
		want         string
	}{
		{
			name:   "no transactions yields zero",
			compte: domain.TagMomo,
			want:   "0",
		},
		{
			name: "income minus expenses and savings",
			transactions: []domain.Transaction{
				tx(domain.TransactionRevenu, domain.TagMomo, "2000"),
				tx(domain.TransactionDepense, domain.TagMomo, "350.25"),
				tx(domain.TransactionEpargne, domain.TagMomo, "100"),
			},
			compte: domain.TagMomo,
			want:   "1549.75",
		},
		{
			name: "other tags do not contribute",
			transactions: []domain.Transaction{
				tx(domain.TransactionRevenu, domain.TagMomo, "2000"),
				tx(domain.TransactionRevenu, domain.TagEspece, "999"),
			},
			compte: domain.TagMomo,
			want:   "2000",
		},
		{
			name: "balance can go negative through savings",
			transactions: []domain.Transaction{
				tx(domain.TransactionRevenu, domain.TagBanque, "2000"),
				tx(domain.TransactionEpargne, domain.TagBanque, "2500"),
			},
			compte: domain.TagBanque,
			want:   "-500",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := accountBalanceOf(tt.transactions, tt.compte)
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected balance %s, got %s", tt.want, got)
			}
		})
	}
}

func TestAccountBalanceOf_OrderIndependent(t *testing.T) {
	forward := []domain.Transaction{
		tx(domain.TransactionRevenu, domain.TagMomo, "100.10"),
		tx(domain.TransactionDepense, domain.TagMomo, "40.05"),
		tx(domain.TransactionRevenu, domain.TagMomo, "12.34"),
		tx(domain.TransactionEpargne, domain.TagMomo, "7.89"),
	}
	reversed := make([]domain.Transaction, len(forward))
	for i, transaction := range forward {
		reversed[len(forward)-1-i] = transaction
	}

	if !accountBalanceOf(forward, domain.TagMomo).Equal(accountBalanceOf(reversed, domain.TagMomo)) {
		t.Fatal("expected account balance to be independent of insertion order")
	}
}

func TestSavingsScenario(t *testing.T) {
	// Income 2000 on momo, then a savings contribution of 500 recorded against
	// banque: the banque balance goes to -500, the savings total records the
	// 500, and usable money ignores banque entirely.
	transactions := []domain.Transaction{
		tx(domain.TransactionEpargne, domain.TagBanque, "500"),
		tx(domain.TransactionRevenu, domain.TagMomo, "2000"),
	}

	if got := accountBalanceOf(transactions, domain.TagBanque); !got.Equal(decimal.RequireFromString("-500")) {
		t.Fatalf("expected banque balance -500, got %s", got)
	}
	if got := savingsTotalOf(transactions); !got.Equal(decimal.RequireFromString("500")) {
		t.Fatalf("expected savings total 500, got %s", got)
	}
	if got := usableMoneyOf(transactions); !got.Equal(decimal.RequireFromString("2000")) {
		t.Fatalf("expected usable money 2000, unaffected by banque, got %s", got)
	}
}

func TestRunningBalance(t *testing.T) {
	// Newest-first input, as the store returns it; the fold walks backwards.
	transactions := []domain.Transaction{
		tx(domain.TransactionDepense, domain.TagEspece, "300"),
		tx(domain.TransactionEpargne, domain.TagBanque, "200"),
		tx(domain.TransactionRevenu, domain.TagMomo, "1000"),
	}

	got := runningBalance(decimal.RequireFromString("5000"), transactions)
	if !got.Equal(decimal.RequireFromString("5500")) {
		t.Fatalf("expected running balance 5500, got %s", got)
	}
}

func TestRunningBalance_NoDriftOverRepeatedFolds(t *testing.T) {
	// Many small decimal amounts that are not exactly representable in binary
	// floating point. The fold must stay exact.
	transactions := make([]domain.Transaction, 0, 1000)
	for i := 0; i < 500; i++ {
		transactions = append(transactions, tx(domain.TransactionRevenu, domain.TagMomo, "0.10"))
		transactions = append(transactions, tx(domain.TransactionDepense, domain.TagMomo, "0.10"))
	}

	got := runningBalance(decimal.RequireFromString("123.45"), transactions)
	if !got.Equal(decimal.RequireFromString("123.45")) {
		t.Fatalf("expected running balance to return exactly to 123.45, got %s", got)
	}
}

func TestFreshUserHasZeroBalances(t *testing.T) {
	repo := newMemoryRepoStub()
	user := seedUser(repo, "5000")
	svc, _ := newTestService(repo)
	ctx := context.Background()

	for _, tag := range []domain.AccountTag{domain.TagEspece, domain.TagMomo, domain.TagOM, domain.TagBanque} {
		balance, err := svc.AccountBalance(ctx, user.ID, tag)
		if err != nil {
			t.Fatalf("AccountBalance(%s) returned error: %v", tag, err)
		}
		if !balance.IsZero() {
			t.Fatalf("expected zero balance for %s on a fresh user, got %s", tag, balance)
		}
	}

	// The initial balance is not reflected in net worth until transactions
	// exist: net worth is derived from the ledger only.
	netWorth, err := svc.NetWorth(ctx, user.ID)
	if err != nil {
		t.Fatalf("NetWorth returned error: %v", err)
	}
	if !netWorth.IsZero() {
		t.Fatalf("expected zero net worth for a fresh user, got %s", netWorth)
	}
}

func TestNetWorthIdempotentReads(t *testing.T) {
	repo := newMemoryRepoStub()
	user := seedUser(repo, "0")
	svc, _ := newTestService(repo)
	ctx := context.Background()

	mustRecord(t, svc, user.ID, domain.RecordTransactionRequest{
		Type: "revenu", Montant: "1234.56", Compte: "om", Category: "vente",
	})
	mustRecord(t, svc, user.ID, domain.RecordTransactionRequest{
		Type: "epargne", Montant: "200", Compte: "om", Category: "epargne",
	})

	first, err := svc.NetWorth(ctx, user.ID)
	if err != nil {
		t.Fatalf("NetWorth returned error: %v", err)
	}
	second, err := svc.NetWorth(ctx, user.ID)
	if err != nil {
		t.Fatalf("NetWorth returned error: %v", err)
	}
	if !first.Equal(second) {
		t.Fatalf("expected identical results with no intervening writes, got %s then %s", first, second)
	}
}

func TestBalanceSheet(t *testing.T) {
	repo := newMemoryRepoStub()
	user := seedUser(repo, "1000")
	svc, _ := newTestService(repo)
	ctx := context.Background()

	mustRecord(t, svc, user.ID, domain.RecordTransactionRequest{
		Type: "revenu", Montant: "2000", Compte: "momo", Category: "salaire",
	})
	mustRecord(t, svc, user.ID, domain.RecordTransactionRequest{
		Type: "depense", Montant: "500", Compte: "momo", Category: "loyer",
	})
	mustRecord(t, svc, user.ID, domain.RecordTransactionRequest{
		Type: "epargne", Montant: "300", Compte: "momo", Category: "epargne",
	})

	sheet, err := svc.BalanceSheet(ctx, user.ID)
	if err != nil {
		t.Fatalf("BalanceSheet returned error: %v", err)
	}

	if !sheet.Accounts[domain.TagMomo].Equal(decimal.RequireFromString("1200")) {
		t.Fatalf("expected momo balance 1200, got %s", sheet.Accounts[domain.TagMomo])
	}
	if !sheet.UsableMoney.Equal(decimal.RequireFromString("1200")) {
		t.Fatalf("expected usable money 1200, got %s", sheet.UsableMoney)
	}
	if !sheet.SavingsTotal.Equal(decimal.RequireFromString("300")) {
		t.Fatalf("expected savings total 300, got %s", sheet.SavingsTotal)
	}
	if !sheet.NetWorth.Equal(decimal.RequireFromString("1500")) {
		t.Fatalf("expected net worth 1500, got %s", sheet.NetWorth)
	}
	// Running balance starts from the initial balance, unlike net worth.
	if !sheet.RunningBalance.Equal(decimal.RequireFromString("2200")) {
		t.Fatalf("expected running balance 2200, got %s", sheet.RunningBalance)
	}
}
