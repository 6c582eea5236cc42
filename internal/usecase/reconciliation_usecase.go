package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
)

const reconciliationPageSize = 1000

// ReconciliationUseCase replays the transaction log against stored balances.
type ReconciliationUseCase struct {
	accountStore AccountStore
	log          TransactionLog
}

// NewReconciliationUseCase creates a new reconciliation use case
func NewReconciliationUseCase(accountStore AccountStore, log TransactionLog) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountStore: accountStore,
		log:          log,
	}
}

// ReconciliationResult is the outcome of checking one account.
type ReconciliationResult struct {
	LastChecked       time.Time
	RecordedBalance   decimal.Decimal
	CalculatedBalance decimal.Decimal
	Difference        decimal.Decimal
	AccountID         int64
	IsReconciled      bool
}

// ReconciliationReport summarizes a full ledger check.
type ReconciliationReport struct {
	CheckedAt          time.Time
	TotalBalance       decimal.Decimal
	ExpectedTotal      decimal.Decimal
	Discrepancies      []*ReconciliationResult
	TotalAccounts      int
	ReconciledAccounts int
	TransactionsRead   int
	LedgerConsistent   bool
}

// ReconcileAccount recomputes one account's balance as its opening balance
// plus every COMPLETED credit minus every COMPLETED debit.
func (uc *ReconciliationUseCase) ReconcileAccount(ctx context.Context, accountID int64) (*ReconciliationResult, error) {
	account, err := uc.accountStore.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	transactions, err := collectAll(func(limit, offset int) ([]*domain.Transaction, error) {
		return uc.log.ListByAccount(ctx, accountID, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read transactions of account %d: %w", accountID, err)
	}

	net := netChanges(transactions)

	return reconcile(account, net[accountID]), nil
}

// GenerateReconciliationReport checks every account and the ledger-wide
// total. It reads accounts and transactions in two passes, so a report
// taken while operations are committing can show transient differences.
func (uc *ReconciliationUseCase) GenerateReconciliationReport(ctx context.Context) (*ReconciliationReport, error) {
	transactions, err := collectAll(func(limit, offset int) ([]*domain.Transaction, error) {
		return uc.log.ListAll(ctx, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read transaction log: %w", err)
	}

	accounts, err := collectAll(func(limit, offset int) ([]*domain.Account, error) {
		return uc.accountStore.List(ctx, limit, offset)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	net := netChanges(transactions)

	report := &ReconciliationReport{
		TotalAccounts:    len(accounts),
		TransactionsRead: len(transactions),
		Discrepancies:    make([]*ReconciliationResult, 0),
		CheckedAt:        time.Now().UTC(),
	}

	for _, account := range accounts {
		result := reconcile(account, net[account.ID])
		if result.IsReconciled {
			report.ReconciledAccounts++
		} else {
			report.Discrepancies = append(report.Discrepancies, result)
		}

		report.TotalBalance = report.TotalBalance.Add(account.Balance)
		report.ExpectedTotal = report.ExpectedTotal.Add(account.OpeningBalance)
	}

	// Transfers move value between accounts; only deposits and
	// withdrawals change the total.
	for _, t := range transactions {
		if t.Status != domain.TransactionStatusCompleted {
			continue
		}
		switch t.Type {
		case domain.TransactionTypeDeposit:
			report.ExpectedTotal = report.ExpectedTotal.Add(t.Amount)
		case domain.TransactionTypeWithdrawal:
			report.ExpectedTotal = report.ExpectedTotal.Sub(t.Amount)
		}
	}

	report.LedgerConsistent = len(report.Discrepancies) == 0 &&
		report.TotalBalance.Equal(report.ExpectedTotal)

	return report, nil
}

func reconcile(account *domain.Account, net decimal.Decimal) *ReconciliationResult {
	calculated := account.OpeningBalance.Add(net)
	diff := account.Balance.Sub(calculated)

	return &ReconciliationResult{
		AccountID:         account.ID,
		RecordedBalance:   account.Balance,
		CalculatedBalance: calculated,
		Difference:        diff,
		IsReconciled:      diff.IsZero(),
		LastChecked:       time.Now().UTC(),
	}
}

// netChanges sums the signed effect of COMPLETED transactions per account.
// FAILED records never moved money.
func netChanges(transactions []*domain.Transaction) map[int64]decimal.Decimal {
	net := make(map[int64]decimal.Decimal)
	for _, t := range transactions {
		if t.Status != domain.TransactionStatusCompleted {
			continue
		}
		for _, adj := range t.Adjustments() {
			net[adj.AccountID] = net[adj.AccountID].Add(adj.Delta)
		}
	}
	return net
}

func collectAll[T any](page func(limit, offset int) ([]T, error)) ([]T, error) {
	var all []T
	for offset := 0; ; offset += reconciliationPageSize {
		items, err := page(reconciliationPageSize, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if len(items) < reconciliationPageSize {
			return all, nil
		}
	}
}
