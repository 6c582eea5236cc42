package usecase_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/adapter/repository/memory"
	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

var testTime = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

type seqIDGen struct {
	n atomic.Int64
}

func (g *seqIDGen) Generate() string {
	return fmt.Sprintf("REF-%06d", g.n.Add(1))
}

// ledgerFixture wires the engine to the in-memory stores.
type ledgerFixture struct {
	db       *memory.DB
	accounts *memory.AccountStore
	log      *memory.TransactionLog
	outbox   *memory.OutboxRepository
	ledger   *usecase.LedgerUseCase
	query    *usecase.QueryUseCase
	admin    *usecase.AccountUseCase
}

func newLedgerFixture(t *testing.T, policy usecase.Policy) *ledgerFixture {
	t.Helper()

	db := memory.New()
	accounts := memory.NewAccountStore(db)
	log := memory.NewTransactionLog(db)
	outbox := memory.NewOutboxRepository(db)
	idGen := &seqIDGen{}

	return &ledgerFixture{
		db:       db,
		accounts: accounts,
		log:      log,
		outbox:   outbox,
		ledger: usecase.NewLedgerUseCase(usecase.LedgerConfig{
			TxManager: memory.NewTxManager(db),
			Accounts:  accounts,
			Log:       log,
			Outbox:    outbox,
			IDGen:     idGen,
			Policy:    policy,
		}),
		query: usecase.NewQueryUseCase(accounts, log),
		admin: usecase.NewAccountUseCase(accounts, idGen, nil, policy),
	}
}

func (f *ledgerFixture) open(t *testing.T, balance string) *domain.Account {
	t.Helper()

	acc, err := f.admin.OpenAccount(context.Background(), usecase.OpenAccountInput{
		AccountHolderName: "Test Holder",
		Email:             "holder@example.com",
		AccountType:       domain.AccountTypeChecking,
		InitialBalance:    decimal.RequireFromString(balance),
	})
	if err != nil {
		t.Fatalf("open account: %v", err)
	}
	return acc
}

func (f *ledgerFixture) balance(t *testing.T, id int64) decimal.Decimal {
	t.Helper()

	acc, err := f.accounts.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("get account %d: %v", id, err)
	}
	return acc.Balance
}

func (f *ledgerFixture) logCount(t *testing.T) int64 {
	t.Helper()

	n, err := f.log.Count(context.Background())
	if err != nil {
		t.Fatalf("count log: %v", err)
	}
	return n
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
