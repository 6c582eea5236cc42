package usecase_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
	"github.com/iho/securebank-ledger/internal/usecase/mocks"
)

func TestQueryUseCase_PaginationDefaults(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockAccountStore(ctrl)
	log := mocks.NewMockTransactionLog(ctrl)

	store.EXPECT().List(gomock.Any(), 100, 0).Return([]*domain.Account{{ID: 1}}, nil)
	log.EXPECT().ListAll(gomock.Any(), 1000, 5).Return(nil, nil)

	uc := usecase.NewQueryUseCase(store, log)

	accounts, err := uc.ListAccounts(context.Background(), usecase.PageInput{Limit: 0, Offset: -3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 1 {
		t.Errorf("expected 1 account, got %d", len(accounts))
	}

	if _, err := uc.ListTransactions(context.Background(), usecase.PageInput{Limit: 5000, Offset: 5}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQueryUseCase_ListTransactionsByUnknownAccount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockAccountStore(ctrl)
	log := mocks.NewMockTransactionLog(ctrl)

	store.EXPECT().GetByID(gomock.Any(), int64(42)).Return(nil, domain.ErrAccountNotFound)

	uc := usecase.NewQueryUseCase(store, log)

	_, err := uc.ListTransactionsByAccount(context.Background(), 42, usecase.PageInput{})
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestQueryUseCase_ReadsCommittedState(t *testing.T) {
	f := newLedgerFixture(t, usecase.DefaultPolicy())
	ctx := context.Background()
	a := f.open(t, "10.00")
	b := f.open(t, "0.00")

	if _, err := f.ledger.Transfer(ctx, usecase.TransferInput{FromAccountID: a.ID, ToAccountID: b.ID, Amount: dec("2.50")}); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	count, err := f.query.AccountCount(ctx)
	if err != nil || count != 2 {
		t.Errorf("expected 2 accounts, got %d (%v)", count, err)
	}

	byNumber, err := f.query.GetAccountByNumber(ctx, b.AccountNumber)
	if err != nil {
		t.Fatalf("get by number: %v", err)
	}
	if !byNumber.Balance.Equal(dec("2.50")) {
		t.Errorf("expected 2.50, got %s", byNumber.Balance)
	}

	txCount, err := f.query.TransactionCount(ctx)
	if err != nil || txCount != 1 {
		t.Errorf("expected 1 transaction, got %d (%v)", txCount, err)
	}

	if _, err := f.query.GetTransaction(ctx, 999); !errors.Is(err, domain.ErrTransactionNotFound) {
		t.Errorf("expected transaction not found, got %v", err)
	}
}
