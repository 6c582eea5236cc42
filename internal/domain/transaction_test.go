package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from TransactionStatus
		to   TransactionStatus
		want bool
	}{
		{TransactionStatusPending, TransactionStatusCompleted, true},
		{TransactionStatusPending, TransactionStatusFailed, true},
		{TransactionStatusPending, TransactionStatusPending, false},
		{TransactionStatusCompleted, TransactionStatusFailed, false},
		{TransactionStatusCompleted, TransactionStatusPending, false},
		{TransactionStatusFailed, TransactionStatusCompleted, false},
		{TransactionStatusFailed, TransactionStatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Fatalf("CanTransitionTo = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewTransaction_DefaultsDescription(t *testing.T) {
	now := time.Now()
	tx := NewTransaction("ref", TransactionTypeWithdrawal, AccountRef(1), nil, decimal.NewFromInt(5), "", now)

	if tx.Status != TransactionStatusPending {
		t.Fatalf("expected PENDING, got %s", tx.Status)
	}
	if tx.Description != "Withdrawal" {
		t.Fatalf("expected default description, got %q", tx.Description)
	}
	if !tx.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt to be preserved")
	}
}

func TestTransaction_CompleteIsTerminal(t *testing.T) {
	tx := NewTransaction("ref", TransactionTypeDeposit, nil, AccountRef(1), decimal.NewFromInt(5), "salary", time.Now())

	if err := tx.Complete(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Fail(KindConflict); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
	if tx.Status != TransactionStatusCompleted {
		t.Fatalf("expected status to remain COMPLETED, got %s", tx.Status)
	}
}

func TestTransaction_FailRecordsReason(t *testing.T) {
	tx := NewTransaction("ref", TransactionTypeWithdrawal, AccountRef(1), nil, decimal.NewFromInt(5), "", time.Now())

	if err := tx.Fail(KindInsufficientFunds); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tx.FailureReason != KindInsufficientFunds {
		t.Fatalf("expected failure reason, got %q", tx.FailureReason)
	}
	if err := tx.Complete(); !errors.Is(err, ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestTransaction_Adjustments(t *testing.T) {
	amount := decimal.RequireFromString("30.00")
	transfer := NewTransaction("ref", TransactionTypeTransfer, AccountRef(1), AccountRef(2), amount, "", time.Now())

	adj := transfer.Adjustments()
	if len(adj) != 2 {
		t.Fatalf("expected two legs, got %d", len(adj))
	}
	if adj[0].AccountID != 1 || !adj[0].Delta.Equal(amount.Neg()) {
		t.Fatalf("unexpected debit leg: %+v", adj[0])
	}
	if adj[1].AccountID != 2 || !adj[1].Delta.Equal(amount) {
		t.Fatalf("unexpected credit leg: %+v", adj[1])
	}

	if !transfer.References(1) || !transfer.References(2) || transfer.References(3) {
		t.Fatal("References mismatch")
	}
}

func TestTransaction_CloneIsDeep(t *testing.T) {
	tx := NewTransaction("ref", TransactionTypeTransfer, AccountRef(1), AccountRef(2), decimal.NewFromInt(1), "", time.Now())
	c := tx.Clone()
	*c.FromAccountID = 42

	if *tx.FromAccountID != 1 {
		t.Fatal("clone shares account pointer with original")
	}
}
