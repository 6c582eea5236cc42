package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/infrastructure/postgres/generated"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// AccountStore implements usecase.AccountStore.
type AccountStore struct {
	queries *generated.Queries
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(pool *pgxpool.Pool) *AccountStore {
	return newAccountStore(pool)
}

func newAccountStore(db generated.DBTX) *AccountStore {
	return &AccountStore{queries: generated.New(db)}
}

// Create creates a new account and assigns its ID.
func (s *AccountStore) Create(ctx context.Context, account *domain.Account) error {
	id, err := s.queries.CreateAccount(ctx, generated.CreateAccountParams{
		AccountNumber:     account.AccountNumber,
		AccountHolderName: account.AccountHolderName,
		Email:             account.Email,
		AccountType:       string(account.AccountType),
		Balance:           decimalToNumeric(account.Balance),
		OpeningBalance:    decimalToNumeric(account.OpeningBalance),
		Active:            account.Active,
		CreatedAt:         timeToPgTimestamptz(account.CreatedAt),
		UpdatedAt:         timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateAccountNumber
		}
		return err
	}

	account.ID = id

	return nil
}

// GetByID retrieves an account by ID.
func (s *AccountStore) GetByID(ctx context.Context, id int64) (*domain.Account, error) {
	row, err := s.queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return rowToAccount(row), nil
}

// GetByNumber retrieves an account by its external number.
func (s *AccountStore) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	row, err := s.queries.GetAccountByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, err
	}

	return rowToAccount(row), nil
}

// List lists accounts ordered by ID. A single statement reads one MVCC
// snapshot, so committed transfers are seen whole or not at all.
func (s *AccountStore) List(ctx context.Context, limit, offset int) ([]*domain.Account, error) {
	rows, err := s.queries.ListAccounts(ctx, generated.ListAccountsParams{
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		return nil, err
	}

	accounts := make([]*domain.Account, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, rowToAccount(row))
	}

	return accounts, nil
}

// Count returns the number of accounts.
func (s *AccountStore) Count(ctx context.Context) (int64, error) {
	return s.queries.CountAccounts(ctx)
}

// UpdateDetails updates holder name, email and type.
func (s *AccountStore) UpdateDetails(ctx context.Context, account *domain.Account) error {
	n, err := s.queries.UpdateAccountDetails(ctx, generated.UpdateAccountDetailsParams{
		ID:                account.ID,
		AccountHolderName: account.AccountHolderName,
		Email:             account.Email,
		AccountType:       string(account.AccountType),
		UpdatedAt:         timeToPgTimestamptz(account.UpdatedAt),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// Deactivate marks an account inactive.
func (s *AccountStore) Deactivate(ctx context.Context, id int64, at time.Time) error {
	n, err := s.queries.DeactivateAccount(ctx, generated.DeactivateAccountParams{
		ID:        id,
		UpdatedAt: timeToPgTimestamptz(at),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrAccountNotFound
	}

	return nil
}

// AtomicAdjust applies delta with a single conditional UPDATE. The row lock
// taken by the UPDATE serializes concurrent adjustments of the account.
func (s *AccountStore) AtomicAdjust(ctx context.Context, tx usecase.Transaction, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return decimal.Zero, err
	}
	queries := generated.New(pgxTx)

	balance, err := queries.AdjustAccountBalance(ctx, generated.AdjustAccountBalanceParams{
		ID:        id,
		Delta:     decimalToNumeric(delta),
		UpdatedAt: timeToPgTimestamptz(time.Now().UTC()),
	})
	if err == nil {
		return numericToDecimal(balance), nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, mapWriteError(err)
	}

	// No row matched: find out which guard rejected the update.
	row, err := queries.GetAccountByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, domain.ErrAccountNotFound
		}
		return decimal.Zero, err
	}

	if err := rowToAccount(row).CanAdjust(delta); err != nil {
		return decimal.Zero, err
	}

	return decimal.Zero, fmt.Errorf("%w: account %d changed during adjustment", domain.ErrConflict, id)
}

// AtomicAdjustMany locks all rows with one ordered SELECT ... FOR UPDATE,
// validates every leg and then writes the new balances.
func (s *AccountStore) AtomicAdjustMany(ctx context.Context, tx usecase.Transaction, adjustments []domain.Adjustment) (map[int64]decimal.Decimal, error) {
	pgxTx, err := unwrapTx(tx)
	if err != nil {
		return nil, err
	}
	queries := generated.New(pgxTx)

	adjustments = domain.MergeAdjustments(adjustments)

	ids := make([]int64, len(adjustments))
	for i, adj := range adjustments {
		ids[i] = adj.AccountID
	}

	rows, err := queries.GetAccountsByIDsForUpdate(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(rows) != len(ids) {
		return nil, domain.ErrAccountNotFound
	}

	// Rows and adjustments are both in ascending ID order.
	accounts := make([]*domain.Account, len(rows))
	for i, row := range rows {
		accounts[i] = rowToAccount(row)
		if err := accounts[i].CanAdjust(adjustments[i].Delta); err != nil {
			return nil, err
		}
	}

	now := timeToPgTimestamptz(time.Now().UTC())
	balances := make(map[int64]decimal.Decimal, len(accounts))

	for i, account := range accounts {
		newBalance := account.ApplyDelta(adjustments[i].Delta)
		if err := queries.SetAccountBalance(ctx, generated.SetAccountBalanceParams{
			ID:        account.ID,
			Balance:   decimalToNumeric(newBalance),
			UpdatedAt: now,
		}); err != nil {
			return nil, mapWriteError(err)
		}
		balances[account.ID] = newBalance
	}

	return balances, nil
}

func rowToAccount(row generated.Account) *domain.Account {
	return &domain.Account{
		ID:                row.ID,
		AccountNumber:     row.AccountNumber,
		AccountHolderName: row.AccountHolderName,
		Email:             row.Email,
		AccountType:       domain.AccountType(row.AccountType),
		Balance:           numericToDecimal(row.Balance),
		OpeningBalance:    numericToDecimal(row.OpeningBalance),
		Active:            row.Active,
		Version:           row.Version,
		CreatedAt:         row.CreatedAt.Time,
		UpdatedAt:         row.UpdatedAt.Time,
	}
}
