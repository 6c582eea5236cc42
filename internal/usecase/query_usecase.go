package usecase

import (
	"context"

	"github.com/iho/securebank-ledger/internal/domain"
)

// QueryUseCase serves read-only projections of committed ledger state.
type QueryUseCase struct {
	accountStore AccountStore
	log          TransactionLog
}

// NewQueryUseCase creates a new QueryUseCase.
func NewQueryUseCase(accountStore AccountStore, log TransactionLog) *QueryUseCase {
	return &QueryUseCase{
		accountStore: accountStore,
		log:          log,
	}
}

// PageInput represents pagination parameters.
type PageInput struct {
	Limit  int
	Offset int
}

// AccountCount returns the number of accounts, active or not.
func (uc *QueryUseCase) AccountCount(ctx context.Context) (int64, error) {
	return uc.accountStore.Count(ctx)
}

// ListAccounts lists accounts ordered by ID.
func (uc *QueryUseCase) ListAccounts(ctx context.Context, input PageInput) ([]*domain.Account, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.accountStore.List(ctx, limit, offset)
}

// GetAccount retrieves an account by ID.
func (uc *QueryUseCase) GetAccount(ctx context.Context, id int64) (*domain.Account, error) {
	return uc.accountStore.GetByID(ctx, id)
}

// GetAccountByNumber retrieves an account by its external number.
func (uc *QueryUseCase) GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error) {
	return uc.accountStore.GetByNumber(ctx, number)
}

// GetTransaction retrieves a transaction by ID.
func (uc *QueryUseCase) GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error) {
	return uc.log.GetByID(ctx, id)
}

// TransactionCount returns the number of logged transactions.
func (uc *QueryUseCase) TransactionCount(ctx context.Context) (int64, error) {
	return uc.log.Count(ctx)
}

// ListTransactions lists all transactions by creation time.
func (uc *QueryUseCase) ListTransactions(ctx context.Context, input PageInput) ([]*domain.Transaction, error) {
	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.log.ListAll(ctx, limit, offset)
}

// ListTransactionsByAccount lists transactions where the account is
// source or destination.
func (uc *QueryUseCase) ListTransactionsByAccount(ctx context.Context, accountID int64, input PageInput) ([]*domain.Transaction, error) {
	if _, err := uc.accountStore.GetByID(ctx, accountID); err != nil {
		return nil, err
	}

	limit, offset := domain.ValidatePagination(input.Limit, input.Offset)
	return uc.log.ListByAccount(ctx, accountID, limit, offset)
}
