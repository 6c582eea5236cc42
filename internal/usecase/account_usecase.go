package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
)

// AccountUseCase handles account administration. Balances are never
// touched here after opening.
type AccountUseCase struct {
	accountStore AccountStore
	idGen        IDGenerator
	metrics      MetricsRecorder
	scale        int32
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(accountStore AccountStore, idGen IDGenerator, metrics MetricsRecorder, policy Policy) *AccountUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if policy.Scale <= 0 {
		policy.Scale = domain.DefaultAmountScale
	}

	return &AccountUseCase{
		accountStore: accountStore,
		idGen:        idGen,
		metrics:      metrics,
		scale:        policy.Scale,
	}
}

// OpenAccountInput represents input for opening an account.
type OpenAccountInput struct {
	AccountNumber     string
	AccountHolderName string
	Email             string
	AccountType       domain.AccountType
	InitialBalance    decimal.Decimal
}

// OpenAccount creates a new active account. An account number is
// generated when none is given.
func (uc *AccountUseCase) OpenAccount(ctx context.Context, input OpenAccountInput) (*domain.Account, error) {
	number := strings.ToUpper(strings.TrimSpace(input.AccountNumber))
	if number == "" {
		number = uc.idGen.Generate()
	}

	if err := validateAccountDetails(input.AccountHolderName, input.Email, input.AccountType); err != nil {
		return nil, err
	}

	if err := domain.ValidateAccountNumber(number); err != nil {
		return nil, err
	}

	if err := domain.ValidateOpeningBalance(input.InitialBalance, uc.scale); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		AccountNumber:     number,
		AccountHolderName: strings.TrimSpace(input.AccountHolderName),
		Email:             strings.ToLower(strings.TrimSpace(input.Email)),
		AccountType:       input.AccountType,
		Balance:           input.InitialBalance,
		OpeningBalance:    input.InitialBalance,
		Active:            true,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := uc.accountStore.Create(ctx, account); err != nil {
		return nil, err
	}

	uc.metrics.ObserveAccountOpened(account.AccountType)
	zerolog.Ctx(ctx).Info().
		Int64("account_id", account.ID).
		Str("account_number", account.AccountNumber).
		Str("account_type", string(account.AccountType)).
		Msg("account opened")

	return account, nil
}

// UpdateAccountInput represents the mutable account metadata.
type UpdateAccountInput struct {
	AccountHolderName string
	Email             string
	AccountType       domain.AccountType
	ID                int64
}

// UpdateAccount replaces holder name, email and type.
func (uc *AccountUseCase) UpdateAccount(ctx context.Context, input UpdateAccountInput) (*domain.Account, error) {
	if err := validateAccountDetails(input.AccountHolderName, input.Email, input.AccountType); err != nil {
		return nil, err
	}

	account, err := uc.accountStore.GetByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if !account.Active {
		return nil, domain.ErrAccountInactive
	}

	account.AccountHolderName = strings.TrimSpace(input.AccountHolderName)
	account.Email = strings.ToLower(strings.TrimSpace(input.Email))
	account.AccountType = input.AccountType
	account.UpdatedAt = time.Now().UTC()

	if err := uc.accountStore.UpdateDetails(ctx, account); err != nil {
		return nil, err
	}

	return account, nil
}

// DeactivateAccount logically deletes an account. Its transactions stay
// queryable and it accepts no further adjustments.
func (uc *AccountUseCase) DeactivateAccount(ctx context.Context, id int64) error {
	if _, err := uc.accountStore.GetByID(ctx, id); err != nil {
		return err
	}

	if err := uc.accountStore.Deactivate(ctx, id, time.Now().UTC()); err != nil {
		return err
	}

	zerolog.Ctx(ctx).Info().Int64("account_id", id).Msg("account deactivated")

	return nil
}

func validateAccountDetails(name, email string, accountType domain.AccountType) error {
	if err := domain.ValidateHolderName(name); err != nil {
		return err
	}
	if err := domain.ValidateEmail(email); err != nil {
		return err
	}
	return domain.ValidateAccountType(accountType)
}
