package memory

import (
	"context"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// AccountStore implements usecase.AccountStore.
type AccountStore struct {
	db *DB
}

// NewAccountStore creates a new AccountStore.
func NewAccountStore(db *DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create stores a new account and assigns its ID.
func (s *AccountStore) Create(_ context.Context, account *domain.Account) error {
	if account == nil {
		return errNilAccount
	}

	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	if _, exists := s.db.byNumber[account.AccountNumber]; exists {
		return domain.ErrDuplicateAccountNumber
	}

	s.db.nextID++
	account.ID = s.db.nextID

	s.db.accounts[account.ID] = &entry{account: *account}
	s.db.byNumber[account.AccountNumber] = account.ID

	return nil
}

// GetByID retrieves an account by ID. It waits for any unit of work
// holding the account, so only committed balances are returned.
func (s *AccountStore) GetByID(_ context.Context, id int64) (*domain.Account, error) {
	e, ok := s.db.lookup(id)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	e.mu.Lock()
	account := e.account
	e.mu.Unlock()

	return &account, nil
}

// GetByNumber retrieves an account by its external number.
func (s *AccountStore) GetByNumber(ctx context.Context, number string) (*domain.Account, error) {
	s.db.mu.RLock()
	id, ok := s.db.byNumber[number]
	s.db.mu.RUnlock()

	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	return s.GetByID(ctx, id)
}

// List returns a consistent snapshot page ordered by ID.
func (s *AccountStore) List(_ context.Context, limit, offset int) ([]*domain.Account, error) {
	s.db.gate.Lock()
	defer s.db.gate.Unlock()

	s.db.mu.RLock()
	ids := make([]int64, 0, len(s.db.accounts))
	for id := range s.db.accounts {
		ids = append(ids, id)
	}
	entries := make(map[int64]*entry, len(ids))
	for _, id := range ids {
		entries[id] = s.db.accounts[id]
	}
	s.db.mu.RUnlock()

	slices.Sort(ids)

	if offset >= len(ids) {
		return []*domain.Account{}, nil
	}
	ids = ids[offset:]
	if limit > 0 && limit < len(ids) {
		ids = ids[:limit]
	}

	accounts := make([]*domain.Account, 0, len(ids))
	for _, id := range ids {
		e := entries[id]
		e.mu.Lock()
		account := e.account
		e.mu.Unlock()
		accounts = append(accounts, &account)
	}

	return accounts, nil
}

// Count returns the number of accounts.
func (s *AccountStore) Count(_ context.Context) (int64, error) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return int64(len(s.db.accounts)), nil
}

// UpdateDetails replaces the mutable metadata of an account.
func (s *AccountStore) UpdateDetails(_ context.Context, account *domain.Account) error {
	if account == nil {
		return errNilAccount
	}

	e, ok := s.db.lookup(account.ID)
	if !ok {
		return domain.ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.account.AccountHolderName = account.AccountHolderName
	e.account.Email = account.Email
	e.account.AccountType = account.AccountType
	e.account.UpdatedAt = account.UpdatedAt

	return nil
}

// Deactivate marks an account inactive.
func (s *AccountStore) Deactivate(_ context.Context, id int64, at time.Time) error {
	e, ok := s.db.lookup(id)
	if !ok {
		return domain.ErrAccountNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.account.Active = false
	e.account.UpdatedAt = at

	return nil
}

// AtomicAdjust applies delta to one account under its lock.
func (s *AccountStore) AtomicAdjust(_ context.Context, tx usecase.Transaction, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	t, err := unwrapTx(s.db, tx)
	if err != nil {
		return decimal.Zero, err
	}

	e, ok := s.db.lookup(id)
	if !ok {
		return decimal.Zero, domain.ErrAccountNotFound
	}

	if err := t.lock(id, e); err != nil {
		return decimal.Zero, err
	}

	if err := e.account.CanAdjust(delta); err != nil {
		return decimal.Zero, err
	}

	apply(t, e, delta)

	return e.account.Balance, nil
}

// AtomicAdjustMany locks every account in ascending ID order, validates
// every leg, then applies them all.
func (s *AccountStore) AtomicAdjustMany(_ context.Context, tx usecase.Transaction, adjustments []domain.Adjustment) (map[int64]decimal.Decimal, error) {
	t, err := unwrapTx(s.db, tx)
	if err != nil {
		return nil, err
	}

	adjustments = domain.MergeAdjustments(adjustments)
	locked := make([]*entry, len(adjustments))

	for i, adj := range adjustments {
		e, ok := s.db.lookup(adj.AccountID)
		if !ok {
			return nil, domain.ErrAccountNotFound
		}
		if err := t.lock(adj.AccountID, e); err != nil {
			return nil, err
		}
		locked[i] = e
	}

	for i, adj := range adjustments {
		if err := locked[i].account.CanAdjust(adj.Delta); err != nil {
			return nil, err
		}
	}

	balances := make(map[int64]decimal.Decimal, len(adjustments))
	for i, adj := range adjustments {
		apply(t, locked[i], adj.Delta)
		balances[adj.AccountID] = locked[i].account.Balance
	}

	return balances, nil
}

func apply(t *Tx, e *entry, delta decimal.Decimal) {
	t.remember(e)
	e.account.Balance = e.account.ApplyDelta(delta)
	e.account.Version++
	e.account.UpdatedAt = time.Now().UTC()
}
