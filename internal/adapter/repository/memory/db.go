// Package memory is an in-process implementation of the ledger stores.
//
// Every account has its own mutex, the serialization point for balance
// changes. A unit of work holds the locks of the accounts it adjusted, in
// ascending ID order, until Commit or Rollback. A store-wide gate is held
// shared by every open unit of work and exclusively by snapshot reads, so a
// listing never observes a half-applied transfer.
package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

var (
	errTxDone     = errors.New("memory: transaction already finished")
	errForeignTx  = errors.New("memory: transaction belongs to another store")
	errLockOrder  = errors.New("memory: accounts must be locked in ascending id order")
	errNilAccount = errors.New("memory: nil account")
)

// DB is the shared state behind the memory stores.
type DB struct {
	gate sync.RWMutex

	mu       sync.RWMutex
	accounts map[int64]*entry
	byNumber map[string]int64
	nextID   int64

	log    *logState
	outbox *outboxState
}

type entry struct {
	mu      sync.Mutex
	account domain.Account
}

// New creates an empty store.
func New() *DB {
	return &DB{
		accounts: make(map[int64]*entry),
		byNumber: make(map[string]int64),
		log:      newLogState(),
		outbox:   newOutboxState(),
	}
}

func (db *DB) lookup(id int64) (*entry, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	e, ok := db.accounts[id]
	return e, ok
}

// TxManager implements usecase.TransactionManager.
type TxManager struct {
	db *DB
}

// NewTxManager creates a new TxManager.
func NewTxManager(db *DB) *TxManager {
	return &TxManager{db: db}
}

// Begin starts a new unit of work.
func (m *TxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.db.gate.RLock()

	return &Tx{db: m.db}, nil
}

// Tx is a unit of work. Balance changes are applied in place under the
// account locks and undone on rollback; log records and outbox events
// are published on commit.
type Tx struct {
	db      *DB
	held    []*entry
	heldIDs []int64
	undo    []undoRecord
	records []*domain.Transaction
	events  []*domain.OutboxEvent
	done    bool
}

type undoRecord struct {
	entry   *entry
	account domain.Account
}

// Commit publishes buffered records and releases all locks.
func (t *Tx) Commit(ctx context.Context) error {
	if t.done {
		return errTxDone
	}

	// A cancelled caller must not leave half of the work behind.
	if err := ctx.Err(); err != nil {
		t.rollback()
		return err
	}

	t.db.log.publish(t.records)
	t.db.outbox.publish(t.events)
	t.release()

	return nil
}

// Rollback undoes balance changes and releases all locks. Calling it after
// Commit is a no-op.
func (t *Tx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.rollback()
	return nil
}

func (t *Tx) rollback() {
	for i := len(t.undo) - 1; i >= 0; i-- {
		t.undo[i].entry.account = t.undo[i].account
	}
	t.release()
}

func (t *Tx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].mu.Unlock()
	}
	t.held = nil
	t.heldIDs = nil
	t.undo = nil
	t.records = nil
	t.events = nil
	t.done = true
	t.db.gate.RUnlock()
}

// lock acquires the account lock unless this unit already holds it. Locks
// must be requested in ascending ID order.
func (t *Tx) lock(id int64, e *entry) error {
	for _, heldID := range t.heldIDs {
		if heldID == id {
			return nil
		}
	}
	if n := len(t.heldIDs); n > 0 && t.heldIDs[n-1] > id {
		return errLockOrder
	}

	e.mu.Lock()
	t.held = append(t.held, e)
	t.heldIDs = append(t.heldIDs, id)

	return nil
}

func (t *Tx) remember(e *entry) {
	t.undo = append(t.undo, undoRecord{entry: e, account: e.account})
}

func unwrapTx(db *DB, tx usecase.Transaction) (*Tx, error) {
	t, ok := tx.(*Tx)
	if !ok || t.db != db {
		return nil, errForeignTx
	}
	if t.done {
		return nil, errTxDone
	}
	return t, nil
}
