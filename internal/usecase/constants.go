package usecase

import "time"

// DefaultTransactionTimeout is the maximum duration for a unit of work
// started by the ledger engine.
const DefaultTransactionTimeout = 10 * time.Second
