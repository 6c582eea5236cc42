package app

import (
	"github.com/iho/securebank-ledger/internal/adapter/repository/postgres"
	"github.com/iho/securebank-ledger/internal/infrastructure/config"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// Services are the use cases built on one Storage.
type Services struct {
	Policy         usecase.Policy
	Ledger         *usecase.LedgerUseCase
	Accounts       *usecase.AccountUseCase
	Query          *usecase.QueryUseCase
	Reconciliation *usecase.ReconciliationUseCase
}

// PolicyFromConfig reads the ledger business rules.
func PolicyFromConfig(cfg *config.Config) usecase.Policy {
	return usecase.Policy{
		Scale:            cfg.AmountScale,
		AllowSameAccount: cfg.AllowSameAccountTransfer,
	}
}

// NewServices wires the use cases. metrics may be nil.
func NewServices(st *Storage, policy usecase.Policy, metrics usecase.MetricsRecorder) *Services {
	idGen := postgres.NewULIDGenerator()

	return &Services{
		Policy: policy,
		Ledger: usecase.NewLedgerUseCase(usecase.LedgerConfig{
			TxManager: st.TxManager,
			Accounts:  st.Accounts,
			Log:       st.Log,
			Outbox:    st.Outbox,
			Retrier:   st.Retrier,
			IDGen:     idGen,
			Metrics:   metrics,
			Policy:    policy,
		}),
		Accounts:       usecase.NewAccountUseCase(st.Accounts, idGen, metrics, policy),
		Query:          usecase.NewQueryUseCase(st.Accounts, st.Log),
		Reconciliation: usecase.NewReconciliationUseCase(st.Accounts, st.Log),
	}
}
