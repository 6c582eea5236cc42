package handler

import (
	"context"
	"net/http"

	"github.com/iho/securebank-ledger/internal/adapter/http/dto"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// Reconciler defines the reconciliation operations LedgerHandler needs.
type Reconciler interface {
	ReconcileAccount(ctx context.Context, accountID int64) (*usecase.ReconciliationResult, error)
	GenerateReconciliationReport(ctx context.Context) (*usecase.ReconciliationReport, error)
}

// LedgerHandler handles ledger-wide checks.
type LedgerHandler struct {
	reconciler Reconciler
	scale      int32
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(reconciler Reconciler, scale int32) *LedgerHandler {
	return &LedgerHandler{reconciler: reconciler, scale: scale}
}

// Reconciliation replays the log against every account.
func (h *LedgerHandler) Reconciliation(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciler.GenerateReconciliationReport(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationReportFromResult(report, h.scale))
}

// ReconcileAccount replays the log against one account.
func (h *LedgerHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	result, err := h.reconciler.ReconcileAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result, h.scale))
}
