package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/hibiken/asynq"

	"github.com/iho/securebank-ledger/internal/adapter/http/dto"
	"github.com/iho/securebank-ledger/internal/adapter/http/middleware"
	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/jobs"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// LedgerService defines the money movements TransactionHandler needs.
type LedgerService interface {
	Deposit(ctx context.Context, input usecase.DepositInput) (*domain.Transaction, error)
	Withdraw(ctx context.Context, input usecase.WithdrawInput) (*domain.Transaction, error)
	Transfer(ctx context.Context, input usecase.TransferInput) (*domain.Transaction, error)
}

// TransactionQueries defines the transaction reads TransactionHandler needs.
type TransactionQueries interface {
	GetTransaction(ctx context.Context, id int64) (*domain.Transaction, error)
	TransactionCount(ctx context.Context) (int64, error)
	ListTransactions(ctx context.Context, input usecase.PageInput) ([]*domain.Transaction, error)
	ListTransactionsByAccount(ctx context.Context, accountID int64, input usecase.PageInput) ([]*domain.Transaction, error)
}

// TaskEnqueuer submits ledger operations to the worker queue.
type TaskEnqueuer interface {
	Enqueue(ctx context.Context, payload jobs.LedgerPayload, key string) (*asynq.TaskInfo, error)
}

// TransactionHandler handles ledger operation requests.
type TransactionHandler struct {
	ledger   LedgerService
	query    TransactionQueries
	enqueuer TaskEnqueuer
	policy   usecase.Policy
}

// NewTransactionHandler creates a new TransactionHandler. enqueuer may be
// nil, in which case asynchronous submission is unavailable.
func NewTransactionHandler(ledger LedgerService, query TransactionQueries, enqueuer TaskEnqueuer, policy usecase.Policy) *TransactionHandler {
	return &TransactionHandler{ledger: ledger, query: query, enqueuer: enqueuer, policy: policy}
}

// Transfer moves money between two accounts.
func (h *TransactionHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req dto.TransferRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	tx, err := h.ledger.Transfer(r.Context(), req.ToUseCaseInput())
	h.respond(w, r, tx, err)
}

// Deposit credits an account.
func (h *TransactionHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req dto.SingleAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	tx, err := h.ledger.Deposit(r.Context(), req.ToDepositInput())
	h.respond(w, r, tx, err)
}

// Withdraw debits an account.
func (h *TransactionHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req dto.SingleAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	tx, err := h.ledger.Withdraw(r.Context(), req.ToWithdrawInput())
	h.respond(w, r, tx, err)
}

func (h *TransactionHandler) respond(w http.ResponseWriter, r *http.Request, tx *domain.Transaction, err error) {
	if err != nil {
		writeDomainError(w, r, err, h.policy.Scale)
		return
	}
	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx, h.policy.Scale))
}

// SubmitAsync queues a ledger operation and returns 202. Requests the engine
// would reject outright are rejected here instead of being queued.
func (h *TransactionHandler) SubmitAsync(w http.ResponseWriter, r *http.Request) {
	if h.enqueuer == nil {
		writeError(w, http.StatusServiceUnavailable, string(domain.KindInternal), "asynchronous submission is not configured")
		return
	}

	var req dto.AsyncTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	if err := domain.ValidateAmount(req.Amount, h.policy.Scale); err != nil {
		writeDomainError(w, r, err, h.policy.Scale)
		return
	}
	if req.Type == string(domain.TransactionTypeTransfer) && req.FromAccountID == req.ToAccountID && !h.policy.AllowSameAccount {
		writeDomainError(w, r, domain.ErrSameAccount, h.policy.Scale)
		return
	}

	payload := jobs.LedgerPayload{
		Type:          domain.TransactionType(req.Type),
		AccountID:     req.AccountID,
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
	}

	info, err := h.enqueuer.Enqueue(r.Context(), payload, r.Header.Get(middleware.IdempotencyKeyHeader))
	if errors.Is(err, jobs.ErrDuplicateTask) {
		writeError(w, http.StatusConflict, string(domain.KindConflict), err.Error())
		return
	}
	if err != nil {
		writeDomainError(w, r, err, h.policy.Scale)
		return
	}

	writeJSON(w, http.StatusAccepted, dto.AsyncAcceptedResponse{
		TaskID: info.ID,
		Queue:  info.Queue,
		Status: "QUEUED",
	})
}

// List lists all transactions oldest first.
func (h *TransactionHandler) List(w http.ResponseWriter, r *http.Request) {
	transactions, err := h.query.ListTransactions(r.Context(), pageFromQuery(r))
	if err != nil {
		writeDomainError(w, r, err, h.policy.Scale)
		return
	}

	if total, err := h.query.TransactionCount(r.Context()); err == nil {
		w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions, h.policy.Scale))
}

// Get retrieves a transaction by ID.
func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	tx, err := h.query.GetTransaction(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, h.policy.Scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionFromDomain(tx, h.policy.Scale))
}

// ListByAccount lists the transactions touching one account.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := parseIDParam(r, "accountId")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	transactions, err := h.query.ListTransactionsByAccount(r.Context(), accountID, pageFromQuery(r))
	if err != nil {
		writeDomainError(w, r, err, h.policy.Scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.TransactionsFromDomain(transactions, h.policy.Scale))
}
