package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/iho/securebank-ledger/internal/adapter/http/dto"
	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// AccountAdmin defines the account lifecycle operations AccountHandler needs.
type AccountAdmin interface {
	OpenAccount(ctx context.Context, input usecase.OpenAccountInput) (*domain.Account, error)
	UpdateAccount(ctx context.Context, input usecase.UpdateAccountInput) (*domain.Account, error)
	DeactivateAccount(ctx context.Context, id int64) error
}

// AccountQueries defines the account reads AccountHandler needs.
type AccountQueries interface {
	AccountCount(ctx context.Context) (int64, error)
	ListAccounts(ctx context.Context, input usecase.PageInput) ([]*domain.Account, error)
	GetAccount(ctx context.Context, id int64) (*domain.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (*domain.Account, error)
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	admin AccountAdmin
	query AccountQueries
	scale int32
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(admin AccountAdmin, query AccountQueries, scale int32) *AccountHandler {
	return &AccountHandler{admin: admin, query: query, scale: scale}
}

// Create opens a new account.
func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.OpenAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	account, err := h.admin.OpenAccount(r.Context(), req.ToUseCaseInput())
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusCreated, dto.AccountFromDomain(account, h.scale))
}

// Update changes account metadata.
func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	var req dto.UpdateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	account, err := h.admin.UpdateAccount(r.Context(), req.ToUseCaseInput(id))
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account, h.scale))
}

// Delete deactivates an account. Its history is kept.
func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	if err := h.admin.DeactivateAccount(r.Context(), id); err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Account deleted successfully"})
}

// Get retrieves an account by ID.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, kindInvalidRequest, err.Error())
		return
	}

	account, err := h.query.GetAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account, h.scale))
}

// GetByNumber retrieves an account by its external number.
func (h *AccountHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	number := strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "number")))
	account, err := h.query.GetAccountByNumber(r.Context(), number)
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountFromDomain(account, h.scale))
}

// List lists accounts ordered by ID. The total count is sent in X-Total-Count.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.query.ListAccounts(r.Context(), pageFromQuery(r))
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	if total, err := h.query.AccountCount(r.Context()); err == nil {
		w.Header().Set("X-Total-Count", strconv.FormatInt(total, 10))
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts, h.scale))
}

// Count returns the number of accounts.
func (h *AccountHandler) Count(w http.ResponseWriter, r *http.Request) {
	total, err := h.query.AccountCount(r.Context())
	if err != nil {
		writeDomainError(w, r, err, h.scale)
		return
	}

	writeJSON(w, http.StatusOK, dto.CountResponse{Count: total})
}
