package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/iho/securebank-ledger/internal/adapter/http/dto"
	"github.com/iho/securebank-ledger/internal/domain"
	"github.com/iho/securebank-ledger/internal/usecase"
)

// kindInvalidRequest is the wire kind for bodies that cannot be decoded or
// fail structural validation before reaching the ledger.
const kindInvalidRequest = "InvalidRequest"

var validate = newValidator()

// newValidator registers the "description" alias used by the request DTOs.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterAlias("description", fmt.Sprintf("max=%d", domain.MaxDescriptionLength))
	return v
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error:   kind,
		Message: message,
	})
}

// writeDomainError maps err to its kind and status. A recorded failure is
// returned alongside the error.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error, scale int32) {
	kind := domain.KindOf(err)
	status := statusForKind(kind)

	resp := dto.ErrorResponse{
		Error:   string(kind),
		Message: err.Error(),
	}
	if failed, ok := usecase.IsFailedOperation(err); ok {
		resp.Transaction = dto.TransactionFromDomain(failed, scale)
	}

	if status == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
		resp.Message = "internal error"
	}

	writeJSON(w, status, resp)
}

// statusForKind maps error kinds to HTTP status codes.
func statusForKind(kind domain.ErrorKind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindInvalidAmount, domain.KindSameAccount, domain.KindInvalidAccount:
		return http.StatusBadRequest
	case domain.KindInsufficientFunds, domain.KindAccountInactive:
		return http.StatusUnprocessableEntity
	case domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes the body into dst and validates it.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validation failed: %s", strings.Join(fields, ", "))
}

// parseIDParam parses a positive int64 URL parameter.
func parseIDParam(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

func pageFromQuery(r *http.Request) usecase.PageInput {
	return usecase.PageInput{
		Limit:  parseIntQuery(r, "limit", 0),
		Offset: parseIntQuery(r, "offset", 0),
	}
}
