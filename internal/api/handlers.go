/**
 * @description
 * This file contains the HTTP handlers for the finance-service ledger and
 * balance endpoints. Handlers are responsible for parsing incoming requests,
 * calling the appropriate methods on the application service, and writing the
 * HTTP response. They act as the bridge between the web layer and the business
 * logic layer; all rendering beyond plain JSON is someone else's job.
 *
 * @dependencies
 * - encoding/json, log, net/http: Standard Go libraries.
 * - internal/app, internal/domain, internal/store: For service logic, models, and custom errors.
 */

package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/mesfinance/finance-service/internal/app"
	"github.com/mesfinance/finance-service/internal/domain"
	"github.com/mesfinance/finance-service/internal/store"
)

// Handlers holds the application service that HTTP handlers dispatch to.
type Handlers struct {
	service *app.Service
}

// NewHandlers creates a new instance of Handlers.
func NewHandlers(service *app.Service) *Handlers {
	return &Handlers{service: service}
}

// RecordTransactionHandler handles POST /transactions.
func (h *Handlers) RecordTransactionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.RecordTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Printf("level=warn component=api endpoint=record_transaction outcome=reject reason=invalid_json err=%v", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tx, err := h.service.RecordTransaction(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, "record_transaction", err)
		return
	}

	log.Printf("level=info component=api endpoint=record_transaction outcome=accepted user_id=%s type=%s compte=%s amount=%s",
		userID, tx.Type, tx.Compte, tx.Amount.StringFixed(2))
	h.writeJSON(w, http.StatusCreated, tx)
}

// ListTransactionsHandler handles GET /transactions?q=&type=.
func (h *Handlers) ListTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	filters := domain.TransactionFilters{
		Keyword: r.URL.Query().Get("q"),
	}
	if typeParam := r.URL.Query().Get("type"); typeParam != "" {
		txType := domain.TransactionType(typeParam)
		if !txType.IsValid() {
			h.writeError(w, http.StatusBadRequest, "type: must be one of revenu, depense, epargne")
			return
		}
		filters.Type = txType
	}

	transactions, err := h.service.ListTransactions(r.Context(), userID, filters)
	if err != nil {
		h.writeServiceError(w, "list_transactions", err)
		return
	}
	h.writeJSON(w, http.StatusOK, transactions)
}

// BalanceSheetHandler handles GET /balances. Every quantity in the response is
// recomputed from the ledger on this request.
func (h *Handlers) BalanceSheetHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	sheet, err := h.service.BalanceSheet(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "balance_sheet", err)
		return
	}
	h.writeJSON(w, http.StatusOK, sheet)
}

// writeServiceError maps application errors onto HTTP status codes.
func (h *Handlers) writeServiceError(w http.ResponseWriter, endpoint string, err error) {
	var validationErr *app.ValidationError
	if errors.As(err, &validationErr) {
		h.writeError(w, http.StatusBadRequest, validationErr.Error())
		return
	}
	var fundsErr *app.InsufficientFundsError
	if errors.As(err, &fundsErr) {
		h.writeError(w, http.StatusUnprocessableEntity, fundsErr.Error())
		return
	}
	var throttledErr *app.TooManyLoginAttemptsError
	if errors.As(err, &throttledErr) {
		w.Header().Set("Retry-After", strconv.Itoa(throttledErr.RetryAfterSeconds))
		h.writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please wait and try again.")
		return
	}
	switch {
	case errors.Is(err, app.ErrInvalidCredentials):
		h.writeError(w, http.StatusUnauthorized, app.ErrInvalidCredentials.Error())
	case errors.Is(err, app.ErrTooManyLoginAttempts):
		h.writeError(w, http.StatusTooManyRequests, "Too many login attempts. Please wait and try again.")
	case errors.Is(err, store.ErrPhoneNumberTaken):
		h.writeError(w, http.StatusConflict, store.ErrPhoneNumberTaken.Error())
	case errors.Is(err, store.ErrUserNotFound), errors.Is(err, store.ErrAccountNotFound):
		h.writeError(w, http.StatusNotFound, err.Error())
	default:
		log.Printf("level=error component=api endpoint=%s msg=\"unhandled service error\" err=%v", endpoint, err)
		h.writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *Handlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
