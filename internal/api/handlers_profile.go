package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mesfinance/finance-service/internal/domain"
)

// GetProfileHandler handles GET /profile: the user plus their linked accounts.
func (h *Handlers) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	profile, err := h.service.Profile(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "get_profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, profile)
}

// UpdateProfileHandler handles PUT /profile. Profile edits and account linking
// are separate request types on separate routes; intent is never inferred from
// which fields happen to be present in a shared form.
func (h *Handlers) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.UpdateProfile(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, "update_profile", err)
		return
	}
	h.writeJSON(w, http.StatusOK, user)
}

// CreateAccountHandler handles POST /accounts.
func (h *Handlers) CreateAccountHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	var req domain.CreateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.service.RegisterAccount(r.Context(), userID, req)
	if err != nil {
		h.writeServiceError(w, "create_account", err)
		return
	}

	log.Printf("level=info component=api endpoint=create_account outcome=created user_id=%s provider=%s", userID, account.Provider)
	h.writeJSON(w, http.StatusCreated, account)
}

// ListAccountsHandler handles GET /accounts.
func (h *Handlers) ListAccountsHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := GetUserID(r.Context())
	if !ok {
		h.writeError(w, http.StatusInternalServerError, "Could not get user ID from context")
		return
	}

	accounts, err := h.service.ListAccounts(r.Context(), userID)
	if err != nil {
		h.writeServiceError(w, "list_accounts", err)
		return
	}
	h.writeJSON(w, http.StatusOK, accounts)
}
