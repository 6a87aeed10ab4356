package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mesfinance/finance-service/internal/domain"
)

// loginResponse is sent back after a successful credential check.
type loginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// RegisterHandler handles POST /auth/register.
func (h *Handlers) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "register", err)
		return
	}

	log.Printf("level=info component=api endpoint=register outcome=created user_id=%s", user.ID)
	h.writeJSON(w, http.StatusCreated, user)
}

// LoginHandler handles POST /auth/login. Failure responses never reveal which
// credential was wrong.
func (h *Handlers) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, user, err := h.service.Login(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "login", err)
		return
	}

	h.writeJSON(w, http.StatusOK, loginResponse{Token: token, User: *user})
}
