/**
 * @description
 * This file sets up the HTTP router for the finance-service using the go-chi/chi
 * router. It defines the API routes, applies middleware for logging, CORS, and
 * authentication, and maps the routes to their corresponding handler functions.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the finance-service routes.
func NewRouter(h *Handlers, jwtSecret []byte) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	// Public endpoints
	r.Post("/auth/register", h.RegisterHandler)
	r.Post("/auth/login", h.LoginHandler)

	// Protected routes that require a valid session token.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(jwtSecret))

		r.Get("/profile", h.GetProfileHandler)
		r.Put("/profile", h.UpdateProfileHandler)

		r.Post("/accounts", h.CreateAccountHandler)
		r.Get("/accounts", h.ListAccountsHandler)

		r.Post("/transactions", h.RecordTransactionHandler)
		r.Get("/transactions", h.ListTransactionsHandler)

		r.Get("/balances", h.BalanceSheetHandler)
	})

	return r
}
