/**
 * @description
 * This file sets up the HTTP router for the clearinghouse-service. It defines
 * the API endpoints, associates them with their corresponding handlers, and
 * applies middleware.
 *
 * @dependencies
 * - net/http: Standard Go library for HTTP functionality.
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 */

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Routes creates and returns the router for the clearinghouse service.
// opsJWTSecret guards the operator endpoints; when it is empty those routes
// are not mounted at all.
func Routes(h *TransactionHandlers, opsJWTSecret string) http.Handler {
	r := chi.NewRouter()

	// Standard middleware for logging, panic recovery, and an outer request
	// timeout. The timeout must exceed the dispatch worst case (four 5s
	// attempts plus 14s of backoff).
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// Router-level liveness probe.
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("healthy"))
	})

	r.Post("/transactions/process", h.ProcessHandler)

	if opsJWTSecret != "" {
		r.Group(func(r chi.Router) {
			r.Use(OpsAuthMiddleware(opsJWTSecret))
			r.Get("/ops/transactions", h.RecentTransactionsHandler)
		})
	}

	return r
}
