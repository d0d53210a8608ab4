/**
 * @description
 * This file contains the HTTP handlers for the clearinghouse-service's API
 * endpoints. Handlers read the raw request body, hand it to the pipeline
 * service, and translate the pipeline's typed outcome into an HTTP response.
 * The mapping from error class to status code is a total switch: no message
 * string is ever inspected.
 *
 * @dependencies
 * - encoding/json, errors, io, log, net/http: Standard Go libraries.
 * - internal/app: For the pipeline service and its error classes.
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/payrail/clearinghouse-service/internal/app"
)

// RateLimiter is the contract for the optional per-merchant request limiter.
type RateLimiter interface {
	ConsumeRateLimit(ctx context.Context, scope, subject string, limit int, window time.Duration) (count int, retryAfterSeconds int, err error)
}

// TransactionHandlers holds the pipeline service that handlers will use.
type TransactionHandlers struct {
	service            *app.Service
	rateLimiter        RateLimiter
	rateLimitPerMinute int
}

// NewTransactionHandlers creates a new instance of TransactionHandlers.
func NewTransactionHandlers(service *app.Service) *TransactionHandlers {
	return &TransactionHandlers{service: service}
}

// SetMerchantRateLimiter enables per-merchant request limiting. With a nil
// limiter or a non-positive limit the process endpoint is unthrottled.
func (h *TransactionHandlers) SetMerchantRateLimiter(limiter RateLimiter, perMinute int) {
	h.rateLimiter = limiter
	h.rateLimitPerMinute = perMinute
}

// ProcessHandler handles transaction processing requests.
func (h *TransactionHandlers) ProcessHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("level=error component=api endpoint=process msg=\"request body read failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if !h.allowMerchantRequest(w, r, body) {
		return
	}

	result, err := h.service.Process(r.Context(), body)
	if err != nil {
		h.writePipelineError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// RecentTransactionsHandler returns the newest transaction log entries for
// operators. The route is mounted behind the ops JWT middleware.
func (h *TransactionHandlers) RecentTransactionsHandler(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			h.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if parsed > 500 {
			parsed = 500
		}
		limit = parsed
	}

	records, err := h.service.RecentOutcomes(r.Context(), limit)
	if err != nil {
		log.Printf("level=error component=api endpoint=ops_transactions msg=\"log read failed\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "failed to read transaction log")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":        len(records),
		"transactions": records,
	})
}

// allowMerchantRequest applies the optional per-merchant rate limit. Limiter
// failures are logged and fail open: throttling is never allowed to reject
// traffic the pipeline could have processed.
func (h *TransactionHandlers) allowMerchantRequest(w http.ResponseWriter, r *http.Request, body []byte) bool {
	if h.rateLimiter == nil || h.rateLimitPerMinute <= 0 {
		return true
	}

	var peek struct {
		MerchantName string `json:"merchant_name"`
	}
	if err := json.Unmarshal(body, &peek); err != nil || peek.MerchantName == "" {
		return true
	}

	count, retryAfter, err := h.rateLimiter.ConsumeRateLimit(r.Context(), "process", peek.MerchantName, h.rateLimitPerMinute, time.Minute)
	if err != nil {
		log.Printf("level=warn component=api endpoint=process msg=\"rate limiter unavailable; failing open\" merchant=%s err=%v", peek.MerchantName, err)
		return true
	}
	if count > h.rateLimitPerMinute {
		w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
		h.writeError(w, http.StatusTooManyRequests, "Too many requests. Please retry later.")
		return false
	}
	return true
}

// writePipelineError maps a pipeline failure to its HTTP response.
func (h *TransactionHandlers) writePipelineError(w http.ResponseWriter, err error) {
	var pipelineErr *app.PipelineError
	if !errors.As(err, &pipelineErr) {
		log.Printf("level=error component=api msg=\"non-pipeline error escaped the service\" err=%v", err)
		h.writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	switch pipelineErr.Class {
	case app.ErrorClassClient:
		h.writeError(w, http.StatusBadRequest, pipelineErr.Message)
	case app.ErrorClassAuth:
		h.writeError(w, http.StatusForbidden, pipelineErr.Message)
	case app.ErrorClassInfra:
		h.writeError(w, http.StatusInternalServerError, pipelineErr.Message)
	case app.ErrorClassUpstream:
		h.writeError(w, http.StatusBadGateway, pipelineErr.Message)
	default:
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{
			"message": pipelineErr.Message,
			"error":   pipelineErr.Detail,
		})
	}
}

// writeJSON is a helper for writing JSON responses.
func (h *TransactionHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError is a helper for writing JSON error responses.
func (h *TransactionHandlers) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"message": message})
}
