/**
 * @description
 * This package provides the HTTP client for downstream bank settlement
 * providers. It encapsulates issuing a single bounded-timeout settlement
 * request and normalizing every failure mode (timeout, transport failure,
 * non-2xx status) into one error the retry layer can treat uniformly.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, net/http, time: Standard Go libraries.
 */
package bankclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// AttemptTimeout bounds each individual settlement call. It is deliberately
// not configurable: the retry schedule's worst-case latency is part of the
// service's contract.
const AttemptTimeout = 5 * time.Second

// Client issues settlement requests to bank provider endpoints. Target URLs
// are supplied per call because provider selection happens per request.
type Client struct {
	HTTPClient *http.Client
	Timeout    time.Duration
}

// NewClient creates a new bank provider client.
func NewClient() *Client {
	return &Client{
		HTTPClient: &http.Client{},
		Timeout:    AttemptTimeout,
	}
}

// SettlementRequest is the payload sent to every provider. The shape is
// fixed regardless of which provider receives it.
type SettlementRequest struct {
	ChAcctNum   string  `json:"ch_acct_num"`
	ChToken     string  `json:"ch_token"`
	BankAcctNum string  `json:"bank_acct_num"`
	Amount      float64 `json:"amount"`
}

// SettlementResponse is a provider's acknowledgement of a settled transaction.
type SettlementResponse struct {
	Message string `json:"message"`
}

// Settle issues one settlement request and waits up to the attempt timeout.
// There is no partial success: the call either returns the provider's
// acknowledgement or an error describing why it failed. When the timeout
// fires the in-flight request is abandoned via context cancellation.
func (c *Client) Settle(ctx context.Context, endpointURL string, payload SettlementRequest) (*SettlementResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal settlement request: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = AttemptTimeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, endpointURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create settlement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("bank not available: timed out after %s", timeout)
		}
		return nil, fmt.Errorf("failed to reach bank: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bank response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("level=warn component=bank_client op=settle status=%d msg=\"non-2xx response\"", resp.StatusCode)
		return nil, fmt.Errorf("bank api error: %d - %s", resp.StatusCode, string(respBody))
	}

	var ack SettlementResponse
	if err := json.Unmarshal(respBody, &ack); err != nil {
		return nil, fmt.Errorf("failed to decode bank response: %w", err)
	}
	return &ack, nil
}
