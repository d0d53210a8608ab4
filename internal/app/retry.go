/**
 * @description
 * This file implements the retry coordinator wrapped around the bank
 * settlement client. Delivery uses a fixed schedule: an immediate first
 * attempt, then three retries at increasing delays. The schedule is not
 * jittered and not configurable, which bounds worst-case pipeline latency
 * at the cost of adaptivity.
 */

package app

import (
	"context"
	"log"
	"time"

	"github.com/payrail/clearinghouse-service/internal/domain"
	"github.com/payrail/clearinghouse-service/pkg/bankclient"
)

// backoffSchedule includes the immediate first attempt. Worst case, a fully
// failing dispatch occupies four attempt timeouts plus 14s of sleep.
var backoffSchedule = []time.Duration{0, 2 * time.Second, 4 * time.Second, 8 * time.Second}

// dispatchWithRetry attempts delivery to the request's provider endpoint.
// It returns the first successful acknowledgement; when every attempt fails
// it returns the error from the final attempt.
func (s *Service) dispatchWithRetry(ctx context.Context, request domain.TransactionRequest) (*bankclient.SettlementResponse, error) {
	endpointURL := s.endpoints[request.Provider]
	payload := bankclient.SettlementRequest{
		ChAcctNum:   s.clearinghouse.AcctNum,
		ChToken:     s.clearinghouse.Token,
		BankAcctNum: request.BankAcctNum,
		Amount:      request.Amount,
	}

	var lastErr error
	for i, delay := range s.backoff {
		if delay > 0 {
			log.Printf("level=info component=dispatch msg=\"waiting before retry\" provider=%s attempt=%d delay_ms=%d",
				request.Provider, i+1, delay.Milliseconds())
			if err := s.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		ack, err := s.bank.Settle(ctx, endpointURL, payload)
		if err == nil {
			log.Printf("level=info component=dispatch msg=\"settlement acknowledged\" provider=%s attempt=%d", request.Provider, i+1)
			return ack, nil
		}
		lastErr = err
		log.Printf("level=warn component=dispatch msg=\"attempt failed\" provider=%s attempt=%d err=%v", request.Provider, i+1, err)
	}
	return nil, lastErr
}

// sleepWithContext waits for the delay without blocking other invocations,
// returning early if the context is cancelled.
func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
