/**
 * @description
 * This file defines the `Repository` interface, the contract for all data
 * access the clearinghouse-service performs. The service treats both backing
 * tables as external, independently-consistent stores: the merchant table is
 * read-only here (maintained by an administrative process), and the
 * transaction log is append-only.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/payrail/clearinghouse-service/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// FindMerchantCredential performs an exact-match lookup on the
	// (merchant_name, token) composite key. It returns ErrMerchantNotFound
	// when no row matches; any other error is an infrastructure failure and
	// must not be conflated with a failed authorization.
	FindMerchantCredential(ctx context.Context, merchantName, token string) (*domain.MerchantCredential, error)

	// AppendOutcome writes one immutable record to the transaction log.
	AppendOutcome(ctx context.Context, record domain.OutcomeRecord) error

	// ListRecentOutcomes returns the newest log entries, most recent first.
	ListRecentOutcomes(ctx context.Context, limit int) ([]domain.OutcomeRecord, error)
}
