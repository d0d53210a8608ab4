/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains the SQL for the merchant credential lookup and the
 * transaction log writes and reads.
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 */

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/payrail/clearinghouse-service/internal/domain"
)

var (
	ErrMerchantNotFound = errors.New("merchant credential not found")
)

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindMerchantCredential looks up a merchant by the exact composite key.
func (r *PostgresRepository) FindMerchantCredential(ctx context.Context, merchantName, token string) (*domain.MerchantCredential, error) {
	var credential domain.MerchantCredential
	query := `SELECT merchant_name, token, created_at FROM merchants WHERE merchant_name = $1 AND token = $2`
	err := r.db.QueryRow(ctx, query, merchantName, token).Scan(
		&credential.MerchantName,
		&credential.Token,
		&credential.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrMerchantNotFound
		}
		return nil, err
	}
	return &credential, nil
}

// AppendOutcome inserts one row into the transaction log. Rows are never
// updated or deleted by this service.
func (r *PostgresRepository) AppendOutcome(ctx context.Context, record domain.OutcomeRecord) error {
	query := `
		INSERT INTO transaction_log (transaction_id, amount, bank, bank_acct_num, merchant_name, merchant_token, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.Exec(ctx, query,
		record.TransactionID,
		record.Amount,
		record.Bank,
		record.BankAcctNum,
		record.MerchantName,
		record.MerchantToken,
		record.Status,
		record.CreatedAt,
	)
	return err
}

// ListRecentOutcomes returns up to limit log entries, newest first.
func (r *PostgresRepository) ListRecentOutcomes(ctx context.Context, limit int) ([]domain.OutcomeRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT transaction_id, amount, bank, bank_acct_num, merchant_name, merchant_token, status, created_at
		FROM transaction_log
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.OutcomeRecord
	for rows.Next() {
		var record domain.OutcomeRecord
		if err := rows.Scan(
			&record.TransactionID,
			&record.Amount,
			&record.Bank,
			&record.BankAcctNum,
			&record.MerchantName,
			&record.MerchantToken,
			&record.Status,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
