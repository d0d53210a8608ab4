/**
 * @description
 * This file contains the core pipeline for the clearinghouse-service. The
 * `Service` struct orchestrates one transaction request end to end:
 * authorize the merchant, validate the request fields, dispatch to a bank
 * settlement provider with retries, and record the outcome in the
 * transaction log on every exit path.
 *
 * Key features:
 * - Every terminal state after authorization writes exactly one outcome
 *   record. Log writes are best-effort and never alter the response.
 * - Failures carry an error class so the API layer's response mapping is a
 *   total function over the class set.
 * - A deferred recover converts panics anywhere in the pipeline into the
 *   unhandled-error terminal state with placeholder identity fields.
 *
 * @dependencies
 * - context, encoding/json, errors, fmt, log, time: Standard Go libraries.
 * - github.com/google/uuid: For transaction identifier generation.
 * - internal/domain, internal/store: For domain models and data access.
 * - pkg/bankclient, pkg/rabbitmq: For external service communication.
 */

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/payrail/clearinghouse-service/internal/domain"
	"github.com/payrail/clearinghouse-service/internal/store"
	"github.com/payrail/clearinghouse-service/pkg/bankclient"
	"github.com/payrail/clearinghouse-service/pkg/rabbitmq"
)

const placeholderIdentity = "unknown"

// SettlementClient issues a single bounded-timeout settlement call.
type SettlementClient interface {
	Settle(ctx context.Context, endpointURL string, payload bankclient.SettlementRequest) (*bankclient.SettlementResponse, error)
}

// ProcessResult is the success payload returned to the caller.
type ProcessResult struct {
	Message string `json:"message"`
}

// Clearinghouse holds this system's own identity presented to bank providers.
type Clearinghouse struct {
	AcctNum string
	Token   string
}

// Service provides the transaction processing pipeline.
type Service struct {
	repo            store.Repository
	bank            SettlementClient
	eventProducer   rabbitmq.Publisher
	outcomeExchange string
	endpoints       map[domain.Provider]string
	clearinghouse   Clearinghouse

	// Overridable for tests.
	backoff []time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
	now     func() time.Time
	newID   func() uuid.UUID
}

// NewService creates a new pipeline service instance.
func NewService(
	repo store.Repository,
	bank SettlementClient,
	producer rabbitmq.Publisher,
	outcomeExchange string,
	endpoints map[domain.Provider]string,
	clearinghouse Clearinghouse,
) *Service {
	return &Service{
		repo:            repo,
		bank:            bank,
		eventProducer:   producer,
		outcomeExchange: outcomeExchange,
		endpoints:       endpoints,
		clearinghouse:   clearinghouse,
		backoff:         backoffSchedule,
		sleep:           sleepWithContext,
		now:             time.Now,
		newID:           uuid.New,
	}
}

// Process runs one transaction request through the full pipeline. The raw
// body is decoded here so that a malformed body follows the same
// unhandled-error path the original envelope parsing did. On failure the
// returned error is always a *PipelineError.
func (s *Service) Process(ctx context.Context, body []byte) (result *ProcessResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			detail := fmt.Sprint(r)
			log.Printf("level=error component=pipeline msg=\"unhandled panic\" err=%q", detail)
			s.recordUnhandled(ctx, detail)
			result, err = nil, unexpectedError(detail)
		}
	}()

	var envelope domain.ProcessEnvelope
	if decodeErr := json.Unmarshal(body, &envelope); decodeErr != nil {
		log.Printf("level=error component=pipeline msg=\"request body decode failed\" err=%v", decodeErr)
		s.recordUnhandled(ctx, decodeErr.Error())
		return nil, unexpectedError(decodeErr.Error())
	}

	if envelope.Healthcheck {
		return &ProcessResult{Message: "Clearinghouse API Alive."}, nil
	}

	// Pre-authorization structural check. There is no merchant identity to
	// log against yet, so these rejections write no outcome record.
	if !envelope.MerchantFieldsPresent() {
		return nil, clientError("Merchant name and token are required.")
	}
	merchantName, merchantToken, ok := envelope.MerchantIdentity()
	if !ok {
		return nil, clientError("Merchant name and token must be strings.")
	}

	if authErr := s.authorizeMerchant(ctx, merchantName, merchantToken); authErr != nil {
		if errors.Is(authErr, store.ErrMerchantNotFound) {
			s.recordOutcome(ctx, domain.OutcomeRecord{
				MerchantName:  merchantName,
				MerchantToken: merchantToken,
				Bank:          orPlaceholder(envelope.BankName()),
				BankAcctNum:   orPlaceholder(firstAccountValue(&envelope)),
				Amount:        amountOrZero(&envelope),
				Status:        domain.StatusMerchantNotAuthorized,
			})
			return nil, authError("Merchant Not Authorized")
		}
		log.Printf("level=error component=auth_gate msg=\"merchant store lookup failed\" merchant=%s err=%v", merchantName, authErr)
		return nil, infraError("Error accessing merchant data.")
	}

	bank := envelope.BankName()
	acctNum, acctOK := envelope.ResolveAccountNumber()
	amount, amountPresent, amountNumeric := envelope.ResolveAmount()

	if !acctOK || !amountPresent {
		s.recordOutcome(ctx, domain.OutcomeRecord{
			MerchantName:  merchantName,
			MerchantToken: merchantToken,
			Bank:          orPlaceholder(bank),
			BankAcctNum:   orPlaceholder(acctNum),
			Amount:        amountOrZero(&envelope),
			Status:        domain.StatusMissingRequiredFields,
		})
		return nil, clientError("bank_acct_num (or cc_number) and amount are required.")
	}

	if !amountNumeric || amount <= 0 {
		s.recordOutcome(ctx, domain.OutcomeRecord{
			MerchantName:  merchantName,
			MerchantToken: merchantToken,
			Bank:          orPlaceholder(bank),
			BankAcctNum:   acctNum,
			Amount:        amount,
			Status:        domain.StatusInvalidAmount,
		})
		return nil, clientError("Amount must be a positive number.")
	}

	request := domain.TransactionRequest{
		MerchantName:  merchantName,
		MerchantToken: merchantToken,
		Bank:          bank,
		Provider:      domain.ProviderFor(bank),
		BankAcctNum:   acctNum,
		Amount:        amount,
	}

	// Post-dispatch records carry the resolved provider when the request
	// left the bank field unset.
	providerLabel := bank
	if providerLabel == "" {
		providerLabel = string(request.Provider)
	}

	ack, dispatchErr := s.dispatchWithRetry(ctx, request)
	if dispatchErr != nil {
		s.recordOutcome(ctx, domain.OutcomeRecord{
			MerchantName:  merchantName,
			MerchantToken: merchantToken,
			Bank:          providerLabel,
			BankAcctNum:   acctNum,
			Amount:        amount,
			Status:        domain.StatusBankError,
		})
		return nil, upstreamError(dispatchErr.Error())
	}

	s.recordOutcome(ctx, domain.OutcomeRecord{
		MerchantName:  merchantName,
		MerchantToken: merchantToken,
		Bank:          providerLabel,
		BankAcctNum:   acctNum,
		Amount:        amount,
		Status:        domain.StatusSuccess,
	})
	return &ProcessResult{Message: ack.Message}, nil
}

// RecentOutcomes exposes the transaction log's read path for operators.
func (s *Service) RecentOutcomes(ctx context.Context, limit int) ([]domain.OutcomeRecord, error) {
	return s.repo.ListRecentOutcomes(ctx, limit)
}

// authorizeMerchant checks for an exact-match credential. It never writes
// the log itself; the orchestrator does, using the verdict.
func (s *Service) authorizeMerchant(ctx context.Context, merchantName, token string) error {
	_, err := s.repo.FindMerchantCredential(ctx, merchantName, token)
	return err
}

// recordOutcome assigns a fresh transaction identifier and timestamp, then
// appends the record to the transaction log. A failed write is reported to
// diagnostics and swallowed: observability must not fail the transaction.
func (s *Service) recordOutcome(ctx context.Context, record domain.OutcomeRecord) {
	record.TransactionID = s.newID()
	record.CreatedAt = s.now().UTC()

	if err := s.repo.AppendOutcome(ctx, record); err != nil {
		log.Printf("level=error component=outcome_log msg=\"transaction log write failed\" transaction_id=%s status=%q err=%v",
			record.TransactionID, record.Status, err)
	} else {
		log.Printf("level=info component=outcome_log msg=\"transaction recorded\" transaction_id=%s merchant=%s status=%q",
			record.TransactionID, record.MerchantName, record.Status)
	}

	if s.eventProducer == nil {
		return
	}
	event := rabbitmq.OutcomeEvent{
		TransactionID: record.TransactionID,
		MerchantName:  record.MerchantName,
		Bank:          record.Bank,
		Amount:        record.Amount,
		Status:        record.Status,
		Timestamp:     record.CreatedAt,
	}
	if err := s.eventProducer.PublishOutcomeEvent(ctx, s.outcomeExchange, event); err != nil {
		log.Printf("level=warn component=outcome_log msg=\"outcome event publish failed\" transaction_id=%s err=%v",
			record.TransactionID, err)
	}
}

// recordUnhandled attempts a best-effort record for failures that carry no
// usable request context.
func (s *Service) recordUnhandled(ctx context.Context, detail string) {
	s.recordOutcome(ctx, domain.OutcomeRecord{
		MerchantName:  placeholderIdentity,
		MerchantToken: placeholderIdentity,
		Bank:          placeholderIdentity,
		BankAcctNum:   placeholderIdentity,
		Amount:        0,
		Status:        domain.UnhandledErrorStatus(detail),
	})
}

func orPlaceholder(value string) string {
	if value == "" {
		return placeholderIdentity
	}
	return value
}

func firstAccountValue(envelope *domain.ProcessEnvelope) string {
	acct, _ := envelope.ResolveAccountNumber()
	return acct
}

func amountOrZero(envelope *domain.ProcessEnvelope) float64 {
	amount, _, numeric := envelope.ResolveAmount()
	if !numeric {
		return 0
	}
	return amount
}
