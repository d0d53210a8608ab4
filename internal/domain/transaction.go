/**
 * @description
 * This file defines the core domain models for the clearinghouse-service.
 * It covers the untrusted inbound request envelope, the validated transaction
 * request the pipeline operates on, merchant credentials, and the immutable
 * outcome record appended to the transaction log.
 *
 * @notes
 * - The inbound envelope keeps its fields as raw JSON so that each field can
 *   be coerced explicitly. Callers send loosely-shaped JSON (numbers where
 *   strings belong, aliases for the account field), and the pipeline must
 *   classify each defect precisely rather than reject the whole body.
 * - Outcome records are append-only; nothing in this service mutates or
 *   deletes them after the write.
 */

package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Provider identifies a downstream settlement provider.
type Provider string

const (
	ProviderChase    Provider = "Chase"
	ProviderCitibank Provider = "Citibank"
)

// ProviderFor maps the request's bank field to a settlement provider.
// Anything other than the recognized alternate falls back to the default,
// including the empty string and unknown values.
func ProviderFor(bank string) Provider {
	switch bank {
	case string(ProviderCitibank):
		return ProviderCitibank
	default:
		return ProviderChase
	}
}

// Outcome status vocabulary persisted to the transaction log.
const (
	StatusSuccess               = "SUCCESS"
	StatusMerchantNotAuthorized = "MERCHANT_NOT_AUTHORIZED"
	StatusMissingRequiredFields = "MISSING_REQUIRED_FIELDS"
	StatusInvalidAmount         = "INVALID_AMOUNT"
	StatusBankError             = "BANK_ERROR"
)

// UnhandledErrorStatus builds the status tag recorded when the pipeline
// fails in a way no stage anticipated. The detail is the top-level error
// message, never a stack trace.
func UnhandledErrorStatus(detail string) string {
	return "UNHANDLED_ERROR: " + detail
}

// ProcessEnvelope is the untrusted inbound request body. Fields stay raw so
// the validator can distinguish "absent" from "present with the wrong type".
type ProcessEnvelope struct {
	Healthcheck   bool            `json:"healthcheck"`
	MerchantName  json.RawMessage `json:"merchant_name"`
	MerchantToken json.RawMessage `json:"merchant_token"`
	Bank          json.RawMessage `json:"bank"`
	BankAcctNum   json.RawMessage `json:"bank_acct_num"`
	CCNumber      json.RawMessage `json:"cc_number"`
	Amount        json.RawMessage `json:"amount"`
}

// MerchantFieldsPresent reports whether both merchant fields carry a value
// at all. Absent, null, and empty-string fields all count as missing.
func (e *ProcessEnvelope) MerchantFieldsPresent() bool {
	return rawPresent(e.MerchantName) && rawPresent(e.MerchantToken)
}

// MerchantIdentity coerces the merchant fields. ok is false when either
// field is not a non-empty JSON string.
func (e *ProcessEnvelope) MerchantIdentity() (name, token string, ok bool) {
	name, nameOK := stringField(e.MerchantName)
	token, tokenOK := stringField(e.MerchantToken)
	return name, token, nameOK && tokenOK && name != "" && token != ""
}

// BankName returns the bank field when it is a JSON string, otherwise "".
func (e *ProcessEnvelope) BankName() string {
	bank, _ := stringField(e.Bank)
	return bank
}

// ResolveAccountNumber picks the destination account from either accepted
// alias, bank_acct_num first. Non-string values are treated as absent.
func (e *ProcessEnvelope) ResolveAccountNumber() (string, bool) {
	if acct, ok := stringField(e.BankAcctNum); ok && acct != "" {
		return acct, true
	}
	if acct, ok := stringField(e.CCNumber); ok && acct != "" {
		return acct, true
	}
	return "", false
}

// ResolveAmount coerces the amount field. present reports whether the field
// carried any value at all; numeric whether that value was a JSON number.
func (e *ProcessEnvelope) ResolveAmount() (amount float64, present, numeric bool) {
	if len(e.Amount) == 0 || string(e.Amount) == "null" {
		return 0, false, false
	}
	if err := json.Unmarshal(e.Amount, &amount); err != nil {
		return 0, true, false
	}
	return amount, true, true
}

// TransactionRequest is the validated, strongly-typed form of an envelope
// that has passed every pipeline check. The orchestrator dispatches this.
type TransactionRequest struct {
	MerchantName  string
	MerchantToken string
	Bank          string // raw request value, may be empty
	Provider      Provider
	BankAcctNum   string
	Amount        float64
}

// MerchantCredential is a row in the merchant store. Existence of an exact
// (name, token) match is the sole authorization signal.
type MerchantCredential struct {
	MerchantName string    `json:"merchant_name"`
	Token        string    `json:"token"`
	CreatedAt    time.Time `json:"created_at"`
}

// OutcomeRecord is one immutable entry in the transaction log, written at
// the terminal point of every request lifecycle that reaches authorization.
type OutcomeRecord struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Amount        float64   `json:"amount"`
	Bank          string    `json:"bank"`
	BankAcctNum   string    `json:"bank_acct_num"`
	MerchantName  string    `json:"merchant_name"`
	MerchantToken string    `json:"merchant_token"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"timestamp"`
}

func rawPresent(raw json.RawMessage) bool {
	if len(raw) == 0 || string(raw) == "null" {
		return false
	}
	if s, ok := stringField(raw); ok && s == "" {
		return false
	}
	return true
}

func stringField(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
