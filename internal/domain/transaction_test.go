package domain

import (
	"encoding/json"
	"testing"
)

func mustEnvelope(t *testing.T, body string) *ProcessEnvelope {
	t.Helper()
	var envelope ProcessEnvelope
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	return &envelope
}

func TestProviderFor(t *testing.T) {
	tests := []struct {
		bank string
		want Provider
	}{
		{bank: "Citibank", want: ProviderCitibank},
		{bank: "Chase", want: ProviderChase},
		{bank: "", want: ProviderChase},
		{bank: "citibank", want: ProviderChase}, // identifier match is exact
		{bank: "FirstNational", want: ProviderChase},
	}
	for _, tt := range tests {
		if got := ProviderFor(tt.bank); got != tt.want {
			t.Fatalf("ProviderFor(%q) = %q, want %q", tt.bank, got, tt.want)
		}
	}
}

func TestMerchantIdentity(t *testing.T) {
	envelope := mustEnvelope(t, `{"merchant_name":"acme","merchant_token":"tok"}`)
	name, token, ok := envelope.MerchantIdentity()
	if !ok || name != "acme" || token != "tok" {
		t.Fatalf("expected identity to resolve, got %q %q %v", name, token, ok)
	}

	envelope = mustEnvelope(t, `{"merchant_name":42,"merchant_token":"tok"}`)
	if _, _, ok := envelope.MerchantIdentity(); ok {
		t.Fatal("expected non-string merchant_name to fail")
	}

	envelope = mustEnvelope(t, `{"merchant_token":"tok"}`)
	if envelope.MerchantFieldsPresent() {
		t.Fatal("expected absent merchant_name to count as missing")
	}

	envelope = mustEnvelope(t, `{"merchant_name":"","merchant_token":"tok"}`)
	if envelope.MerchantFieldsPresent() {
		t.Fatal("expected empty merchant_name to count as missing")
	}

	envelope = mustEnvelope(t, `{"merchant_name":42,"merchant_token":"tok"}`)
	if !envelope.MerchantFieldsPresent() {
		t.Fatal("expected a non-string value to still count as present")
	}
}

func TestResolveAccountNumber(t *testing.T) {
	envelope := mustEnvelope(t, `{"bank_acct_num":"111","cc_number":"222"}`)
	if acct, ok := envelope.ResolveAccountNumber(); !ok || acct != "111" {
		t.Fatalf("expected bank_acct_num to win, got %q %v", acct, ok)
	}

	envelope = mustEnvelope(t, `{"cc_number":"222"}`)
	if acct, ok := envelope.ResolveAccountNumber(); !ok || acct != "222" {
		t.Fatalf("expected cc_number fallback, got %q %v", acct, ok)
	}

	envelope = mustEnvelope(t, `{"bank_acct_num":"","cc_number":"222"}`)
	if acct, ok := envelope.ResolveAccountNumber(); !ok || acct != "222" {
		t.Fatalf("expected empty bank_acct_num to fall through, got %q %v", acct, ok)
	}

	envelope = mustEnvelope(t, `{"bank_acct_num":12345}`)
	if _, ok := envelope.ResolveAccountNumber(); ok {
		t.Fatal("expected a non-string account value to be treated as absent")
	}

	envelope = mustEnvelope(t, `{}`)
	if _, ok := envelope.ResolveAccountNumber(); ok {
		t.Fatal("expected no account to resolve from an empty body")
	}
}

func TestResolveAmount(t *testing.T) {
	envelope := mustEnvelope(t, `{"amount":12.5}`)
	amount, present, numeric := envelope.ResolveAmount()
	if !present || !numeric || amount != 12.5 {
		t.Fatalf("expected 12.5, got %v present=%v numeric=%v", amount, present, numeric)
	}

	envelope = mustEnvelope(t, `{"amount":"12.5"}`)
	if _, present, numeric := envelope.ResolveAmount(); !present || numeric {
		t.Fatal("expected a string amount to be present but non-numeric")
	}

	envelope = mustEnvelope(t, `{}`)
	if _, present, _ := envelope.ResolveAmount(); present {
		t.Fatal("expected an absent amount")
	}

	envelope = mustEnvelope(t, `{"amount":null}`)
	if _, present, _ := envelope.ResolveAmount(); present {
		t.Fatal("expected a null amount to count as absent")
	}
}

func TestUnhandledErrorStatus(t *testing.T) {
	if got := UnhandledErrorStatus("boom"); got != "UNHANDLED_ERROR: boom" {
		t.Fatalf("unexpected status %q", got)
	}
}
