package bankclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func testPayload() SettlementRequest {
	return SettlementRequest{
		ChAcctNum:   "Tucker Morin",
		ChToken:     "521679",
		BankAcctNum: "1234567890",
		Amount:      42.5,
	}
}

func TestSettle_SuccessReturnsAcknowledgement(t *testing.T) {
	var received SettlementRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode settlement payload: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Transaction settled by Chase."}`))
	}))
	defer server.Close()

	client := NewClient()
	ack, err := client.Settle(context.Background(), server.URL, testPayload())
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if ack.Message != "Transaction settled by Chase." {
		t.Fatalf("unexpected acknowledgement %q", ack.Message)
	}
	if received.ChAcctNum != "Tucker Morin" || received.BankAcctNum != "1234567890" || received.Amount != 42.5 {
		t.Fatalf("unexpected payload received by provider: %+v", received)
	}
}

func TestSettle_NonSuccessStatusCapturesBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte("insufficient funds in destination account"))
	}))
	defer server.Close()

	client := NewClient()
	_, err := client.Settle(context.Background(), server.URL, testPayload())
	if err == nil {
		t.Fatal("expected an error for a non-2xx response")
	}
	if !strings.Contains(err.Error(), "bank api error: 402") {
		t.Fatalf("expected the status in the error, got %q", err.Error())
	}
	if !strings.Contains(err.Error(), "insufficient funds in destination account") {
		t.Fatalf("expected the response body in the error, got %q", err.Error())
	}
}

func TestSettle_TimeoutIsNormalized(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient()
	client.Timeout = 50 * time.Millisecond

	start := time.Now()
	_, err := client.Settle(context.Background(), server.URL, testPayload())
	if err == nil {
		t.Fatal("expected a timeout error")
	}
	if !strings.Contains(err.Error(), "timed out") {
		t.Fatalf("expected a normalized timeout error, got %q", err.Error())
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected the in-flight call to be abandoned promptly, took %v", elapsed)
	}
}

func TestSettle_TransportFailureIsNormalized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient()
	_, err := client.Settle(context.Background(), url, testPayload())
	if err == nil {
		t.Fatal("expected a transport error")
	}
	if !strings.Contains(err.Error(), "failed to reach bank") {
		t.Fatalf("expected a normalized transport error, got %q", err.Error())
	}
}
