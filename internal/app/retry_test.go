package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/payrail/clearinghouse-service/internal/domain"
)

func TestBackoffSchedule(t *testing.T) {
	want := []time.Duration{0, 2 * time.Second, 4 * time.Second, 8 * time.Second}
	if len(backoffSchedule) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(backoffSchedule))
	}
	for i, d := range want {
		if backoffSchedule[i] != d {
			t.Fatalf("expected attempt %d delay %v, got %v", i+1, d, backoffSchedule[i])
		}
	}
}

func TestSleepWithContext_ReturnsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	err := sleepWithContext(ctx, 30*time.Second)
	if err == nil {
		t.Fatal("expected a context error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("expected an immediate return on cancellation, took %v", elapsed)
	}
}

func TestDispatchWithRetry_AbandonedSleepStopsRetrying(t *testing.T) {
	repo := authorizedRepo()
	bank := &bankStub{failures: 10}
	svc, _ := newTestService(repo, bank, nil)
	cancelled := errors.New("context canceled")
	svc.sleep = func(ctx context.Context, d time.Duration) error { return cancelled }

	_, err := svc.dispatchWithRetry(context.Background(), domain.TransactionRequest{
		Provider:    domain.ProviderChase,
		BankAcctNum: "123",
		Amount:      10,
	})
	if !errors.Is(err, cancelled) {
		t.Fatalf("expected the sleep error to surface, got %v", err)
	}
	if len(bank.urls) != 1 {
		t.Fatalf("expected retrying to stop after the failed sleep, got %d attempts", len(bank.urls))
	}
}
