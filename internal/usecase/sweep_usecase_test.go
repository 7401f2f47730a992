package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/iho/creditdesk/internal/domain"
)

func TestSweepUseCase_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedAccount("acc-1", 10, "+14155550100", nil)

	t0 := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f.seedRequest("req-1", "acc-1", domain.StatusPending, t0)

	// t0+30s: too young, nothing moves.
	result, err := f.sweep.Tick(ctx, t0.Add(30*time.Second))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Transitions != 0 {
		t.Errorf("tick at +30s made %d transitions, want 0", result.Transitions)
	}

	// t0+1m05s: pending -> in_progress.
	result, _ = f.sweep.Tick(ctx, t0.Add(65*time.Second))
	if result.Transitions != 1 {
		t.Fatalf("tick at +1m05s made %d transitions, want 1", result.Transitions)
	}
	request, _ := f.requestUC.GetRequest(ctx, "req-1", "acc-1")
	if request.Status != domain.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", request.Status)
	}

	// Repeated sweeps before the next threshold change nothing and never
	// re-fire the notification.
	for _, offset := range []time.Duration{2 * time.Minute, 5 * time.Minute, 9 * time.Minute} {
		result, _ = f.sweep.Tick(ctx, t0.Add(offset))
		if result.Transitions != 0 {
			t.Errorf("tick at +%s made %d transitions, want 0", offset, result.Transitions)
		}
	}
	if got := len(f.sink.Sent()); got != 1 {
		t.Fatalf("%d notifications after intermediate sweeps, want 1", got)
	}

	// t0+10m05s: in_progress -> completed.
	result, _ = f.sweep.Tick(ctx, t0.Add(10*time.Minute+5*time.Second))
	if result.Transitions != 1 {
		t.Fatalf("tick at +10m05s made %d transitions, want 1", result.Transitions)
	}
	request, _ = f.requestUC.GetRequest(ctx, "req-1", "acc-1")
	if request.Status != domain.StatusCompleted {
		t.Fatalf("status = %s, want completed", request.Status)
	}

	sent := f.sink.Sent()
	if len(sent) != 2 {
		t.Fatalf("%d notifications total, want 2", len(sent))
	}
	if sent[0].Message != "Your request 'Request req-1' is now In Progress." {
		t.Errorf("first message = %q", sent[0].Message)
	}
	if sent[1].Message != "Your request 'Request req-1' has been Completed." {
		t.Errorf("second message = %q", sent[1].Message)
	}

	// Terminal: later sweeps leave it alone.
	result, _ = f.sweep.Tick(ctx, t0.Add(24*time.Hour))
	if result.Transitions != 0 {
		t.Errorf("tick after completion made %d transitions", result.Transitions)
	}
}

func TestSweepUseCase_SingleFlight(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	started := make(chan struct{})
	release := make(chan struct{})
	f.requests.ListOpenFunc = func(ctx context.Context) ([]*domain.ServiceRequest, error) {
		close(started)
		<-release
		return nil, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		f.sweep.Tick(ctx, time.Now())
	}()

	<-started

	// A tick that fires while one is in flight is skipped, not queued.
	result, err := f.sweep.Tick(ctx, time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Skipped {
		t.Error("overlapping tick was not skipped")
	}

	close(release)
	wg.Wait()
}

func TestSweepUseCase_PerItemFailureIsolation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedAccount("acc-1", 10, "+14155550100", nil)

	t0 := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	good := f.seedRequest("req-good", "acc-1", domain.StatusPending, t0.Add(-2*time.Minute))

	// One phantom due item that no longer exists in the store: advancing it
	// fails, and the failure must not keep the rest of the due set from
	// being processed.
	phantom := &domain.ServiceRequest{
		ID:        "req-gone",
		AccountID: "acc-1",
		Title:     "Request req-gone",
		Status:    domain.StatusPending,
		CreatedAt: t0.Add(-2 * time.Minute),
	}
	f.requests.ListOpenFunc = func(ctx context.Context) ([]*domain.ServiceRequest, error) {
		return []*domain.ServiceRequest{phantom, good}, nil
	}

	result, err := f.sweep.Tick(ctx, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Errors != 1 {
		t.Errorf("errors = %d, want 1", result.Errors)
	}
	if result.Transitions != 1 {
		t.Errorf("transitions = %d, want 1 (good item must still advance)", result.Transitions)
	}

	request, _ := f.requestUC.GetRequest(ctx, "req-good", "acc-1")
	if request.Status != domain.StatusInProgress {
		t.Errorf("req-good status = %s, want in_progress", request.Status)
	}
}

func TestSweepUseCase_ExpiresDueAccounts(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	yesterday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	f.seedAccount("acc-due", 40, "+14155550100", &yesterday)
	f.seedAccount("acc-fresh", 40, "+14155550101", nil)

	result, err := f.sweep.Tick(ctx, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Expirations != 1 {
		t.Fatalf("expirations = %d, want 1", result.Expirations)
	}

	balance, _ := f.ledger.Balance(ctx, "acc-due")
	if balance != 0 {
		t.Errorf("expired balance = %d, want 0", balance)
	}
	balance, _ = f.ledger.Balance(ctx, "acc-fresh")
	if balance != 40 {
		t.Errorf("fresh balance = %d, want 40", balance)
	}

	sent := f.sink.Sent()
	if len(sent) != 1 {
		t.Fatalf("%d notifications, want 1", len(sent))
	}
	if sent[0].Message != "40 credits on your account have expired." {
		t.Errorf("message = %q", sent[0].Message)
	}

	// Next sweep: already expired, nothing more happens.
	result, _ = f.sweep.Tick(ctx, today)
	if result.Expirations != 0 {
		t.Errorf("second sweep expirations = %d, want 0", result.Expirations)
	}
	if got := len(f.sink.Sent()); got != 1 {
		t.Errorf("%d notifications after second sweep, want 1", got)
	}
}

func TestSweepUseCase_ExpiryNotificationUsesExpiredAmount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	yesterday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	account := f.seedAccount("acc-due", 40, "+14155550100", &yesterday)

	// The listing hands out a snapshot whose balance is already stale; the
	// notification must carry the amount the expiry actually removed.
	stale := *account
	stale.Balance = 99
	f.accounts.ListExpiryDueFunc = func(ctx context.Context, today time.Time) ([]*domain.Account, error) {
		return []*domain.Account{&stale}, nil
	}

	result, err := f.sweep.Tick(ctx, today)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Expirations != 1 {
		t.Fatalf("expirations = %d, want 1", result.Expirations)
	}

	sent := f.sink.Sent()
	if len(sent) != 1 {
		t.Fatalf("%d notifications, want 1", len(sent))
	}
	if sent[0].Message != "40 credits on your account have expired." {
		t.Errorf("message = %q, want the expired amount", sent[0].Message)
	}
}

func TestSweepUseCase_NotificationFailureDoesNotAffectState(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.seedAccount("acc-1", 10, "+14155550100", nil)

	t0 := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	f.seedRequest("req-1", "acc-1", domain.StatusPending, t0.Add(-2*time.Minute))

	f.sink.SendFunc = func(ctx context.Context, contact, message string) error {
		return errors.New("webhook down")
	}

	result, err := f.sweep.Tick(ctx, t0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Transitions != 1 {
		t.Errorf("transitions = %d, want 1", result.Transitions)
	}

	// The transition stays committed even though the send failed.
	request, _ := f.requestUC.GetRequest(ctx, "req-1", "acc-1")
	if request.Status != domain.StatusInProgress {
		t.Errorf("status = %s, want in_progress", request.Status)
	}
}
