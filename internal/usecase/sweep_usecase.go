package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/infrastructure/metrics"
)

// SweepUseCase performs one sweep: advance every due request, then expire
// credits on every account past its expiry date. A mutex keeps at most one
// sweep in flight; an overlapping tick is skipped, not queued.
type SweepUseCase struct {
	requests    *RequestUseCase
	ledger      *LedgerUseCase
	accountRepo AccountRepository
	sink        NotificationSink
	logger      zerolog.Logger
	metrics     *metrics.Metrics

	mu sync.Mutex
}

// NewSweepUseCase creates a new SweepUseCase.
func NewSweepUseCase(
	requests *RequestUseCase,
	ledger *LedgerUseCase,
	accountRepo AccountRepository,
	sink NotificationSink,
	logger zerolog.Logger,
) *SweepUseCase {
	return &SweepUseCase{
		requests:    requests,
		ledger:      ledger,
		accountRepo: accountRepo,
		sink:        sink,
		logger:      logger,
	}
}

// WithMetrics configures instrumentation for notification delivery.
func (uc *SweepUseCase) WithMetrics(m *metrics.Metrics) *SweepUseCase {
	uc.metrics = m
	return uc
}

// SweepResult summarizes one sweep.
type SweepResult struct {
	Skipped     bool
	Transitions int
	Expirations int
	Errors      int
}

// Tick runs one sweep against the single consistent now it is given.
// Per-item failures are counted and logged but never abort the rest of the
// due set.
func (uc *SweepUseCase) Tick(ctx context.Context, now time.Time) (SweepResult, error) {
	if !uc.mu.TryLock() {
		return SweepResult{Skipped: true}, nil
	}
	defer uc.mu.Unlock()

	now = now.UTC()

	var result SweepResult

	due, err := uc.requests.DueForTransition(ctx, now)
	if err != nil {
		return result, fmt.Errorf("querying due requests: %w", err)
	}

	for _, d := range due {
		if err := uc.requests.Advance(ctx, d.Request.ID, d.Request.Status, d.NextStatus); err != nil {
			result.Errors++
			uc.logger.Error().Err(err).
				Str("request_id", d.Request.ID).
				Str("next_status", string(d.NextStatus)).
				Msg("transition failed")
			continue
		}

		result.Transitions++
		uc.notifyTransition(ctx, d.Request, d.NextStatus)
	}

	expired, err := uc.expireDue(ctx, now, &result)
	if err != nil {
		return result, err
	}
	result.Expirations = expired

	return result, nil
}

// expireDue lazily expires credits on every account whose expiry date has
// passed. ExpireIfDue is idempotent, so an account swept twice in a race
// still loses its balance exactly once.
func (uc *SweepUseCase) expireDue(ctx context.Context, now time.Time, result *SweepResult) (int, error) {
	accounts, err := uc.accountRepo.ListExpiryDue(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("querying expiry-due accounts: %w", err)
	}

	expirations := 0
	for _, account := range accounts {
		amount, err := uc.ledger.ExpireIfDue(ctx, account.ID, now)
		if err != nil {
			result.Errors++
			uc.logger.Error().Err(err).Str("account_id", account.ID).Msg("expiry failed")
			continue
		}
		if amount == 0 {
			continue
		}

		// Report the amount the expiry actually removed, not the listing
		// snapshot: a credit or debit can land between the two reads.
		expirations++
		if account.Contact != "" {
			uc.send(ctx, account.ID, account.Contact,
				fmt.Sprintf("%d credits on your account have expired.", amount))
		}
	}

	return expirations, nil
}

func (uc *SweepUseCase) notifyTransition(ctx context.Context, request *domain.ServiceRequest, next domain.RequestStatus) {
	account, err := uc.accountRepo.GetByID(ctx, request.AccountID)
	if err != nil {
		uc.logger.Warn().Err(err).Str("account_id", request.AccountID).Msg("notification skipped: account lookup failed")
		return
	}
	if account.Contact == "" {
		return
	}

	var message string
	switch next {
	case domain.StatusInProgress:
		message = fmt.Sprintf("Your request '%s' is now In Progress.", request.Title)
	case domain.StatusCompleted:
		message = fmt.Sprintf("Your request '%s' has been Completed.", request.Title)
	default:
		message = fmt.Sprintf("Your request '%s' is now %s.", request.Title, next.Label())
	}

	uc.send(ctx, request.AccountID, account.Contact, message)
}

// send dispatches one best-effort notification after the underlying state
// change has committed. Failures are logged and dropped.
func (uc *SweepUseCase) send(ctx context.Context, accountID, contact, message string) {
	if err := uc.sink.Send(ctx, contact, message); err != nil {
		if uc.metrics != nil {
			uc.metrics.NotificationsFailed.Inc()
		}
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("notification failed")
		return
	}
	if uc.metrics != nil {
		uc.metrics.NotificationsSent.Inc()
	}
}
