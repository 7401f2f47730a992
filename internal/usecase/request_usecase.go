package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/infrastructure/metrics"
)

// RequestUseCase owns service requests and their status. Submission debits
// the ledger and creates the request in one database transaction; status
// changes go through compare-and-set updates so each transition commits at
// most once.
type RequestUseCase struct {
	txManager   TransactionManager
	requestRepo RequestRepository
	accountRepo AccountRepository
	ledger      *LedgerUseCase
	idGen       IDGenerator
	costs       map[string]int64
	policy      domain.TransitionPolicy
	sink        NotificationSink
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewRequestUseCase creates a new RequestUseCase.
func NewRequestUseCase(
	txManager TransactionManager,
	requestRepo RequestRepository,
	accountRepo AccountRepository,
	ledger *LedgerUseCase,
	idGen IDGenerator,
	costs map[string]int64,
	policy domain.TransitionPolicy,
	sink NotificationSink,
	logger zerolog.Logger,
) *RequestUseCase {
	return &RequestUseCase{
		txManager:   txManager,
		requestRepo: requestRepo,
		accountRepo: accountRepo,
		ledger:      ledger,
		idGen:       idGen,
		costs:       costs,
		policy:      policy,
		sink:        sink,
		logger:      logger,
	}
}

// WithMetrics configures instrumentation.
func (uc *RequestUseCase) WithMetrics(m *metrics.Metrics) *RequestUseCase {
	uc.metrics = m
	return uc
}

// SubmitInput represents input for submitting a service request.
type SubmitInput struct {
	AccountID   string
	ServiceType string
	Title       string
	Description string
}

// Submit debits the service's credit cost and creates a pending request.
// Debit and request row commit together; an insufficient balance leaves no
// trace of either.
func (uc *RequestUseCase) Submit(ctx context.Context, input SubmitInput) (*domain.ServiceRequest, error) {
	if err := domain.ValidateRequestInput(input.ServiceType, input.Title, input.Description); err != nil {
		return nil, err
	}

	cost, ok := uc.costs[input.ServiceType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownServiceType, input.ServiceType)
	}

	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	_, err = uc.ledger.DebitTx(ctx, tx, DebitInput{
		AccountID:   input.AccountID,
		Amount:      cost,
		Kind:        domain.KindUse,
		Description: fmt.Sprintf("Used %d credits for %s request: %s", cost, capitalize(input.ServiceType), input.Title),
	})
	if err != nil {
		return nil, err
	}

	request := &domain.ServiceRequest{
		ID:          uc.idGen.Generate(),
		AccountID:   input.AccountID,
		ServiceType: input.ServiceType,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.StatusPending,
		CreatedAt:   time.Now().UTC(),
	}

	if err := uc.requestRepo.Create(ctx, tx, request); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.RequestsSubmitted.Inc()
	}

	return request, nil
}

// Cancel moves a pending request to cancelled. Only the owning account may
// cancel, only from pending: an in-progress request is not cancellable and
// a terminal request reads as not found, so a repeated cancel cannot fire a
// second notification. Credits are not refunded.
func (uc *RequestUseCase) Cancel(ctx context.Context, requestID, accountID string) (*domain.ServiceRequest, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	request, err := uc.requestRepo.GetByIDForUpdate(ctx, tx, requestID)
	if err != nil {
		return nil, err
	}

	if request.AccountID != accountID {
		return nil, domain.ErrForbidden
	}

	switch request.Status {
	case domain.StatusPending:
		// cancellable
	case domain.StatusInProgress:
		return nil, domain.ErrRequestNotCancellable
	default:
		return nil, domain.ErrRequestNotFound
	}

	updated, err := uc.requestRepo.UpdateStatus(ctx, tx, request.ID, domain.StatusPending, domain.StatusCancelled)
	if err != nil {
		return nil, err
	}
	if !updated {
		return nil, domain.ErrRequestNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	request.Status = domain.StatusCancelled
	if uc.metrics != nil {
		uc.metrics.RequestsCancelled.Inc()
	}
	uc.notify(ctx, request.AccountID, fmt.Sprintf("Your request '%s' has been cancelled.", request.Title))

	return request, nil
}

// GetRequest retrieves a request by ID, enforcing ownership.
func (uc *RequestUseCase) GetRequest(ctx context.Context, requestID, accountID string) (*domain.ServiceRequest, error) {
	request, err := uc.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.AccountID != accountID {
		return nil, domain.ErrForbidden
	}
	return request, nil
}

// ListRequestsInput represents input for listing an account's requests.
type ListRequestsInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// RequestList is a page of requests plus per-status counts.
type RequestList struct {
	Requests []*domain.ServiceRequest
	Counts   map[domain.RequestStatus]int64
}

// ListRequests lists an account's requests newest-first with a status
// summary.
func (uc *RequestUseCase) ListRequests(ctx context.Context, input ListRequestsInput) (*RequestList, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	requests, err := uc.requestRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, err
	}

	counts, err := uc.requestRepo.CountByStatus(ctx, input.AccountID)
	if err != nil {
		return nil, err
	}

	return &RequestList{Requests: requests, Counts: counts}, nil
}

// DueTransition pairs a request with the status the policy says it should
// hold now.
type DueTransition struct {
	Request    *domain.ServiceRequest
	NextStatus domain.RequestStatus
}

// DueForTransition returns every non-terminal request whose policy status
// differs from its current one, given now.
func (uc *RequestUseCase) DueForTransition(ctx context.Context, now time.Time) ([]DueTransition, error) {
	open, err := uc.requestRepo.ListOpen(ctx)
	if err != nil {
		return nil, err
	}

	var due []DueTransition
	for _, request := range open {
		next := uc.policy.Next(request.Status, request.Age(now))
		if next != request.Status {
			due = append(due, DueTransition{Request: request, NextStatus: next})
		}
	}

	return due, nil
}

// Advance commits a single transition. The compare-and-set on the current
// status means a request advanced or cancelled since it was read fails with
// not found instead of double-firing.
func (uc *RequestUseCase) Advance(ctx context.Context, requestID string, from, to domain.RequestStatus) error {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	updated, err := uc.requestRepo.UpdateStatus(ctx, tx, requestID, from, to)
	if err != nil {
		return err
	}
	if !updated {
		return domain.ErrRequestNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.RequestTransitions.WithLabelValues(string(to)).Inc()
	}

	return nil
}

// notify sends a best-effort notification to the account's contact channel.
// Runs only after the state change is committed; failures are logged and
// dropped, never retried at this level.
func (uc *RequestUseCase) notify(ctx context.Context, accountID, message string) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		uc.logger.Warn().Err(err).Str("account_id", accountID).Msg("notification skipped: account lookup failed")
		return
	}
	if account.Contact == "" {
		return
	}

	if err := uc.sink.Send(ctx, account.Contact, message); err != nil {
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

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
