package usecase

import (
	"context"
	"time"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/infrastructure/metrics"
)

// AccountUseCase handles account business logic.
type AccountUseCase struct {
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	requestRepo RequestRepository
	idGen       IDGenerator
	metrics     *metrics.Metrics
}

// NewAccountUseCase creates a new AccountUseCase.
func NewAccountUseCase(
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	requestRepo RequestRepository,
	idGen IDGenerator,
) *AccountUseCase {
	return &AccountUseCase{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		requestRepo: requestRepo,
		idGen:       idGen,
	}
}

// WithMetrics configures instrumentation.
func (uc *AccountUseCase) WithMetrics(m *metrics.Metrics) *AccountUseCase {
	uc.metrics = m
	return uc
}

// CreateAccountInput represents input for creating an account.
type CreateAccountInput struct {
	Name    string
	Contact string
}

// CreateAccount creates a new account with a zero balance.
func (uc *AccountUseCase) CreateAccount(ctx context.Context, input CreateAccountInput) (*domain.Account, error) {
	if err := domain.ValidateAccountInput(input.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	account := &domain.Account{
		ID:        uc.idGen.Generate(),
		Name:      input.Name,
		Contact:   input.Contact,
		Balance:   0,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := uc.accountRepo.Create(ctx, account); err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.AccountsCreated.Inc()
	}

	return account, nil
}

// GetAccount retrieves an account by ID.
func (uc *AccountUseCase) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	return uc.accountRepo.GetByID(ctx, id)
}

// ListAccountsInput represents input for listing accounts.
type ListAccountsInput struct {
	Limit  int
	Offset int
}

// ListAccounts lists accounts with pagination.
func (uc *AccountUseCase) ListAccounts(ctx context.Context, input ListAccountsInput) ([]*domain.Account, error) {
	limit, offset := clampPage(input.Limit, input.Offset)
	return uc.accountRepo.List(ctx, limit, offset)
}

// Overview is the dashboard view of an account. The aggregates are derived
// from the transaction log and request table on every read; no cached
// counters exist to drift out of sync.
type Overview struct {
	Account           *domain.Account
	AvailableCredits  int64
	ExpiryDate        *time.Time
	CreditsUsedTotal  int64
	PendingRequests   int64
	CompletedRequests int64
}

// GetOverview assembles the dashboard aggregates for an account.
func (uc *AccountUseCase) GetOverview(ctx context.Context, id string) (*Overview, error) {
	account, err := uc.accountRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	used, err := uc.txnRepo.SumByAccountKind(ctx, id, domain.KindUse)
	if err != nil {
		return nil, err
	}

	counts, err := uc.requestRepo.CountByStatus(ctx, id)
	if err != nil {
		return nil, err
	}

	return &Overview{
		Account:           account,
		AvailableCredits:  account.Balance,
		ExpiryDate:        account.ExpiryDate,
		CreditsUsedTotal:  -used,
		PendingRequests:   counts[domain.StatusPending],
		CompletedRequests: counts[domain.StatusCompleted],
	}, nil
}
