package usecase_test

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
	"github.com/iho/creditdesk/internal/usecase/mocks"
)

// fixture wires the full usecase stack over in-memory mocks.
type fixture struct {
	txm      *mocks.MockTxManager
	accounts *mocks.MockAccountRepository
	txns     *mocks.MockTransactionRepository
	requests *mocks.MockRequestRepository
	sink     *mocks.MockNotificationSink
	idGen    *mocks.MockIDGenerator

	ledger    *usecase.LedgerUseCase
	requestUC *usecase.RequestUseCase
	accountUC *usecase.AccountUseCase
	sweep     *usecase.SweepUseCase
	recon     *usecase.ReconciliationUseCase
}

var testCosts = map[string]int64{
	"logo":   5,
	"banner": 3,
	"social": 2,
	"edit":   4,
}

var testPolicy = domain.TransitionPolicy{
	ProgressAfter: time.Minute,
	CompleteAfter: 10 * time.Minute,
}

func newFixture() *fixture {
	f := &fixture{
		txm:      mocks.NewMockTxManager(),
		accounts: mocks.NewMockAccountRepository(),
		txns:     mocks.NewMockTransactionRepository(),
		requests: mocks.NewMockRequestRepository(),
		sink:     mocks.NewMockNotificationSink(),
		idGen:    mocks.NewMockIDGenerator(),
	}

	logger := zerolog.Nop()

	f.ledger = usecase.NewLedgerUseCase(f.txm, f.accounts, f.txns, f.idGen)
	f.requestUC = usecase.NewRequestUseCase(f.txm, f.requests, f.accounts, f.ledger, f.idGen, testCosts, testPolicy, f.sink, logger)
	f.accountUC = usecase.NewAccountUseCase(f.accounts, f.txns, f.requests, f.idGen)
	f.sweep = usecase.NewSweepUseCase(f.requestUC, f.ledger, f.accounts, f.sink, logger)
	f.recon = usecase.NewReconciliationUseCase(f.accounts, f.txns)

	return f
}

// seedAccount creates an account directly in the repository.
func (f *fixture) seedAccount(id string, balance int64, contact string, expiry *time.Time) *domain.Account {
	now := time.Now().UTC()
	account := &domain.Account{
		ID:         id,
		Name:       "Account " + id,
		Contact:    contact,
		Balance:    balance,
		ExpiryDate: expiry,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_ = f.accounts.Create(context.Background(), account)
	return account
}

// seedRequest creates a request directly in the repository.
func (f *fixture) seedRequest(id, accountID string, status domain.RequestStatus, createdAt time.Time) *domain.ServiceRequest {
	request := &domain.ServiceRequest{
		ID:          id,
		AccountID:   accountID,
		ServiceType: "logo",
		Title:       "Request " + id,
		Description: "seeded",
		Status:      status,
		CreatedAt:   createdAt,
	}
	_ = f.requests.Create(context.Background(), nil, request)
	return request
}
