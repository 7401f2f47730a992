package integration

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/creditdesk/internal/adapter/repository/postgres"
	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
	"github.com/iho/creditdesk/tests/testutil"
)

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

// recordingSink captures notifications for assertions.
type recordingSink struct {
	mu       sync.Mutex
	messages []string
	fail     bool
}

func (s *recordingSink) Send(ctx context.Context, contact, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return context.DeadlineExceeded
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSink) Messages() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.messages...)
}

// stack wires the full use case layer against a real database.
type stack struct {
	accountRepo *postgres.AccountRepository
	ledger      *usecase.LedgerUseCase
	accounts    *usecase.AccountUseCase
	requests    *usecase.RequestUseCase
	sweep       *usecase.SweepUseCase
	recon       *usecase.ReconciliationUseCase
	sink        *recordingSink
}

func newStack(db *testutil.TestDB) *stack {
	pool := db.Pool

	txManager := postgres.NewTxManager(pool)
	accountRepo := postgres.NewAccountRepository(pool)
	txnRepo := postgres.NewTransactionRepository(pool)
	requestRepo := postgres.NewRequestRepository(pool)
	idGen := postgres.NewULIDGenerator()

	sink := &recordingSink{}
	log := zerolog.Nop()

	ledgerUC := usecase.NewLedgerUseCase(txManager, accountRepo, txnRepo, idGen).
		WithRetrier(postgres.NewRetrier(log))
	accountUC := usecase.NewAccountUseCase(accountRepo, txnRepo, requestRepo, idGen)
	requestUC := usecase.NewRequestUseCase(
		txManager, requestRepo, accountRepo, ledgerUC, idGen,
		testCosts, testPolicy, sink, log,
	)
	sweepUC := usecase.NewSweepUseCase(requestUC, ledgerUC, accountRepo, sink, log)
	reconUC := usecase.NewReconciliationUseCase(accountRepo, txnRepo)

	return &stack{
		accountRepo: accountRepo,
		ledger:      ledgerUC,
		accounts:    accountUC,
		requests:    requestUC,
		sweep:       sweepUC,
		recon:       reconUC,
		sink:        sink,
	}
}
