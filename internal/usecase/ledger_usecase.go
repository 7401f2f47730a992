package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/infrastructure/metrics"
)

// LedgerUseCase owns account balances and the append-only credit log.
// Every mutation runs inside one database transaction holding a row lock on
// the account, so the read-check-write sequence is atomic with respect to
// concurrent operations on the same account.
type LedgerUseCase struct {
	txManager   TransactionManager
	accountRepo AccountRepository
	txnRepo     TransactionRepository
	idGen       IDGenerator
	retrier     Retrier
	metrics     *metrics.Metrics
}

// NewLedgerUseCase creates a new LedgerUseCase.
func NewLedgerUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	txnRepo TransactionRepository,
	idGen IDGenerator,
) *LedgerUseCase {
	return &LedgerUseCase{
		txManager:   txManager,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		idGen:       idGen,
	}
}

// WithRetrier configures retries for transient storage failures on the
// mutating operations. Without one, failures surface to the caller directly.
func (uc *LedgerUseCase) WithRetrier(retrier Retrier) *LedgerUseCase {
	uc.retrier = retrier
	return uc
}

// WithMetrics configures instrumentation for the mutating operations.
func (uc *LedgerUseCase) WithMetrics(m *metrics.Metrics) *LedgerUseCase {
	uc.metrics = m
	return uc
}

func (uc *LedgerUseCase) withRetry(ctx context.Context, operation func() error) error {
	if uc.retrier == nil {
		return operation()
	}
	return uc.retrier.Retry(ctx, operation)
}

// CreditInput represents input for crediting an account.
type CreditInput struct {
	AccountID   string
	Amount      int64
	Kind        domain.TransactionKind
	Description string
	ExpiryDate  *time.Time
}

// Credit appends a positive transaction and increases the balance. For
// purchases it also sets or extends the account's expiry date.
func (uc *LedgerUseCase) Credit(ctx context.Context, input CreditInput) (*domain.Transaction, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}
	if !input.Kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", domain.ErrValidation, input.Kind)
	}

	var txn *domain.Transaction
	err := uc.withRetry(ctx, func() error {
		var err error
		txn, err = uc.credit(ctx, input)
		return err
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.LedgerErrors.WithLabelValues("credit").Inc()
		}
		return nil, err
	}

	if uc.metrics != nil && input.Kind == domain.KindPurchase {
		uc.metrics.CreditsPurchased.Add(float64(input.Amount))
	}

	return txn, nil
}

func (uc *LedgerUseCase) credit(ctx context.Context, input CreditInput) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		AccountID:   account.ID,
		Kind:        input.Kind,
		Description: input.Description,
		Amount:      input.Amount,
		ExpiryDate:  input.ExpiryDate,
		CreatedAt:   now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyCredit(input.Amount), now); err != nil {
		return nil, err
	}

	if input.Kind == domain.KindPurchase && input.ExpiryDate != nil {
		if err := uc.accountRepo.UpdateExpiryDate(ctx, tx, account.ID, *input.ExpiryDate, now); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// DebitInput represents input for debiting an account.
type DebitInput struct {
	AccountID   string
	Amount      int64
	Kind        domain.TransactionKind
	Description string
}

// Debit atomically checks the balance and decrements it, appending a
// negative transaction. Fails with domain.ErrInsufficientBalance without
// mutating anything when the balance does not cover the amount.
func (uc *LedgerUseCase) Debit(ctx context.Context, input DebitInput) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := uc.withRetry(ctx, func() error {
		var err error
		txn, err = uc.debit(ctx, input)
		return err
	})
	if err != nil {
		if uc.metrics != nil {
			if errors.Is(err, domain.ErrInsufficientBalance) {
				uc.metrics.DebitsRejected.Inc()
			} else {
				uc.metrics.LedgerErrors.WithLabelValues("debit").Inc()
			}
		}
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.CreditsUsed.Add(float64(input.Amount))
	}

	return txn, nil
}

func (uc *LedgerUseCase) debit(ctx context.Context, input DebitInput) (*domain.Transaction, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	txn, err := uc.DebitTx(ctx, tx, input)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return txn, nil
}

// DebitTx performs a debit inside a caller-owned transaction. Request
// submission uses it so the debit and the request row commit together.
func (uc *LedgerUseCase) DebitTx(ctx context.Context, tx Transaction, input DebitInput) (*domain.Transaction, error) {
	if input.Amount <= 0 {
		return nil, domain.ErrInvalidAmount
	}

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, input.AccountID)
	if err != nil {
		return nil, err
	}

	if err := account.ValidateDebit(input.Amount); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		AccountID:   account.ID,
		Kind:        input.Kind,
		Description: input.Description,
		Amount:      -input.Amount,
		CreatedAt:   now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return nil, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, account.ApplyDebit(input.Amount), now); err != nil {
		return nil, err
	}

	return txn, nil
}

// ExpireIfDue zeroes the balance and writes one expiry transaction for the
// full remaining amount when the account's credits are past their expiry
// date. It returns the amount expired, zero when nothing was due. Safe to
// call repeatedly: once the balance is zero it is a no-op.
func (uc *LedgerUseCase) ExpireIfDue(ctx context.Context, accountID string, today time.Time) (int64, error) {
	var amount int64
	err := uc.withRetry(ctx, func() error {
		var err error
		amount, err = uc.expireIfDue(ctx, accountID, today)
		return err
	})
	if err != nil {
		if uc.metrics != nil {
			uc.metrics.LedgerErrors.WithLabelValues("expiry").Inc()
		}
		return 0, err
	}

	if uc.metrics != nil && amount > 0 {
		uc.metrics.CreditsExpired.Add(float64(amount))
	}

	return amount, nil
}

// expireIfDue returns the amount expired, zero when nothing was due.
func (uc *LedgerUseCase) expireIfDue(ctx context.Context, accountID string, today time.Time) (int64, error) {
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	account, err := uc.accountRepo.GetByIDForUpdate(ctx, tx, accountID)
	if err != nil {
		return 0, err
	}

	if !account.ExpiryDue(today) {
		return 0, nil
	}

	now := time.Now().UTC()
	expired := account.Balance

	txn := &domain.Transaction{
		ID:          uc.idGen.Generate(),
		AccountID:   account.ID,
		Kind:        domain.KindExpiry,
		Description: fmt.Sprintf("%d credits expired on %s", expired, account.ExpiryDate.Format("2006-01-02")),
		Amount:      -expired,
		ExpiryDate:  account.ExpiryDate,
		CreatedAt:   now,
	}

	if err := uc.txnRepo.Create(ctx, tx, txn); err != nil {
		return 0, err
	}

	if err := uc.accountRepo.UpdateBalance(ctx, tx, account.ID, 0, now); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return expired, nil
}

// Balance returns the stored, authoritative balance.
func (uc *LedgerUseCase) Balance(ctx context.Context, accountID string) (int64, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// HistoryInput represents input for listing an account's credit history.
type HistoryInput struct {
	AccountID string
	Limit     int
	Offset    int
}

// History holds a page of transactions plus lifetime totals.
type History struct {
	Transactions   []*domain.Transaction
	TotalPurchased int64
	TotalUsed      int64
}

// History lists transactions newest-first with totals purchased and used.
func (uc *LedgerUseCase) History(ctx context.Context, input HistoryInput) (*History, error) {
	limit, offset := clampPage(input.Limit, input.Offset)

	if _, err := uc.accountRepo.GetByID(ctx, input.AccountID); err != nil {
		return nil, err
	}

	txns, err := uc.txnRepo.ListByAccount(ctx, input.AccountID, limit, offset)
	if err != nil {
		return nil, err
	}

	purchased, err := uc.txnRepo.SumByAccountKind(ctx, input.AccountID, domain.KindPurchase)
	if err != nil {
		return nil, err
	}

	used, err := uc.txnRepo.SumByAccountKind(ctx, input.AccountID, domain.KindUse)
	if err != nil {
		return nil, err
	}

	return &History{
		Transactions:   txns,
		TotalPurchased: purchased,
		TotalUsed:      -used,
	}, nil
}
