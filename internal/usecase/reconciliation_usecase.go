package usecase

import (
	"context"
	"fmt"
	"time"
)

// ReconciliationUseCase cross-checks stored balances against the
// transaction log. Read-only: the stored balance stays authoritative and a
// mismatch is reported, never repaired through this path.
type ReconciliationUseCase struct {
	accountRepo AccountRepository
	txnRepo     TransactionRepository
}

// NewReconciliationUseCase creates a new ReconciliationUseCase.
func NewReconciliationUseCase(accountRepo AccountRepository, txnRepo TransactionRepository) *ReconciliationUseCase {
	return &ReconciliationUseCase{
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
	}
}

// ReconciliationResult reports one account's consistency check.
type ReconciliationResult struct {
	AccountID       string
	StoredBalance   int64
	ComputedBalance int64
	Consistent      bool
	CheckedAt       time.Time
}

// CheckAccount compares an account's stored balance with the sum of its
// transaction amounts.
func (uc *ReconciliationUseCase) CheckAccount(ctx context.Context, accountID string) (*ReconciliationResult, error) {
	account, err := uc.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	computed, err := uc.txnRepo.SumByAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}

	return &ReconciliationResult{
		AccountID:       accountID,
		StoredBalance:   account.Balance,
		ComputedBalance: computed,
		Consistent:      account.Balance == computed,
		CheckedAt:       time.Now().UTC(),
	}, nil
}

// CheckAll reconciles every account.
func (uc *ReconciliationUseCase) CheckAll(ctx context.Context) ([]*ReconciliationResult, error) {
	accounts, err := uc.accountRepo.List(ctx, MaxPageSize*100, 0)
	if err != nil {
		return nil, err
	}

	results := make([]*ReconciliationResult, 0, len(accounts))
	for _, account := range accounts {
		result, err := uc.CheckAccount(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("reconciling account %s: %w", account.ID, err)
		}
		results = append(results, result)
	}

	return results, nil
}
