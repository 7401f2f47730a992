package usecase

import (
	"context"
	"time"

	"github.com/iho/creditdesk/internal/domain"
)

// AccountRepository defines data access for accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByID(ctx context.Context, id string) (*domain.Account, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx Transaction, id string, balance int64, updatedAt time.Time) error
	UpdateExpiryDate(ctx context.Context, tx Transaction, id string, expiryDate time.Time, updatedAt time.Time) error
	ListExpiryDue(ctx context.Context, today time.Time) ([]*domain.Account, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Account, error)
}

// TransactionRepository defines data access for the append-only credit log.
type TransactionRepository interface {
	Create(ctx context.Context, tx Transaction, txn *domain.Transaction) error
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.Transaction, error)
	SumByAccount(ctx context.Context, accountID string) (int64, error)
	SumByAccountKind(ctx context.Context, accountID string, kind domain.TransactionKind) (int64, error)
}

// RequestRepository defines data access for service requests.
type RequestRepository interface {
	Create(ctx context.Context, tx Transaction, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.ServiceRequest, error)
	// UpdateStatus commits a status change only if the request still holds
	// the expected current status. It reports whether a row was updated.
	UpdateStatus(ctx context.Context, tx Transaction, id string, from, to domain.RequestStatus) (bool, error)
	ListOpen(ctx context.Context) ([]*domain.ServiceRequest, error)
	ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.ServiceRequest, error)
	CountByStatus(ctx context.Context, accountID string) (map[domain.RequestStatus]int64, error)
}

// NotificationSink delivers best-effort user notifications. Errors are for
// the caller to log and drop; delivery is never required for correctness.
type NotificationSink interface {
	Send(ctx context.Context, contact, message string) error
}

// Clock supplies the current time. Injected so sweep behavior is testable
// without real wall-clock delays.
type Clock interface {
	Now() time.Time
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation when the storage layer reports a transient
// failure, such as a deadlock between two row locks.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
