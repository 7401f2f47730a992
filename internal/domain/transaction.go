package domain

import (
	"time"
)

// TransactionKind is the business reason for a ledger movement.
type TransactionKind string

const (
	KindPurchase TransactionKind = "purchase"
	KindUse      TransactionKind = "use"
	KindExpiry   TransactionKind = "expiry"
)

// IsValid checks if the kind is one of the known transaction kinds.
func (k TransactionKind) IsValid() bool {
	switch k {
	case KindPurchase, KindUse, KindExpiry:
		return true
	}
	return false
}

// Transaction is a single immutable row in an account's credit log.
// Amount is signed: positive for purchases, negative for use and expiry.
// The log is append-only; rows are never updated or deleted.
type Transaction struct {
	ID          string
	AccountID   string
	Kind        TransactionKind
	Description string
	Amount      int64
	ExpiryDate  *time.Time
	CreatedAt   time.Time
}
