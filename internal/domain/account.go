package domain

import (
	"time"
)

// Account owns a credit balance and, optionally, an expiry date for those
// credits. Balance is the authoritative value; the transaction log is an
// audit trail it can always be recomputed from, never a second write path.
type Account struct {
	ID         string
	Name       string
	Contact    string
	Balance    int64
	ExpiryDate *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateDebit checks if the account can be debited by amount.
func (a *Account) ValidateDebit(amount int64) error {
	if a.Balance-amount < 0 {
		return ErrInsufficientBalance
	}
	return nil
}

// ApplyDebit returns the balance after a debit.
func (a *Account) ApplyDebit(amount int64) int64 {
	return a.Balance - amount
}

// ApplyCredit returns the balance after a credit.
func (a *Account) ApplyCredit(amount int64) int64 {
	return a.Balance + amount
}

// ExpiryDue reports whether the account's credits are past their expiry
// date. Accounts without an expiry date or without credits are never due.
func (a *Account) ExpiryDue(today time.Time) bool {
	if a.ExpiryDate == nil || a.Balance <= 0 {
		return false
	}
	return DateOf(today).After(DateOf(*a.ExpiryDate))
}

// DateOf truncates t to a calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
