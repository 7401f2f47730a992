package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/iho/creditdesk/internal/domain"
)

func TestAccount_ValidateDebit(t *testing.T) {
	account := &domain.Account{ID: "acc-1", Balance: 10}

	if err := account.ValidateDebit(10); err != nil {
		t.Errorf("debit of full balance should pass, got %v", err)
	}

	err := account.ValidateDebit(11)
	if !errors.Is(err, domain.ErrInsufficientBalance) {
		t.Errorf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestAccount_ApplyDebitCredit(t *testing.T) {
	account := &domain.Account{Balance: 40}

	if got := account.ApplyDebit(5); got != 35 {
		t.Errorf("ApplyDebit = %d, want 35", got)
	}
	if got := account.ApplyCredit(50); got != 90 {
		t.Errorf("ApplyCredit = %d, want 90", got)
	}
	// Apply helpers do not mutate the account.
	if account.Balance != 40 {
		t.Errorf("balance mutated to %d", account.Balance)
	}
}

func TestAccount_ExpiryDue(t *testing.T) {
	yesterday := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	today := time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		account domain.Account
		want    bool
	}{
		{"expired with balance", domain.Account{Balance: 40, ExpiryDate: &yesterday}, true},
		{"expired with zero balance", domain.Account{Balance: 0, ExpiryDate: &yesterday}, false},
		{"no expiry date", domain.Account{Balance: 40}, false},
		{"expiry is today", domain.Account{Balance: 40, ExpiryDate: &today}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.account.ExpiryDue(today); got != tt.want {
				t.Errorf("ExpiryDue = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDateOf(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	// 01:30 on Sep 1 in UTC+5 is still Aug 31 in UTC.
	local := time.Date(2026, 9, 1, 1, 30, 0, 0, loc)

	got := domain.DateOf(local)
	want := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf = %v, want %v", got, want)
	}
}
