package dto

import (
	"time"

	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// AccountResponse represents an account.
type AccountResponse struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Contact    string     `json:"contact,omitempty"`
	Balance    int64      `json:"balance"`
	ExpiryDate *string    `json:"expiry_date,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// AccountFromDomain converts a domain account.
func AccountFromDomain(account *domain.Account) AccountResponse {
	return AccountResponse{
		ID:         account.ID,
		Name:       account.Name,
		Contact:    account.Contact,
		Balance:    account.Balance,
		ExpiryDate: formatDate(account.ExpiryDate),
		CreatedAt:  account.CreatedAt,
		UpdatedAt:  account.UpdatedAt,
	}
}

// AccountsFromDomain converts a slice of domain accounts.
func AccountsFromDomain(accounts []*domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, account := range accounts {
		out[i] = AccountFromDomain(account)
	}
	return out
}

// ListAccountsResponse represents a page of accounts.
type ListAccountsResponse struct {
	Accounts []AccountResponse `json:"accounts"`
	Total    int64             `json:"total"`
}

// OverviewResponse represents the account dashboard.
type OverviewResponse struct {
	Account           AccountResponse `json:"account"`
	AvailableCredits  int64           `json:"available_credits"`
	ExpiryDate        *string         `json:"expiry_date,omitempty"`
	CreditsUsedTotal  int64           `json:"credits_used_total"`
	PendingRequests   int64           `json:"pending_requests"`
	CompletedRequests int64           `json:"completed_requests"`
}

// OverviewFromUseCase converts a use case overview.
func OverviewFromUseCase(o *usecase.Overview) OverviewResponse {
	return OverviewResponse{
		Account:           AccountFromDomain(o.Account),
		AvailableCredits:  o.AvailableCredits,
		ExpiryDate:        formatDate(o.ExpiryDate),
		CreditsUsedTotal:  o.CreditsUsedTotal,
		PendingRequests:   o.PendingRequests,
		CompletedRequests: o.CompletedRequests,
	}
}

// TransactionResponse represents a credit transaction.
type TransactionResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	Kind        string    `json:"kind"`
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	ExpiryDate  *string   `json:"expiry_date,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TransactionFromDomain converts a domain transaction.
func TransactionFromDomain(txn *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          txn.ID,
		AccountID:   txn.AccountID,
		Kind:        string(txn.Kind),
		Description: txn.Description,
		Amount:      txn.Amount,
		ExpiryDate:  formatDate(txn.ExpiryDate),
		CreatedAt:   txn.CreatedAt,
	}
}

// HistoryResponse represents a page of transactions plus lifetime totals.
type HistoryResponse struct {
	Transactions   []TransactionResponse `json:"transactions"`
	TotalPurchased int64                 `json:"total_purchased"`
	TotalUsed      int64                 `json:"total_used"`
}

// HistoryFromUseCase converts a use case history.
func HistoryFromUseCase(h *usecase.History) HistoryResponse {
	txns := make([]TransactionResponse, len(h.Transactions))
	for i, txn := range h.Transactions {
		txns[i] = TransactionFromDomain(txn)
	}
	return HistoryResponse{
		Transactions:   txns,
		TotalPurchased: h.TotalPurchased,
		TotalUsed:      h.TotalUsed,
	}
}

// RequestResponse represents a service request.
type RequestResponse struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	ServiceType string    `json:"service_type"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      string    `json:"status"`
	StatusLabel string    `json:"status_label"`
	CreatedAt   time.Time `json:"created_at"`
}

// RequestFromDomain converts a domain service request.
func RequestFromDomain(request *domain.ServiceRequest) RequestResponse {
	return RequestResponse{
		ID:          request.ID,
		AccountID:   request.AccountID,
		ServiceType: request.ServiceType,
		Title:       request.Title,
		Description: request.Description,
		Status:      string(request.Status),
		StatusLabel: request.Status.Label(),
		CreatedAt:   request.CreatedAt,
	}
}

// ListRequestsResponse represents a page of requests with status counts.
type ListRequestsResponse struct {
	Requests []RequestResponse `json:"requests"`
	Counts   map[string]int64  `json:"counts"`
}

// RequestListFromUseCase converts a use case request list.
func RequestListFromUseCase(list *usecase.RequestList) ListRequestsResponse {
	requests := make([]RequestResponse, len(list.Requests))
	for i, request := range list.Requests {
		requests[i] = RequestFromDomain(request)
	}

	counts := make(map[string]int64, len(list.Counts))
	for status, count := range list.Counts {
		counts[string(status)] = count
	}

	return ListRequestsResponse{Requests: requests, Counts: counts}
}

// ReconciliationResponse reports one account's consistency check.
type ReconciliationResponse struct {
	AccountID       string    `json:"account_id"`
	StoredBalance   int64     `json:"stored_balance"`
	ComputedBalance int64     `json:"computed_balance"`
	Consistent      bool      `json:"consistent"`
	CheckedAt       time.Time `json:"checked_at"`
}

// ReconciliationFromUseCase converts a use case reconciliation result.
func ReconciliationFromUseCase(r *usecase.ReconciliationResult) ReconciliationResponse {
	return ReconciliationResponse{
		AccountID:       r.AccountID,
		StoredBalance:   r.StoredBalance,
		ComputedBalance: r.ComputedBalance,
		Consistent:      r.Consistent,
		CheckedAt:       r.CheckedAt,
	}
}

// SweepResponse summarizes a manually triggered sweep.
type SweepResponse struct {
	Skipped     bool `json:"skipped"`
	Transitions int  `json:"transitions"`
	Expirations int  `json:"expirations"`
	Errors      int  `json:"errors"`
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
