package dto

import (
	"github.com/iho/creditdesk/internal/usecase"
)

// CreateAccountRequest represents a request to create an account.
type CreateAccountRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateAccountRequest) ToUseCaseInput() usecase.CreateAccountInput {
	return usecase.CreateAccountInput{
		Name:    r.Name,
		Contact: r.Contact,
	}
}

// PurchaseRequest represents a request to buy credits.
type PurchaseRequest struct {
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	// ExpiryDate accepts "2006-01-02" or "01/02/2006". Empty means the
	// configured default window from today.
	ExpiryDate string `json:"expiry_date,omitempty"`
}

// SubmitRequestRequest represents a request to submit a service request.
type SubmitRequestRequest struct {
	ServiceType string `json:"service_type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SubmitRequestRequest) ToUseCaseInput(accountID string) usecase.SubmitInput {
	return usecase.SubmitInput{
		AccountID:   accountID,
		ServiceType: r.ServiceType,
		Title:       r.Title,
		Description: r.Description,
	}
}
