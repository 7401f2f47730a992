package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditdesk/internal/adapter/http/dto"
	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
)

// LedgerService defines the behavior needed by LedgerHandler.
type LedgerService interface {
	Credit(ctx context.Context, input usecase.CreditInput) (*domain.Transaction, error)
	Balance(ctx context.Context, accountID string) (int64, error)
	History(ctx context.Context, input usecase.HistoryInput) (*usecase.History, error)
}

// ReconciliationService defines the behavior needed for consistency checks.
type ReconciliationService interface {
	CheckAccount(ctx context.Context, accountID string) (*usecase.ReconciliationResult, error)
	CheckAll(ctx context.Context) ([]*usecase.ReconciliationResult, error)
}

// LedgerHandler handles credit purchase, history and consistency requests.
type LedgerHandler struct {
	ledgerUC     LedgerService
	reconUC      ReconciliationService
	expiryWindow time.Duration
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerUC LedgerService, reconUC ReconciliationService, expiryWindow time.Duration) *LedgerHandler {
	return &LedgerHandler{
		ledgerUC:     ledgerUC,
		reconUC:      reconUC,
		expiryWindow: expiryWindow,
	}
}

// Purchase credits an account with purchased credits.
func (h *LedgerHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	// A malformed expiry date falls back to the default window rather
	// than failing the purchase.
	expiry, ok := domain.ParseExpiryDate(req.ExpiryDate)
	if !ok {
		expiry = domain.DateOf(time.Now().UTC().Add(h.expiryWindow))
	}

	description := req.Description
	if description == "" {
		description = fmt.Sprintf("Purchased %d credits", req.Amount)
	}

	txn, err := h.ledgerUC.Credit(r.Context(), usecase.CreditInput{
		AccountID:   accountID,
		Amount:      req.Amount,
		Kind:        domain.KindPurchase,
		Description: description,
		ExpiryDate:  &expiry,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to purchase credits", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.TransactionFromDomain(txn))
}

// Balance returns the account's current credit balance.
func (h *LedgerHandler) Balance(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	balance, err := h.ledgerUC.Balance(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"balance": balance})
}

// History lists an account's transactions with lifetime totals.
func (h *LedgerHandler) History(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	history, err := h.ledgerUC.History(r.Context(), usecase.HistoryInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get history", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromUseCase(history))
}

// Consistency checks one account's balance against its transaction log.
func (h *LedgerHandler) Consistency(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	result, err := h.reconUC.CheckAccount(r.Context(), accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromUseCase(result))
}

// ConsistencyAll checks every account.
func (h *LedgerHandler) ConsistencyAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.reconUC.CheckAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	out := make([]dto.ReconciliationResponse, len(results))
	for i, result := range results {
		out[i] = dto.ReconciliationFromUseCase(result)
	}

	writeJSON(w, http.StatusOK, out)
}
