package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditdesk/internal/adapter/http/dto"
	"github.com/iho/creditdesk/internal/domain"
	"github.com/iho/creditdesk/internal/usecase"
)

// RequestService defines the behavior needed by RequestHandler.
type RequestService interface {
	Submit(ctx context.Context, input usecase.SubmitInput) (*domain.ServiceRequest, error)
	Cancel(ctx context.Context, requestID, accountID string) (*domain.ServiceRequest, error)
	GetRequest(ctx context.Context, requestID, accountID string) (*domain.ServiceRequest, error)
	ListRequests(ctx context.Context, input usecase.ListRequestsInput) (*usecase.RequestList, error)
}

// RequestHandler handles service request HTTP requests. All routes are
// nested under the owning account, so ownership is part of the path.
type RequestHandler struct {
	requestUC RequestService
}

// NewRequestHandler creates a new RequestHandler.
func NewRequestHandler(requestUC RequestService) *RequestHandler {
	return &RequestHandler{requestUC: requestUC}
}

// Submit submits a new service request, debiting the service's cost.
func (h *RequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	var req dto.SubmitRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	request, err := h.requestUC.Submit(r.Context(), req.ToUseCaseInput(accountID))
	if err != nil {
		writeError(w, mapDomainError(err), "failed to submit request", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RequestFromDomain(request))
}

// List lists the account's requests with status counts.
func (h *RequestHandler) List(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")

	list, err := h.requestUC.ListRequests(r.Context(), usecase.ListRequestsInput{
		AccountID: accountID,
		Limit:     parseIntQuery(r, "limit", 20),
		Offset:    parseIntQuery(r, "offset", 0),
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list requests", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestListFromUseCase(list))
}

// Get retrieves one of the account's requests.
func (h *RequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	requestID := chi.URLParam(r, "requestID")

	request, err := h.requestUC.GetRequest(r.Context(), requestID, accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(request))
}

// Cancel cancels a pending request.
func (h *RequestHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	requestID := chi.URLParam(r, "requestID")

	request, err := h.requestUC.Cancel(r.Context(), requestID, accountID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to cancel request", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.RequestFromDomain(request))
}
