package adaptor

import (
	"encoding/json"
	"net/http"

	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/usecase"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CancellationHandler struct {
	service usecase.CancellationService
	log     *zap.Logger
}

func NewCancellationHandler(service usecase.CancellationService, log *zap.Logger) *CancellationHandler {
	return &CancellationHandler{
		service: service,
		log:     log.With(zap.String("handler", "cancellation")),
	}
}

// RequestCancellation handles POST /api/cancellation-requests (protected)
func (h *CancellationHandler) RequestCancellation(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CreateCancellationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	cr, err := h.service.RequestCancellation(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "request cancellation")
		return
	}

	utils.ResponseCreated(w, "success", cr)
}

// ==================== ADMIN METHODS ====================

// PendingRequests handles GET /api/admin/cancellation-requests (admin only)
func (h *CancellationHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	reqs, err := h.service.PendingRequests(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list pending cancellation requests")
		return
	}

	utils.ResponseSuccess(w, "success", reqs)
}

// ApproveRequest handles PUT /api/admin/cancellation-requests/{id}/approve (admin only)
func (h *CancellationHandler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, true, "approve cancellation request")
}

// RejectRequest handles PUT /api/admin/cancellation-requests/{id}/reject (admin only)
func (h *CancellationHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, false, "reject cancellation request")
}

func (h *CancellationHandler) review(w http.ResponseWriter, r *http.Request, approve bool, operation string) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	requestID := chi.URLParam(r, "id")
	if requestID == "" {
		utils.ResponseBadRequest(w, "Request ID is required", nil)
		return
	}

	// Notes are optional; an empty body is fine.
	var req request.ReviewCancellationRequest
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			utils.ResponseBadRequest(w, "Invalid request body", nil)
			return
		}
	}

	cr, err := h.service.ReviewCancellation(r.Context(), adminID.String(), requestID, approve, &req)
	if err != nil {
		handleServiceError(w, h.log, err, operation)
		return
	}

	utils.ResponseSuccess(w, "success", cr)
}
