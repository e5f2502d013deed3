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

type PayoutHandler struct {
	service usecase.PayoutService
	log     *zap.Logger
}

func NewPayoutHandler(service usecase.PayoutService, log *zap.Logger) *PayoutHandler {
	return &PayoutHandler{
		service: service,
		log:     log.With(zap.String("handler", "payout")),
	}
}

// RequestWithdrawal handles POST /api/withdrawals (protected)
func (h *PayoutHandler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.WithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	txn, err := h.service.RequestWithdrawal(r.Context(), userID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "request withdrawal")
		return
	}

	utils.ResponseCreated(w, "success", txn)
}

// ==================== ADMIN METHODS ====================

// PendingWithdrawals handles GET /api/admin/withdrawals (admin only)
func (h *PayoutHandler) PendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	txns, err := h.service.PendingWithdrawals(r.Context(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "list pending withdrawals")
		return
	}

	utils.ResponseSuccess(w, "success", txns)
}

// ApproveWithdrawal handles PUT /api/admin/withdrawals/{id}/approve (admin only)
func (h *PayoutHandler) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	txnID := chi.URLParam(r, "id")
	if txnID == "" {
		utils.ResponseBadRequest(w, "Withdrawal ID is required", nil)
		return
	}

	txn, err := h.service.ApproveWithdrawal(r.Context(), adminID.String(), txnID)
	if err != nil {
		handleServiceError(w, h.log, err, "approve withdrawal")
		return
	}

	utils.ResponseSuccess(w, "success", txn)
}

// DeclineWithdrawal handles PUT /api/admin/withdrawals/{id}/decline (admin only)
func (h *PayoutHandler) DeclineWithdrawal(w http.ResponseWriter, r *http.Request) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	txnID := chi.URLParam(r, "id")
	if txnID == "" {
		utils.ResponseBadRequest(w, "Withdrawal ID is required", nil)
		return
	}

	var req request.DeclineWithdrawalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	txn, err := h.service.DeclineWithdrawal(r.Context(), adminID.String(), txnID, &req)
	if err != nil {
		handleServiceError(w, h.log, err, "decline withdrawal")
		return
	}

	utils.ResponseSuccess(w, "success", txn)
}

// FailedPayouts handles GET /api/admin/payouts/failed (admin only)
func (h *PayoutHandler) FailedPayouts(w http.ResponseWriter, r *http.Request) {
	txns, err := h.service.FailedPayouts(r.Context())
	if err != nil {
		handleServiceError(w, h.log, err, "list failed payouts")
		return
	}

	utils.ResponseSuccess(w, "success", txns)
}
