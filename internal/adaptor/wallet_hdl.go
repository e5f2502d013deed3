package adaptor

import (
	"encoding/json"
	"net/http"

	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/usecase"
	"rental-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type WalletHandler struct {
	service usecase.WalletService
	log     *zap.Logger
}

func NewWalletHandler(service usecase.WalletService, log *zap.Logger) *WalletHandler {
	return &WalletHandler{
		service: service,
		log:     log.With(zap.String("handler", "wallet")),
	}
}

// GetWallet handles GET /api/wallet (protected)
func (h *WalletHandler) GetWallet(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	wallet, err := h.service.GetWallet(r.Context(), userID.String())
	if err != nil {
		handleServiceError(w, h.log, err, "get wallet")
		return
	}

	utils.ResponseSuccess(w, "success", wallet)
}

// GetTransactions handles GET /api/wallet/transactions (protected)
func (h *WalletHandler) GetTransactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}

	txns, err := h.service.GetUserTransactions(r.Context(), userID.String(), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get transactions")
		return
	}

	utils.ResponseSuccess(w, "success", txns)
}

// GrantReward handles POST /api/admin/rewards (admin only)
func (h *WalletHandler) GrantReward(w http.ResponseWriter, r *http.Request) {
	adminID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.GrantRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	txn, err := h.service.GrantReward(r.Context(), adminID.String(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "grant reward")
		return
	}

	utils.ResponseCreated(w, "success", txn)
}
