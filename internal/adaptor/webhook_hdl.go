package adaptor

import (
	"encoding/json"
	"net/http"

	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/usecase"
	"rental-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type WebhookHandler struct {
	service usecase.SettlementService
	log     *zap.Logger
}

func NewWebhookHandler(service usecase.SettlementService, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		service: service,
		log:     log.With(zap.String("handler", "webhook")),
	}
}

// PaymentSettled handles POST /webhooks/payment (shared-secret protected).
// Idempotent: the gateway may replay the same callback.
func (h *WebhookHandler) PaymentSettled(w http.ResponseWriter, r *http.Request) {
	var req request.PaymentWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	if err := h.service.RecordSettlement(r.Context(), &req); err != nil {
		handleServiceError(w, h.log, err, "record settlement")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
