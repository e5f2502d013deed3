package wire

import (
	"rental-marketplace/internal/adaptor"
	"rental-marketplace/pkg/middleware"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireWebhook(
	r chi.Router,
	webhookHandler *adaptor.WebhookHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// Gateway callbacks authenticate with the shared secret, not a user token.
	r.Group(func(r chi.Router) {
		r.Use(middleware.WebhookSecret(config.Webhook.SecretHash, log))

		// POST /api/webhooks/payment - Settlement signal from the payment gateway
		r.Post("/api/webhooks/payment", webhookHandler.PaymentSettled)
	})
}
