package adaptor

import (
	"rental-marketplace/internal/usecase"

	"go.uber.org/zap"
)

type Handler struct {
	Booking      *BookingHandler
	Wallet       *WalletHandler
	Payout       *PayoutHandler
	Cancellation *CancellationHandler
	Listing      *ListingHandler
	Webhook      *WebhookHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Booking:      NewBookingHandler(service.Booking, log),
		Wallet:       NewWalletHandler(service.Wallet, log),
		Payout:       NewPayoutHandler(service.Payout, log),
		Cancellation: NewCancellationHandler(service.Cancellation, log),
		Listing:      NewListingHandler(service.Listing, log),
		Webhook:      NewWebhookHandler(service.Settlement, log),
	}
}
