package usecase

import (
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/gateway"
	"rental-marketplace/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Availability AvailabilityService
	Wallet       WalletService
	Booking      BookingService
	Payout       PayoutService
	Cancellation CancellationService
	Listing      ListingService
	Settlement   SettlementService
}

func NewService(
	repo *repository.Repository,
	config *utils.Config,
	notifier gateway.Notifier,
	dispatcher gateway.PayoutDispatcher,
	log *zap.Logger,
) *Service {
	availability := NewAvailabilityService(repo, log)
	wallet := NewWalletService(repo, log)
	booking := NewBookingService(repo, availability, wallet, notifier, config, log)

	return &Service{
		Availability: availability,
		Wallet:       wallet,
		Booking:      booking,
		Payout:       NewPayoutService(repo, wallet, dispatcher, notifier, config, log),
		Cancellation: NewCancellationService(repo, booking, log),
		Listing:      NewListingService(repo, wallet, availability, config, log),
		Settlement:   NewSettlementService(repo, log),
	}
}
