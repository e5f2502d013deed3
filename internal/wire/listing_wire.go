package wire

import (
	"rental-marketplace/internal/adaptor"
	"rental-marketplace/pkg/middleware"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireListing(
	r chi.Router,
	listingHandler *adaptor.ListingHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/listings/{id}/availability - Date range availability (public)
	r.Get("/api/listings/{id}/availability", listingHandler.CheckAvailability)

	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))

		// POST /api/listings/{id}/publish-fee - Host pays from wallet
		r.Post("/api/listings/{id}/publish-fee", listingHandler.PayPublishFee)

		// POST /api/listings/{id}/blocked-dates - Host blocks a date
		r.Post("/api/listings/{id}/blocked-dates", listingHandler.BlockDate)

		// DELETE /api/listings/{id}/blocked-dates - Host unblocks a date
		r.Delete("/api/listings/{id}/blocked-dates", listingHandler.UnblockDate)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/listings", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))
		r.Use(middleware.Admin(log))

		// PUT /api/admin/listings/{id}/approve - Activate a paid listing (admin)
		r.Put("/{id}/approve", listingHandler.ApproveListing)
	})
}
