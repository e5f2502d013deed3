package wire

import (
	"rental-marketplace/internal/adaptor"
	"rental-marketplace/pkg/middleware"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireCancellation(
	r chi.Router,
	cancellationHandler *adaptor.CancellationHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))

		// POST /api/cancellation-requests - Guest files for admin review
		r.Post("/api/cancellation-requests", cancellationHandler.RequestCancellation)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/cancellation-requests", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/cancellation-requests - Review queue (admin)
		r.Get("/", cancellationHandler.PendingRequests)

		// PUT /api/admin/cancellation-requests/{id}/approve - Cancel with refund (admin)
		r.Put("/{id}/approve", cancellationHandler.ApproveRequest)

		// PUT /api/admin/cancellation-requests/{id}/reject - Leave booking as is (admin)
		r.Put("/{id}/reject", cancellationHandler.RejectRequest)
	})
}
