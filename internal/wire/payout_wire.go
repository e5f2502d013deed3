package wire

import (
	"rental-marketplace/internal/adaptor"
	"rental-marketplace/pkg/middleware"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wirePayout(
	r chi.Router,
	payoutHandler *adaptor.PayoutHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))

		// POST /api/withdrawals - Reserve funds for withdrawal
		r.Post("/api/withdrawals", payoutHandler.RequestWithdrawal)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/withdrawals", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/withdrawals - Approval queue (admin)
		r.Get("/", payoutHandler.PendingWithdrawals)

		// PUT /api/admin/withdrawals/{id}/approve - Debit and dispatch (admin)
		r.Put("/{id}/approve", payoutHandler.ApproveWithdrawal)

		// PUT /api/admin/withdrawals/{id}/decline - Release reservation (admin)
		r.Put("/{id}/decline", payoutHandler.DeclineWithdrawal)
	})

	r.Route("/api/admin/payouts", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/payouts/failed - Remediation queue (admin)
		r.Get("/failed", payoutHandler.FailedPayouts)
	})
}
