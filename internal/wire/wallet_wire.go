package wire

import (
	"rental-marketplace/internal/adaptor"
	"rental-marketplace/pkg/middleware"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireWallet(
	r chi.Router,
	walletHandler *adaptor.WalletHandler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))

		// GET /api/wallet - Derived balance plus reserved amount
		r.Get("/api/wallet", walletHandler.GetWallet)

		// GET /api/wallet/transactions - Own ledger history
		r.Get("/api/wallet/transactions", walletHandler.GetTransactions)
	})

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/rewards", func(r chi.Router) {
		r.Use(middleware.Auth(config.JWT.Secret, log))
		r.Use(middleware.Admin(log))

		// POST /api/admin/rewards - Credit a promotional reward (admin)
		r.Post("/", walletHandler.GrantReward)
	})
}
