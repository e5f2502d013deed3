// internal/wire/wire.go
package wire

import (
	"context"
	"net/http"
	"time"

	"rental-marketplace/internal/adaptor"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/gateway"
	"rental-marketplace/internal/usecase"
	"rental-marketplace/pkg/middleware"
	"rental-marketplace/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App menyimpan semua dependencies
type App struct {
	Router  *chi.Mux
	Service *usecase.Service
}

// Wiring menginisialisasi semua dependencies
func Wiring(
	repo *repository.Repository,
	config *utils.Config,
	notifier gateway.Notifier,
	dispatcher gateway.PayoutDispatcher,
	logger *zap.Logger,
) *App {
	// Initialize services dan handlers
	service := usecase.NewService(repo, config, notifier, dispatcher, logger)
	handler := adaptor.NewHandler(service, logger)

	// Setup router
	router := setupRouter(handler, config, logger)

	return &App{
		Router:  router,
		Service: service,
	}
}

// setupRouter konfigurasi Chi router
func setupRouter(
	handler *adaptor.Handler,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireBooking(r, handler.Booking, config, logger)
	wireWallet(r, handler.Wallet, config, logger)
	wirePayout(r, handler.Payout, config, logger)
	wireCancellation(r, handler.Cancellation, config, logger)
	wireListing(r, handler.Listing, config, logger)
	wireWebhook(r, handler.Webhook, config, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}

// StartSweepers runs the periodic maintenance loop: expire stale pending
// holds and complete bookings past checkout. Stops when ctx is cancelled.
func (a *App) StartSweepers(ctx context.Context, config *utils.Config, logger *zap.Logger) {
	interval := time.Duration(config.Booking.SweepInterval) * time.Minute
	if interval <= 0 {
		interval = 10 * time.Minute
	}

	go func() {
		log := logger.With(zap.String("worker", "sweeper"))
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Info("Sweeper stopped")
				return
			case <-ticker.C:
				if _, err := a.Service.Booking.ExpireStaleHolds(ctx); err != nil {
					log.Error("Hold expiry sweep failed", zap.Error(err))
				}
				if _, err := a.Service.Booking.CompleteElapsed(ctx); err != nil {
					log.Error("Completion sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
