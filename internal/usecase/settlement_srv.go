package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/dto/request"
	"rental-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettlementService ingests payment gateway webhooks. Settlements are
// append-only and deduplicated on (booking, gateway_ref), so a replayed
// webhook is a no-op.
type SettlementService interface {
	RecordSettlement(ctx context.Context, req *request.PaymentWebhookRequest) error
}

type settlementService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewSettlementService(repo *repository.Repository, log *zap.Logger) SettlementService {
	return &settlementService{
		repo: repo,
		log:  log.With(zap.String("service", "settlement")),
	}
}

func (s *settlementService) RecordSettlement(ctx context.Context, req *request.PaymentWebhookRequest) error {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", req.BookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return fmt.Errorf("record settlement: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", req.BookingID, ErrNotFound)
	}

	status := entity.SettlementStatusSettled
	if req.Status == "failed" {
		status = entity.SettlementStatusFailed
	}

	gatewayRef := req.GatewayRef
	now := time.Now()
	settlement := &entity.PaymentSettlement{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID:  bookingID,
		Amount:     utils.RoundMoney(req.Amount),
		Status:     status,
		GatewayRef: &gatewayRef,
	}

	if err := s.repo.Settlement.Create(ctx, settlement); err != nil {
		return err
	}

	s.log.Info("Payment settlement recorded",
		zap.String("booking_id", req.BookingID),
		zap.String("gateway_ref", req.GatewayRef),
		zap.String("status", string(status)),
		zap.Float64("amount", settlement.Amount),
	)

	return nil
}
