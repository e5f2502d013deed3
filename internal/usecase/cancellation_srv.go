package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/dto/response"
	"rental-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CancellationService is the admin-mediated path: a guest files a request,
// an admin approves or rejects it. Approval runs the same refund pipeline as
// a direct guest cancel, with the guest as the policy actor.
type CancellationService interface {
	RequestCancellation(ctx context.Context, guestID string, req *request.CreateCancellationRequest) (*response.CancellationRequestResponse, error)
	ReviewCancellation(ctx context.Context, adminID, requestID string, approve bool, req *request.ReviewCancellationRequest) (*response.CancellationRequestResponse, error)
	PendingRequests(ctx context.Context, req *request.PaginatedRequest) ([]response.CancellationRequestResponse, error)
}

type cancellationService struct {
	repo    *repository.Repository
	booking BookingService
	log     *zap.Logger
}

func NewCancellationService(repo *repository.Repository, booking BookingService, log *zap.Logger) CancellationService {
	return &cancellationService{
		repo:    repo,
		booking: booking,
		log:     log.With(zap.String("service", "cancellation")),
	}
}

func (s *cancellationService) RequestCancellation(ctx context.Context, guestID string, req *request.CreateCancellationRequest) (*response.CancellationRequestResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	guestUUID, err := uuid.Parse(guestID)
	if err != nil {
		return nil, fmt.Errorf("invalid guest ID format %s: %w", guestID, err)
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", req.BookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("request cancellation: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", req.BookingID, ErrNotFound)
	}
	if booking.GuestID != guestUUID {
		return nil, fmt.Errorf("booking %s does not belong to guest: %w", req.BookingID, ErrForbidden)
	}
	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("booking %s is %s: %w", req.BookingID, string(booking.Status), ErrAlreadyTerminal)
	}

	now := time.Now()
	cr := &entity.CancellationRequest{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		BookingID: bookingID,
		GuestID:   guestUUID,
		HostID:    booking.HostID,
		Reason:    req.Reason,
		Status:    entity.CancellationStatusPending,
	}

	if err := s.repo.Cancellation.Create(ctx, cr); err != nil {
		return nil, err
	}

	s.log.Info("Cancellation requested",
		zap.String("request_id", cr.ID.String()),
		zap.String("booking_id", req.BookingID),
		zap.String("guest_id", guestID),
	)

	resp := response.CancellationRequestToResponse(cr)
	return &resp, nil
}

// ReviewCancellation resolves the request exactly once. The compare-and-set
// on the request row happens before the cancellation runs, so two admins
// reviewing the same request cannot both trigger a refund.
func (s *cancellationService) ReviewCancellation(ctx context.Context, adminID, requestID string, approve bool, req *request.ReviewCancellationRequest) (*response.CancellationRequestResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	adminUUID, err := uuid.Parse(adminID)
	if err != nil {
		return nil, fmt.Errorf("invalid admin ID format %s: %w", adminID, err)
	}

	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, fmt.Errorf("invalid request ID format %s: %w", requestID, err)
	}

	cr, err := s.repo.Cancellation.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("review cancellation: %w", err)
	}
	if cr == nil {
		return nil, fmt.Errorf("cancellation request %s: %w", requestID, ErrNotFound)
	}
	if cr.Status != entity.CancellationStatusPending {
		return nil, fmt.Errorf("cancellation request %s is %s: %w", requestID, string(cr.Status), ErrAlreadyTerminal)
	}

	to := entity.CancellationStatusRejected
	if approve {
		to = entity.CancellationStatusApproved
	}

	ok, err := s.repo.Cancellation.ResolveIf(ctx, id, to, adminUUID, req.Notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("cancellation request %s: %w", requestID, ErrAlreadyTerminal)
	}

	cr.Status = to
	cr.ReviewedBy = &adminUUID
	cr.ReviewNotes = req.Notes

	if approve {
		// The guest filed the request, so the guest's refund tiers apply.
		if _, err := s.booking.CancelAs(ctx, cr.BookingID, entity.CancelledByGuest, time.Now()); err != nil {
			s.log.Error("Approved cancellation could not cancel booking",
				zap.Error(err),
				zap.String("request_id", requestID),
				zap.String("booking_id", cr.BookingID.String()),
			)
			return nil, fmt.Errorf("apply approved cancellation for booking %s: %w", cr.BookingID.String(), err)
		}
	}

	s.log.Info("Cancellation request reviewed",
		zap.String("request_id", requestID),
		zap.String("admin_id", adminID),
		zap.String("resolution", string(to)),
	)

	resp := response.CancellationRequestToResponse(cr)
	return &resp, nil
}

func (s *cancellationService) PendingRequests(ctx context.Context, req *request.PaginatedRequest) ([]response.CancellationRequestResponse, error) {
	reqs, err := s.repo.Cancellation.FindByStatus(ctx, entity.CancellationStatusPending, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list pending cancellation requests: %w", err)
	}

	responses := make([]response.CancellationRequestResponse, len(reqs))
	for i, cr := range reqs {
		responses[i] = response.CancellationRequestToResponse(cr)
	}
	return responses, nil
}
