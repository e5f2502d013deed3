package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/data/repository"
	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/dto/response"
	"rental-marketplace/internal/gateway"
	"rental-marketplace/internal/queue"
	"rental-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingService owns the booking state machine: pending -> confirmed ->
// completed, with cancellation allowed from pending and confirmed. All
// transitions are guarded by compare-and-set on status; two racing calls
// cannot both succeed.
type BookingService interface {
	CreateBooking(ctx context.Context, guestID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, guestID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)

	ConfirmBooking(ctx context.Context, callerID, role, bookingID string) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, callerID, role, bookingID string, cancelledAt time.Time) (*response.CancellationOutcomeResponse, error)
	CancelAs(ctx context.Context, bookingID uuid.UUID, actor entity.CancelActor, cancelledAt time.Time) (*response.CancellationOutcomeResponse, error)

	// Sweepers, driven by the background ticker.
	CompleteElapsed(ctx context.Context) (int, error)
	ExpireStaleHolds(ctx context.Context) (int64, error)
}

type bookingService struct {
	repo         *repository.Repository
	availability AvailabilityService
	wallet       WalletService
	notifier     gateway.Notifier
	config       *utils.Config
	log          *zap.Logger
}

func NewBookingService(
	repo *repository.Repository,
	availability AvailabilityService,
	wallet WalletService,
	notifier gateway.Notifier,
	config *utils.Config,
	log *zap.Logger,
) BookingService {
	return &bookingService{
		repo:         repo,
		availability: availability,
		wallet:       wallet,
		notifier:     notifier,
		config:       config,
		log:          log.With(zap.String("service", "booking")),
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, guestID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	guestUUID, err := uuid.Parse(guestID)
	if err != nil {
		return nil, fmt.Errorf("invalid guest ID format %s: %w", guestID, err)
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing ID format %s: %w", req.ListingID, err)
	}

	checkIn, err := utils.ParseDate(req.CheckIn)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in date %s: %w", req.CheckIn, err)
	}
	checkOut, err := utils.ParseDate(req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("invalid check-out date %s: %w", req.CheckOut, err)
	}

	if !checkIn.Before(checkOut) {
		return nil, fmt.Errorf("invalid date range: check-in must be before check-out")
	}
	if checkIn.Before(DateOnly(time.Now())) {
		return nil, fmt.Errorf("cannot book for past dates")
	}

	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if listing == nil || !listing.Active {
		return nil, fmt.Errorf("listing %s: %w", req.ListingID, ErrNotFound)
	}
	if listing.HostID == guestUUID {
		return nil, fmt.Errorf("cannot book own listing: %w", ErrForbidden)
	}

	available, err := s.availability.IsAvailable(ctx, listingID, checkIn, checkOut, nil)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if !available {
		return nil, fmt.Errorf("listing %s not available for %s to %s: %w",
			req.ListingID, req.CheckIn, req.CheckOut, ErrAvailabilityConflict)
	}

	nights := int(checkOut.Sub(checkIn).Hours() / 24)
	totalPrice := utils.RoundMoney(listing.NightlyPrice * float64(nights))

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Reference:     utils.GenerateBookingRef(),
		ListingID:     listingID,
		GuestID:       guestUUID,
		HostID:        listing.HostID,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		GuestCount:    req.GuestCount,
		TotalPrice:    totalPrice,
		Status:        entity.BookingStatusPending,
		HoldExpiresAt: now.Add(time.Duration(s.config.Booking.HoldTTLHours) * time.Hour),
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("reference", booking.Reference),
		zap.String("guest_id", guestID),
		zap.String("listing_id", req.ListingID),
		zap.Float64("total_price", totalPrice),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, guestID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	guestUUID, err := uuid.Parse(guestID)
	if err != nil {
		return nil, fmt.Errorf("invalid guest ID format %s: %w", guestID, err)
	}

	bookings, err := s.repo.Booking.FindByGuestID(ctx, guestUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("guest_id", guestID),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByGuestID(ctx, guestUUID)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = response.BookingToResponse(booking)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// ConfirmBooking settles a pending booking: it verifies the gateway reported
// the payment settled, then writes the host and platform deposit credits and
// flips the booking to confirmed in a single transaction. If any ledger write
// fails the whole confirmation rolls back and the booking stays pending.
func (s *bookingService) ConfirmBooking(ctx context.Context, callerID, role, bookingID string) (*response.BookingResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	if role != "admin" && booking.HostID.String() != callerID {
		return nil, fmt.Errorf("only the host may confirm booking %s: %w", bookingID, ErrForbidden)
	}

	if booking.Status != entity.BookingStatusPending {
		return nil, fmt.Errorf("booking %s is %s: %w", bookingID, string(booking.Status), ErrAlreadyTerminal)
	}

	// A lapsed hold no longer blocks overlapping bookings, so the dates may
	// already belong to someone else. The row flips to expired here instead
	// of waiting for the sweeper.
	if time.Now().After(booking.HoldExpiresAt) {
		if _, expErr := s.repo.Booking.UpdateStatusIf(ctx, id, entity.BookingStatusPending, entity.BookingStatusExpired); expErr != nil {
			return nil, fmt.Errorf("expire lapsed booking %s: %w", bookingID, expErr)
		}
		return nil, fmt.Errorf("booking %s hold expired: %w", bookingID, ErrAlreadyTerminal)
	}

	settlement, err := s.repo.Settlement.FindSettledByBooking(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}
	if settlement == nil || settlement.Amount < booking.TotalPrice {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrPaymentNotSettled)
	}

	feeRate := s.config.Fee.PlatformRate
	hostNet := utils.RoundMoney(booking.TotalPrice * (1 - feeRate))
	platformFee := utils.RoundMoney(booking.TotalPrice - hostNet)

	err = s.repo.Atomic.WithinTx(ctx, func(ctx context.Context) error {
		ok, txErr := s.repo.Booking.UpdateStatusIf(ctx, id, entity.BookingStatusPending, entity.BookingStatusConfirmed)
		if txErr != nil {
			return txErr
		}
		if !ok {
			return fmt.Errorf("booking %s: %w", bookingID, ErrAlreadyTerminal)
		}

		// Both halves of the split are written pending and flipped completed
		// together with the status change. A failure on either half aborts
		// the transaction, so no partial split can ever land.
		for _, credit := range []struct {
			userID uuid.UUID
			amount float64
		}{
			{booking.HostID, hostNet},
			{entity.PlatformAccountID, platformFee},
		} {
			txn, txErr := s.wallet.ApplyTransaction(ctx, credit.userID, entity.TransactionTypeDeposit, credit.amount, &id)
			if txErr != nil {
				return fmt.Errorf("record payment split: %w: %w", ErrLedgerConsistency, txErr)
			}
			if _, txErr = s.wallet.ConfirmTransaction(ctx, txn.ID); txErr != nil {
				return fmt.Errorf("complete payment split: %w: %w", ErrLedgerConsistency, txErr)
			}
		}

		return nil
	})
	if err != nil {
		s.log.Error("Booking confirmation failed",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return nil, err
	}

	booking.Status = entity.BookingStatusConfirmed

	s.log.Info("Booking confirmed",
		zap.String("booking_id", bookingID),
		zap.String("reference", booking.Reference),
		zap.Float64("host_net", hostNet),
		zap.Float64("platform_fee", platformFee),
	)

	s.notifier.Notify(ctx, queue.EventBookingConfirmed, queue.BookingEvent{
		BookingID:  bookingID,
		Reference:  booking.Reference,
		GuestID:    booking.GuestID.String(),
		HostID:     booking.HostID.String(),
		TotalPrice: booking.TotalPrice,
		Status:     string(booking.Status),
		OccurredAt: time.Now(),
	})

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, callerID, role, bookingID string, cancelledAt time.Time) (*response.CancellationOutcomeResponse, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	var actor entity.CancelActor
	switch {
	case booking.GuestID.String() == callerID:
		actor = entity.CancelledByGuest
	case booking.HostID.String() == callerID:
		actor = entity.CancelledByHost
	case role == "admin":
		actor = entity.CancelledByAdmin
	default:
		return nil, fmt.Errorf("not allowed to cancel booking %s: %w", bookingID, ErrForbidden)
	}

	return s.CancelAs(ctx, id, actor, cancelledAt)
}

// CancelAs runs the refund path: policy evaluation, refund credit, and the
// proportional reversal of any prior split, all atomic with the status
// change. Host-initiated cancellations additionally record a strike and
// apply the escalation outcome.
func (s *bookingService) CancelAs(ctx context.Context, bookingID uuid.UUID, actor entity.CancelActor, cancelledAt time.Time) (*response.CancellationOutcomeResponse, error) {
	booking, err := s.repo.Booking.FindByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID.String(), ErrNotFound)
	}

	if booking.Status.IsTerminal() {
		return nil, fmt.Errorf("booking %s is %s: %w", bookingID.String(), string(booking.Status), ErrAlreadyTerminal)
	}

	eval := EvaluateRefund(booking, cancelledAt, actor)

	// A refund only moves wallet money when the guest's payment actually
	// settled; an unpaid pending booking cancels with no ledger effect.
	settlement, err := s.repo.Settlement.FindSettledByBooking(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	fromStatus := booking.Status
	feeRate := s.config.Fee.PlatformRate

	err = s.repo.Atomic.WithinTx(ctx, func(ctx context.Context) error {
		ok, txErr := s.repo.Booking.MarkCancelledIf(ctx, bookingID, fromStatus, actor)
		if txErr != nil {
			return txErr
		}
		if !ok {
			return fmt.Errorf("booking %s: %w", bookingID.String(), ErrAlreadyTerminal)
		}

		if eval.Amount > 0 && settlement != nil {
			note := fmt.Sprintf("cancellation refund (%s, %.0f%%)", string(actor), eval.Percentage*100)
			refund, txErr := s.wallet.ApplyTransaction(ctx, booking.GuestID, entity.TransactionTypeRefund, eval.Amount, &bookingID)
			if txErr != nil {
				return fmt.Errorf("record refund: %w: %w", ErrLedgerConsistency, txErr)
			}
			if _, txErr = s.repo.Transaction.UpdateStatusIf(ctx, refund.ID, entity.TransactionStatusPending, entity.TransactionStatusCompleted, &note); txErr != nil {
				return fmt.Errorf("complete refund: %w: %w", ErrLedgerConsistency, txErr)
			}

			// If the payment was already split, claw the refunded share back
			// from host and platform so the three-way sum stays unchanged.
			split, txErr := s.repo.Transaction.FindCompletedSplitByBooking(ctx, bookingID)
			if txErr != nil {
				return txErr
			}
			if len(split) > 0 {
				hostShare := utils.RoundMoney(eval.Amount * (1 - feeRate))
				platformShare := utils.RoundMoney(eval.Amount - hostShare)
				reversalNote := "cancellation reversal"

				for _, debit := range []struct {
					userID uuid.UUID
					amount float64
				}{
					{booking.HostID, hostShare},
					{entity.PlatformAccountID, platformShare},
				} {
					if debit.amount <= 0 {
						continue
					}
					reversal, rErr := s.wallet.ApplyTransaction(ctx, debit.userID, entity.TransactionTypePayment, debit.amount, &bookingID)
					if rErr != nil {
						return fmt.Errorf("record reversal: %w: %w", ErrLedgerConsistency, rErr)
					}
					if _, rErr = s.repo.Transaction.UpdateStatusIf(ctx, reversal.ID, entity.TransactionStatusPending, entity.TransactionStatusCompleted, &reversalNote); rErr != nil {
						return fmt.Errorf("complete reversal: %w: %w", ErrLedgerConsistency, rErr)
					}
				}
			}
		}

		if actor == entity.CancelledByHost {
			if txErr := s.recordHostStrike(ctx, booking, cancelledAt); txErr != nil {
				return txErr
			}
		}

		return nil
	})
	if err != nil {
		s.log.Error("Booking cancellation failed",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
		)
		return nil, err
	}

	booking.Status = entity.BookingStatusCancelled
	booking.CancelledBy = &actor

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID.String()),
		zap.String("cancelled_by", string(actor)),
		zap.Bool("refund_eligible", eval.Eligible),
		zap.Float64("refund_amount", eval.Amount),
	)

	s.notifier.Notify(ctx, queue.EventBookingCancelled, queue.CancellationEvent{
		BookingEvent: queue.BookingEvent{
			BookingID:  bookingID.String(),
			Reference:  booking.Reference,
			GuestID:    booking.GuestID.String(),
			HostID:     booking.HostID.String(),
			TotalPrice: booking.TotalPrice,
			Status:     string(booking.Status),
			OccurredAt: time.Now(),
		},
		CancelledBy:  string(actor),
		RefundAmount: eval.Amount,
	})

	return &response.CancellationOutcomeResponse{
		Booking:           response.BookingToResponse(booking),
		RefundEligible:    eval.Eligible,
		RefundPercentage:  eval.Percentage,
		RefundAmount:      eval.Amount,
		HoursUntilCheckIn: eval.HoursUntilCheckIn,
	}, nil
}

// recordHostStrike appends a strike and applies the escalation ladder based
// on the rolling 6-month count.
func (s *bookingService) recordHostStrike(ctx context.Context, booking *entity.Booking, now time.Time) error {
	strike := &entity.HostStrike{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		HostID:    booking.HostID,
		BookingID: booking.ID,
	}
	if err := s.repo.HostStrike.Create(ctx, strike); err != nil {
		return err
	}

	strikes, err := s.repo.HostStrike.CountByHostSince(ctx, booking.HostID, now.Add(-strikeWindow))
	if err != nil {
		return err
	}

	status, until := EscalationForStrikes(strikes, now)
	if status == entity.UserStatusActive {
		return nil
	}

	if err := s.repo.User.UpdateReliability(ctx, booking.HostID, status, until); err != nil {
		return err
	}

	s.log.Warn("Host reliability escalation applied",
		zap.String("host_id", booking.HostID.String()),
		zap.Int64("strikes", strikes),
		zap.String("status", string(status)),
	)

	return nil
}

// CompleteElapsed moves confirmed bookings whose checkout has passed to
// completed. No financial effect; money settled at confirmation.
func (s *bookingService) CompleteElapsed(ctx context.Context) (int, error) {
	now := time.Now()
	bookings, err := s.repo.Booking.FindElapsedConfirmed(ctx, now, 100)
	if err != nil {
		return 0, fmt.Errorf("complete elapsed bookings: %w", err)
	}

	completed := 0
	for _, booking := range bookings {
		ok, err := s.repo.Booking.UpdateStatusIf(ctx, booking.ID, entity.BookingStatusConfirmed, entity.BookingStatusCompleted)
		if err != nil {
			return completed, err
		}
		if !ok {
			continue // raced with a cancellation
		}
		completed++

		s.notifier.Notify(ctx, queue.EventBookingCompleted, queue.BookingEvent{
			BookingID:  booking.ID.String(),
			Reference:  booking.Reference,
			GuestID:    booking.GuestID.String(),
			HostID:     booking.HostID.String(),
			TotalPrice: booking.TotalPrice,
			Status:     string(entity.BookingStatusCompleted),
			OccurredAt: now,
		})
	}

	if completed > 0 {
		s.log.Info("Elapsed bookings completed", zap.Int("count", completed))
	}

	return completed, nil
}

// ExpireStaleHolds releases the date holds of pending bookings past their TTL.
func (s *bookingService) ExpireStaleHolds(ctx context.Context) (int64, error) {
	expired, err := s.repo.Booking.ExpireStaleHolds(ctx, time.Now())
	if err != nil {
		return 0, err
	}

	if expired > 0 {
		s.log.Info("Stale booking holds expired", zap.Int64("count", expired))
	}

	return expired, nil
}
