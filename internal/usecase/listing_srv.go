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

// ListingService covers the financial side of listings: the publish fee a
// host pays from their wallet, admin activation, and the blocked-date
// calendar the availability resolver consults.
type ListingService interface {
	PayPublishFee(ctx context.Context, hostID, listingID string) (*response.ListingResponse, error)
	ApproveListing(ctx context.Context, listingID string) (*response.ListingResponse, error)
	CheckAvailability(ctx context.Context, listingID, checkIn, checkOut string) (*response.AvailabilityResponse, error)
	BlockDate(ctx context.Context, hostID, listingID string, req *request.BlockDateRequest) error
	UnblockDate(ctx context.Context, hostID, listingID string, req *request.BlockDateRequest) error
}

type listingService struct {
	repo         *repository.Repository
	wallet       WalletService
	availability AvailabilityService
	config       *utils.Config
	log          *zap.Logger
}

func NewListingService(repo *repository.Repository, wallet WalletService, availability AvailabilityService, config *utils.Config, log *zap.Logger) ListingService {
	return &listingService{
		repo:         repo,
		wallet:       wallet,
		availability: availability,
		config:       config,
		log:          log.With(zap.String("service", "listing")),
	}
}

// PayPublishFee debits the host wallet for the flat publish fee and marks the
// listing paid, atomically. An insufficient balance leaves both untouched.
func (s *listingService) PayPublishFee(ctx context.Context, hostID, listingID string) (*response.ListingResponse, error) {
	hostUUID, err := uuid.Parse(hostID)
	if err != nil {
		return nil, fmt.Errorf("invalid host ID format %s: %w", hostID, err)
	}

	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing ID format %s: %w", listingID, err)
	}

	listing, err := s.repo.Listing.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("pay publish fee: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
	}
	if listing.HostID != hostUUID {
		return nil, fmt.Errorf("listing %s does not belong to host: %w", listingID, ErrForbidden)
	}
	if listing.PublishFeePaid {
		return nil, fmt.Errorf("publish fee for listing %s: %w", listingID, ErrAlreadyTerminal)
	}

	fee := s.config.Fee.ListingPublishFee
	note := fmt.Sprintf("publish fee for listing %s", listingID)

	err = s.repo.Atomic.WithinTx(ctx, func(ctx context.Context) error {
		available, txErr := s.wallet.AvailableBalance(ctx, hostUUID)
		if txErr != nil {
			return txErr
		}
		if fee > available {
			return fmt.Errorf("publish fee %.2f, available %.2f: %w", fee, available, ErrInsufficientFunds)
		}

		debit, txErr := s.wallet.ApplyTransaction(ctx, hostUUID, entity.TransactionTypePayment, fee, nil)
		if txErr != nil {
			return txErr
		}
		if _, txErr = s.repo.Transaction.UpdateStatusIf(ctx, debit.ID, entity.TransactionStatusPending, entity.TransactionStatusCompleted, &note); txErr != nil {
			return txErr
		}

		return s.repo.Listing.MarkPublishFeePaid(ctx, id)
	})
	if err != nil {
		return nil, err
	}

	listing.PublishFeePaid = true

	s.log.Info("Listing publish fee paid",
		zap.String("listing_id", listingID),
		zap.String("host_id", hostID),
		zap.Float64("fee", fee),
	)

	resp := response.ListingToResponse(listing)
	return &resp, nil
}

// ApproveListing activates a paid listing. Unpaid listings cannot go live.
func (s *listingService) ApproveListing(ctx context.Context, listingID string) (*response.ListingResponse, error) {
	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing ID format %s: %w", listingID, err)
	}

	listing, err := s.repo.Listing.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("approve listing: %w", err)
	}
	if listing == nil {
		return nil, fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
	}
	if !listing.PublishFeePaid {
		return nil, fmt.Errorf("listing %s publish fee unpaid: %w", listingID, ErrPaymentNotSettled)
	}

	if err := s.repo.Listing.SetActive(ctx, id, true); err != nil {
		return nil, err
	}

	listing.Active = true

	s.log.Info("Listing approved", zap.String("listing_id", listingID))

	resp := response.ListingToResponse(listing)
	return &resp, nil
}

func (s *listingService) CheckAvailability(ctx context.Context, listingID, checkIn, checkOut string) (*response.AvailabilityResponse, error) {
	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, fmt.Errorf("invalid listing ID format %s: %w", listingID, err)
	}

	from, err := utils.ParseDate(checkIn)
	if err != nil {
		return nil, fmt.Errorf("invalid check-in date %s: %w", checkIn, err)
	}
	to, err := utils.ParseDate(checkOut)
	if err != nil {
		return nil, fmt.Errorf("invalid check-out date %s: %w", checkOut, err)
	}

	available, err := s.availability.IsAvailable(ctx, id, from, to, nil)
	if err != nil {
		return nil, err
	}

	return &response.AvailabilityResponse{
		ListingID: listingID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Available: available,
	}, nil
}

func (s *listingService) BlockDate(ctx context.Context, hostID, listingID string, req *request.BlockDateRequest) error {
	listing, date, err := s.ownedListingDate(ctx, hostID, listingID, req)
	if err != nil {
		return err
	}

	blocked := &entity.BlockedDate{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		ListingID: listing.ID,
		Date:      date,
	}

	if err := s.repo.Listing.AddBlockedDate(ctx, blocked); err != nil {
		return err
	}

	s.log.Info("Date blocked",
		zap.String("listing_id", listingID),
		zap.String("date", req.Date),
	)
	return nil
}

func (s *listingService) UnblockDate(ctx context.Context, hostID, listingID string, req *request.BlockDateRequest) error {
	listing, date, err := s.ownedListingDate(ctx, hostID, listingID, req)
	if err != nil {
		return err
	}

	if err := s.repo.Listing.RemoveBlockedDate(ctx, listing.ID, date); err != nil {
		return err
	}

	s.log.Info("Date unblocked",
		zap.String("listing_id", listingID),
		zap.String("date", req.Date),
	)
	return nil
}

func (s *listingService) ownedListingDate(ctx context.Context, hostID, listingID string, req *request.BlockDateRequest) (*entity.Listing, time.Time, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, time.Time{}, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	hostUUID, err := uuid.Parse(hostID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid host ID format %s: %w", hostID, err)
	}

	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid listing ID format %s: %w", listingID, err)
	}

	date, err := utils.ParseDate(req.Date)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("invalid date %s: %w", req.Date, err)
	}

	listing, err := s.repo.Listing.FindByID(ctx, id)
	if err != nil {
		return nil, time.Time{}, err
	}
	if listing == nil {
		return nil, time.Time{}, fmt.Errorf("listing %s: %w", listingID, ErrNotFound)
	}
	if listing.HostID != hostUUID {
		return nil, time.Time{}, fmt.Errorf("listing %s does not belong to host: %w", listingID, ErrForbidden)
	}

	return listing, DateOnly(date), nil
}
