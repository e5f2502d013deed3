package usecase

import (
	"context"
	"fmt"
	"time"

	"rental-marketplace/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	// IsAvailable reports whether the listing is free for every night of
	// [checkIn, checkOut). Pure query, no side effects.
	IsAvailable(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time, excludeBookingID *uuid.UUID) (bool, error)
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

// DateOnly strips the time-of-day; bookings deal in calendar dates.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *availabilityService) IsAvailable(ctx context.Context, listingID uuid.UUID, checkIn, checkOut time.Time, excludeBookingID *uuid.UUID) (bool, error) {
	checkIn = DateOnly(checkIn)
	checkOut = DateOnly(checkOut)

	if !checkIn.Before(checkOut) {
		return false, fmt.Errorf("invalid date range: check-in %s must be before check-out %s",
			checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02"))
	}

	// Missing listing is plain unavailability, not an error.
	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		return false, fmt.Errorf("check availability: %w", err)
	}
	if listing == nil {
		return false, nil
	}

	// Host-blocked dates inside the range make it unavailable.
	blocked, err := s.repo.Listing.BlockedDatesBetween(ctx, listingID, checkIn, checkOut)
	if err != nil {
		return false, fmt.Errorf("check blocked dates: %w", err)
	}
	if len(blocked) > 0 {
		return false, nil
	}

	// Two ranges [a,b) and [c,d) overlap iff a < d and c < b. Pending
	// bookings hold their dates only until the hold TTL lapses.
	overlapping, err := s.repo.Booking.CountOverlapping(ctx, listingID, checkIn, checkOut, excludeBookingID, time.Now())
	if err != nil {
		return false, fmt.Errorf("check overlapping bookings: %w", err)
	}

	return overlapping == 0, nil
}
