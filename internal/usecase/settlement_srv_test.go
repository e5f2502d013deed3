package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/dto/request"

	"github.com/google/uuid"
)

func TestRecordSettlement(t *testing.T) {
	repo, store := newTestRepo()
	srv := NewSettlementService(repo, nopLogger())

	hostID := seedUser(store, entity.UserRoleHost)
	guestID := seedUser(store, entity.UserRoleGuest)
	listingID := seedListing(store, hostID, 100)
	checkIn := DateOnly(time.Now().AddDate(0, 1, 0))
	bookingID := seedBooking(store, listingID, guestID, hostID,
		checkIn, checkIn.AddDate(0, 0, 2), 200, entity.BookingStatusPending)

	webhook := &request.PaymentWebhookRequest{
		BookingID:  bookingID.String(),
		Amount:     200,
		Status:     "settled",
		GatewayRef: "gw-abc-123",
	}

	if err := srv.RecordSettlement(context.Background(), webhook); err != nil {
		t.Fatalf("RecordSettlement: %v", err)
	}

	// Replays of the same gateway reference are dropped.
	if err := srv.RecordSettlement(context.Background(), webhook); err != nil {
		t.Fatalf("RecordSettlement replay: %v", err)
	}

	store.mu.Lock()
	count := len(store.settlements)
	store.mu.Unlock()
	if count != 1 {
		t.Errorf("settlements = %d, want 1 after replay", count)
	}

	t.Run("unknown booking rejected", func(t *testing.T) {
		err := srv.RecordSettlement(context.Background(), &request.PaymentWebhookRequest{
			BookingID:  uuid.New().String(),
			Amount:     200,
			Status:     "settled",
			GatewayRef: "gw-def-456",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("failed settlement does not enable confirmation", func(t *testing.T) {
		otherID := seedBooking(store, listingID, guestID, hostID,
			checkIn.AddDate(0, 1, 0), checkIn.AddDate(0, 1, 2), 200, entity.BookingStatusPending)
		err := srv.RecordSettlement(context.Background(), &request.PaymentWebhookRequest{
			BookingID:  otherID.String(),
			Amount:     200,
			Status:     "failed",
			GatewayRef: "gw-ghi-789",
		})
		if err != nil {
			t.Fatalf("RecordSettlement: %v", err)
		}

		settled, _ := repo.Settlement.FindSettledByBooking(context.Background(), otherID)
		if settled != nil {
			t.Error("failed settlement must not count as settled")
		}
	})
}
