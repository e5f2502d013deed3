package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/dto/request"
	"rental-marketplace/internal/gateway"

	"github.com/google/uuid"
)

func newCancellationEnv(t *testing.T) (CancellationService, WalletService, *fakeStore) {
	t.Helper()
	repo, store := newTestRepo()
	log := nopLogger()
	wallet := NewWalletService(repo, log)
	availability := NewAvailabilityService(repo, log)
	booking := NewBookingService(repo, availability, wallet, gateway.NopNotifier{}, testConfig(), log)
	cancellation := NewCancellationService(repo, booking, log)
	return cancellation, wallet, store
}

func TestReviewCancellation_ApprovalRefundsGuest(t *testing.T) {
	cancellation, wallet, store := newCancellationEnv(t)

	hostID := seedUser(store, entity.UserRoleHost)
	guestID := seedUser(store, entity.UserRoleGuest)
	adminID := seedUser(store, entity.UserRoleAdmin)
	listingID := seedListing(store, hostID, 250)

	// Confirmed, paid booking 100h out: full refund tier for the guest.
	checkIn := DateOnly(time.Now().Add(100 * time.Hour))
	bookingID := seedBooking(store, listingID, guestID, hostID,
		checkIn, checkIn.AddDate(0, 0, 4), 1000, entity.BookingStatusConfirmed)
	seedSettlement(store, bookingID, 1000)

	cr, err := cancellation.RequestCancellation(context.Background(), guestID.String(), &request.CreateCancellationRequest{
		BookingID: bookingID.String(),
		Reason:    "travel plans changed",
	})
	if err != nil {
		t.Fatalf("RequestCancellation: %v", err)
	}
	if cr.Status != entity.CancellationStatusPending {
		t.Errorf("status = %s, want pending", cr.Status)
	}

	reviewed, err := cancellation.ReviewCancellation(context.Background(), adminID.String(), cr.ID, true, &request.ReviewCancellationRequest{})
	if err != nil {
		t.Fatalf("ReviewCancellation: %v", err)
	}
	if reviewed.Status != entity.CancellationStatusApproved {
		t.Errorf("status = %s, want approved", reviewed.Status)
	}
	if reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != adminID.String() {
		t.Errorf("ReviewedBy = %v, want %s", reviewed.ReviewedBy, adminID)
	}

	store.mu.Lock()
	bookingStatus := store.bookings[bookingID].Status
	store.mu.Unlock()
	if bookingStatus != entity.BookingStatusCancelled {
		t.Errorf("booking status = %s, want cancelled", bookingStatus)
	}

	// Guest tier applies: 100h out means 100%.
	guestBalance, _ := wallet.Balance(context.Background(), guestID)
	if guestBalance != 1000 {
		t.Errorf("guest balance = %v, want 1000", guestBalance)
	}

	t.Run("second review rejected", func(t *testing.T) {
		_, err := cancellation.ReviewCancellation(context.Background(), adminID.String(), cr.ID, true, &request.ReviewCancellationRequest{})
		if !errors.Is(err, ErrAlreadyTerminal) {
			t.Errorf("err = %v, want ErrAlreadyTerminal", err)
		}
		// No double refund.
		guestBalance, _ := wallet.Balance(context.Background(), guestID)
		if guestBalance != 1000 {
			t.Errorf("guest balance after retry = %v, want 1000", guestBalance)
		}
	})
}

func TestReviewCancellation_RejectionLeavesBooking(t *testing.T) {
	cancellation, wallet, store := newCancellationEnv(t)

	hostID := seedUser(store, entity.UserRoleHost)
	guestID := seedUser(store, entity.UserRoleGuest)
	adminID := seedUser(store, entity.UserRoleAdmin)
	listingID := seedListing(store, hostID, 250)

	checkIn := DateOnly(time.Now().Add(100 * time.Hour))
	bookingID := seedBooking(store, listingID, guestID, hostID,
		checkIn, checkIn.AddDate(0, 0, 4), 1000, entity.BookingStatusConfirmed)
	seedSettlement(store, bookingID, 1000)

	cr, err := cancellation.RequestCancellation(context.Background(), guestID.String(), &request.CreateCancellationRequest{
		BookingID: bookingID.String(),
		Reason:    "second thoughts",
	})
	if err != nil {
		t.Fatalf("RequestCancellation: %v", err)
	}

	notes := "policy: non-refundable rate"
	reviewed, err := cancellation.ReviewCancellation(context.Background(), adminID.String(), cr.ID, false, &request.ReviewCancellationRequest{Notes: &notes})
	if err != nil {
		t.Fatalf("ReviewCancellation: %v", err)
	}
	if reviewed.Status != entity.CancellationStatusRejected {
		t.Errorf("status = %s, want rejected", reviewed.Status)
	}

	store.mu.Lock()
	bookingStatus := store.bookings[bookingID].Status
	store.mu.Unlock()
	if bookingStatus != entity.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want confirmed untouched", bookingStatus)
	}

	guestBalance, _ := wallet.Balance(context.Background(), guestID)
	if guestBalance != 0 {
		t.Errorf("guest balance = %v, want 0", guestBalance)
	}
}

func TestRequestCancellation_Guards(t *testing.T) {
	cancellation, _, store := newCancellationEnv(t)

	hostID := seedUser(store, entity.UserRoleHost)
	guestID := seedUser(store, entity.UserRoleGuest)
	otherID := seedUser(store, entity.UserRoleGuest)
	listingID := seedListing(store, hostID, 250)

	checkIn := DateOnly(time.Now().Add(100 * time.Hour))
	bookingID := seedBooking(store, listingID, guestID, hostID,
		checkIn, checkIn.AddDate(0, 0, 4), 1000, entity.BookingStatusConfirmed)

	t.Run("unknown booking", func(t *testing.T) {
		_, err := cancellation.RequestCancellation(context.Background(), guestID.String(), &request.CreateCancellationRequest{
			BookingID: uuid.New().String(),
			Reason:    "whatever",
		})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("other guest's booking", func(t *testing.T) {
		_, err := cancellation.RequestCancellation(context.Background(), otherID.String(), &request.CreateCancellationRequest{
			BookingID: bookingID.String(),
			Reason:    "not mine",
		})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	t.Run("terminal booking", func(t *testing.T) {
		doneID := seedBooking(store, listingID, guestID, hostID,
			checkIn.AddDate(0, 1, 0), checkIn.AddDate(0, 1, 3), 750, entity.BookingStatusCompleted)
		_, err := cancellation.RequestCancellation(context.Background(), guestID.String(), &request.CreateCancellationRequest{
			BookingID: doneID.String(),
			Reason:    "after the fact",
		})
		if !errors.Is(err, ErrAlreadyTerminal) {
			t.Errorf("err = %v, want ErrAlreadyTerminal", err)
		}
	})
}
