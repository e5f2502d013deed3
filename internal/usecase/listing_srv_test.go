package usecase

import (
	"context"
	"errors"
	"testing"

	"rental-marketplace/internal/data/entity"
	"rental-marketplace/internal/dto/request"
)

func newListingEnv(t *testing.T) (ListingService, WalletService, *fakeStore) {
	t.Helper()
	repo, store := newTestRepo()
	log := nopLogger()
	wallet := NewWalletService(repo, log)
	availability := NewAvailabilityService(repo, log)
	listing := NewListingService(repo, wallet, availability, testConfig(), log)
	return listing, wallet, store
}

func TestPayPublishFee(t *testing.T) {
	listing, wallet, store := newListingEnv(t)

	hostID := seedUser(store, entity.UserRoleHost)
	listingID := seedListing(store, hostID, 100)
	store.mu.Lock()
	store.listings[listingID].PublishFeePaid = false
	store.listings[listingID].Active = false
	store.mu.Unlock()

	t.Run("insufficient balance", func(t *testing.T) {
		_, err := listing.PayPublishFee(context.Background(), hostID.String(), listingID.String())
		if !errors.Is(err, ErrInsufficientFunds) {
			t.Errorf("err = %v, want ErrInsufficientFunds", err)
		}
		store.mu.Lock()
		paid := store.listings[listingID].PublishFeePaid
		store.mu.Unlock()
		if paid {
			t.Error("fee must not be marked paid on rejection")
		}
	})

	fundWallet(t, wallet, hostID, 100)

	resp, err := listing.PayPublishFee(context.Background(), hostID.String(), listingID.String())
	if err != nil {
		t.Fatalf("PayPublishFee: %v", err)
	}
	if !resp.PublishFeePaid {
		t.Error("listing must be marked paid")
	}

	// Flat 25 fee debited.
	balance, _ := wallet.Balance(context.Background(), hostID)
	if balance != 75 {
		t.Errorf("balance = %v, want 75", balance)
	}

	t.Run("double payment rejected", func(t *testing.T) {
		_, err := listing.PayPublishFee(context.Background(), hostID.String(), listingID.String())
		if !errors.Is(err, ErrAlreadyTerminal) {
			t.Errorf("err = %v, want ErrAlreadyTerminal", err)
		}
		balance, _ := wallet.Balance(context.Background(), hostID)
		if balance != 75 {
			t.Errorf("balance = %v, want 75 unchanged", balance)
		}
	})
}

func TestApproveListing(t *testing.T) {
	listing, _, store := newListingEnv(t)

	hostID := seedUser(store, entity.UserRoleHost)
	listingID := seedListing(store, hostID, 100)
	store.mu.Lock()
	store.listings[listingID].PublishFeePaid = false
	store.listings[listingID].Active = false
	store.mu.Unlock()

	// Activation requires the fee to be paid first.
	_, err := listing.ApproveListing(context.Background(), listingID.String())
	if !errors.Is(err, ErrPaymentNotSettled) {
		t.Errorf("err = %v, want ErrPaymentNotSettled", err)
	}

	store.mu.Lock()
	store.listings[listingID].PublishFeePaid = true
	store.mu.Unlock()

	resp, err := listing.ApproveListing(context.Background(), listingID.String())
	if err != nil {
		t.Fatalf("ApproveListing: %v", err)
	}
	if !resp.Active {
		t.Error("listing must be active after approval")
	}
}

func TestBlockedDateManagement(t *testing.T) {
	listing, _, store := newListingEnv(t)

	hostID := seedUser(store, entity.UserRoleHost)
	otherID := seedUser(store, entity.UserRoleHost)
	listingID := seedListing(store, hostID, 100)

	req := &request.BlockDateRequest{Date: "2026-07-04"}

	t.Run("only the owner may block", func(t *testing.T) {
		err := listing.BlockDate(context.Background(), otherID.String(), listingID.String(), req)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})

	if err := listing.BlockDate(context.Background(), hostID.String(), listingID.String(), req); err != nil {
		t.Fatalf("BlockDate: %v", err)
	}
	// Blocking the same date again is idempotent.
	if err := listing.BlockDate(context.Background(), hostID.String(), listingID.String(), req); err != nil {
		t.Fatalf("BlockDate repeat: %v", err)
	}

	avail, err := listing.CheckAvailability(context.Background(), listingID.String(), "2026-07-03", "2026-07-06")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if avail.Available {
		t.Error("range spanning the blocked date must be unavailable")
	}

	if err := listing.UnblockDate(context.Background(), hostID.String(), listingID.String(), req); err != nil {
		t.Fatalf("UnblockDate: %v", err)
	}

	avail, err = listing.CheckAvailability(context.Background(), listingID.String(), "2026-07-03", "2026-07-06")
	if err != nil {
		t.Fatalf("CheckAvailability: %v", err)
	}
	if !avail.Available {
		t.Error("range must free up after unblocking")
	}
}
