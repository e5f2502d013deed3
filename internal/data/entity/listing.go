package entity

import (
	"time"

	"github.com/google/uuid"
)

type Listing struct {
	Base
	HostID       uuid.UUID `db:"host_id"`
	Title        string    `db:"title"`
	NightlyPrice float64   `db:"nightly_price"`
	// PublishFeePaid flips when the host's publish-fee debit completes;
	// Active flips when an admin approves the paid listing.
	PublishFeePaid bool `db:"publish_fee_paid"`
	Active         bool `db:"active"`
}

// BlockedDate is one host-blocked calendar date on a listing.
type BlockedDate struct {
	BaseSimple
	ListingID uuid.UUID `db:"listing_id"`
	Date      time.Time `db:"date"`
}
