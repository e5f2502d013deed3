package entity

import (
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusExpired
}

// CancelActor identifies who initiated a cancellation. Host-initiated
// cancellations always refund 100% and count against the host.
type CancelActor string

const (
	CancelledByGuest CancelActor = "guest"
	CancelledByHost  CancelActor = "host"
	CancelledByAdmin CancelActor = "admin"
)

type Booking struct {
	Base
	Reference     string        `db:"reference"`
	ListingID     uuid.UUID     `db:"listing_id"`
	GuestID       uuid.UUID     `db:"guest_id"`
	HostID        uuid.UUID     `db:"host_id"`
	CheckIn       time.Time     `db:"check_in"`
	CheckOut      time.Time     `db:"check_out"`
	GuestCount    int           `db:"guest_count"`
	TotalPrice    float64       `db:"total_price"`
	Status        BookingStatus `db:"status"`
	CancelledBy   *CancelActor  `db:"cancelled_by"`
	HoldExpiresAt time.Time     `db:"hold_expires_at"`
}
