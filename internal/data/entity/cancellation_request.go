package entity

import (
	"github.com/google/uuid"
)

type CancellationStatus string

const (
	CancellationStatusPending  CancellationStatus = "pending"
	CancellationStatusApproved CancellationStatus = "approved"
	CancellationStatusRejected CancellationStatus = "rejected"
)

// CancellationRequest is the admin-mediated cancellation path. Resolved
// exactly once; approval runs the same refund path as a direct cancel.
type CancellationRequest struct {
	Base
	BookingID   uuid.UUID          `db:"booking_id"`
	GuestID     uuid.UUID          `db:"guest_id"`
	HostID      uuid.UUID          `db:"host_id"`
	Reason      string             `db:"reason"`
	Status      CancellationStatus `db:"status"`
	ReviewedBy  *uuid.UUID         `db:"reviewed_by"`
	ReviewNotes *string            `db:"review_notes"`
}
