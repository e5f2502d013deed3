package entity

import (
	"github.com/google/uuid"
)

// HostStrike records one host-initiated cancellation. The rolling 6-month
// count drives the escalation ladder on User.
type HostStrike struct {
	BaseSimple
	HostID    uuid.UUID `db:"host_id"`
	BookingID uuid.UUID `db:"booking_id"`
}
