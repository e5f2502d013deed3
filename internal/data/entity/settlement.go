package entity

import (
	"github.com/google/uuid"
)

type SettlementStatus string

const (
	SettlementStatusPending SettlementStatus = "pending"
	SettlementStatusSettled SettlementStatus = "settled"
	SettlementStatusFailed  SettlementStatus = "failed"
)

// PaymentSettlement records the payment gateway's webhook signal for a
// booking total. Confirm only proceeds once a settled row exists.
type PaymentSettlement struct {
	Base
	BookingID  uuid.UUID        `db:"booking_id"`
	Amount     float64          `db:"amount"`
	Status     SettlementStatus `db:"status"`
	GatewayRef *string          `db:"gateway_ref"`
}
