package queue

import "time"

// Event names double as queue names on the broker.
const (
	EventBookingConfirmed  = "booking.confirmed"
	EventBookingCancelled  = "booking.cancelled"
	EventBookingCompleted  = "booking.completed"
	EventWithdrawalDecided = "withdrawal.decided"
	EventPayoutFailed      = "payout.failed"
)

type BookingEvent struct {
	BookingID  string    `json:"booking_id"`
	Reference  string    `json:"reference"`
	GuestID    string    `json:"guest_id"`
	HostID     string    `json:"host_id"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

type CancellationEvent struct {
	BookingEvent
	CancelledBy  string  `json:"cancelled_by"`
	RefundAmount float64 `json:"refund_amount"`
}

type WithdrawalEvent struct {
	TransactionID string    `json:"transaction_id"`
	UserID        string    `json:"user_id"`
	Amount        float64   `json:"amount"`
	Decision      string    `json:"decision"`
	PayoutStatus  string    `json:"payout_status"`
	OccurredAt    time.Time `json:"occurred_at"`
}
