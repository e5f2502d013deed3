package response

import (
	"time"

	"rental-marketplace/internal/data/entity"
)

type TransactionResponse struct {
	ID                string                   `json:"id"`
	UserID            string                   `json:"user_id"`
	Type              entity.TransactionType   `json:"type"`
	Amount            float64                  `json:"amount"`
	Status            entity.TransactionStatus `json:"status"`
	RelatedBookingID  *string                  `json:"related_booking_id,omitempty"`
	PayoutStatus      entity.PayoutStatus      `json:"payout_status"`
	PayoutDestination *string                  `json:"payout_destination,omitempty"`
	Note              *string                  `json:"note,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
}

func TransactionToResponse(txn *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:                txn.ID.String(),
		UserID:            txn.UserID.String(),
		Type:              txn.Type,
		Amount:            txn.Amount,
		Status:            txn.Status,
		PayoutStatus:      txn.PayoutStatus,
		PayoutDestination: txn.PayoutDestination,
		Note:              txn.Note,
		CreatedAt:         txn.CreatedAt,
	}
	if txn.RelatedBookingID != nil {
		bookingID := txn.RelatedBookingID.String()
		resp.RelatedBookingID = &bookingID
	}
	return resp
}

// WalletResponse is the derived view of an account. Balance counts completed
// rows only; Reserved is the total of withdrawal requests still awaiting
// approval; Available is what a new withdrawal may draw on.
type WalletResponse struct {
	UserID    string  `json:"user_id"`
	Balance   float64 `json:"balance"`
	Reserved  float64 `json:"reserved"`
	Available float64 `json:"available"`
}
