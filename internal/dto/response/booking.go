package response

import (
	"time"

	"rental-marketplace/internal/data/entity"
)

type BookingResponse struct {
	ID          string               `json:"id"`
	Reference   string               `json:"reference"`
	ListingID   string               `json:"listing_id"`
	GuestID     string               `json:"guest_id"`
	HostID      string               `json:"host_id"`
	CheckIn     string               `json:"check_in"`
	CheckOut    string               `json:"check_out"`
	GuestCount  int                  `json:"guest_count"`
	TotalPrice  float64              `json:"total_price"`
	Status      entity.BookingStatus `json:"status"`
	CancelledBy *entity.CancelActor  `json:"cancelled_by,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:          booking.ID.String(),
		Reference:   booking.Reference,
		ListingID:   booking.ListingID.String(),
		GuestID:     booking.GuestID.String(),
		HostID:      booking.HostID.String(),
		CheckIn:     booking.CheckIn.Format("2006-01-02"),
		CheckOut:    booking.CheckOut.Format("2006-01-02"),
		GuestCount:  booking.GuestCount,
		TotalPrice:  booking.TotalPrice,
		Status:      booking.Status,
		CancelledBy: booking.CancelledBy,
		CreatedAt:   booking.CreatedAt,
	}
}

// CancellationOutcomeResponse reports the refund evaluation applied when a
// booking was cancelled.
type CancellationOutcomeResponse struct {
	Booking           BookingResponse `json:"booking"`
	RefundEligible    bool            `json:"refund_eligible"`
	RefundPercentage  float64         `json:"refund_percentage"`
	RefundAmount      float64         `json:"refund_amount"`
	HoursUntilCheckIn float64         `json:"hours_until_check_in"`
}

type AvailabilityResponse struct {
	ListingID string `json:"listing_id"`
	CheckIn   string `json:"check_in"`
	CheckOut  string `json:"check_out"`
	Available bool   `json:"available"`
}
