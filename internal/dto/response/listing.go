package response

import (
	"time"

	"rental-marketplace/internal/data/entity"
)

type ListingResponse struct {
	ID             string    `json:"id"`
	HostID         string    `json:"host_id"`
	Title          string    `json:"title"`
	NightlyPrice   float64   `json:"nightly_price"`
	PublishFeePaid bool      `json:"publish_fee_paid"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}

func ListingToResponse(listing *entity.Listing) ListingResponse {
	return ListingResponse{
		ID:             listing.ID.String(),
		HostID:         listing.HostID.String(),
		Title:          listing.Title,
		NightlyPrice:   listing.NightlyPrice,
		PublishFeePaid: listing.PublishFeePaid,
		Active:         listing.Active,
		CreatedAt:      listing.CreatedAt,
	}
}
