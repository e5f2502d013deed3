package response

import (
	"time"

	"rental-marketplace/internal/data/entity"
)

type CancellationRequestResponse struct {
	ID          string                    `json:"id"`
	BookingID   string                    `json:"booking_id"`
	GuestID     string                    `json:"guest_id"`
	HostID      string                    `json:"host_id"`
	Reason      string                    `json:"reason"`
	Status      entity.CancellationStatus `json:"status"`
	ReviewedBy  *string                   `json:"reviewed_by,omitempty"`
	ReviewNotes *string                   `json:"review_notes,omitempty"`
	CreatedAt   time.Time                 `json:"created_at"`
}

func CancellationRequestToResponse(req *entity.CancellationRequest) CancellationRequestResponse {
	resp := CancellationRequestResponse{
		ID:          req.ID.String(),
		BookingID:   req.BookingID.String(),
		GuestID:     req.GuestID.String(),
		HostID:      req.HostID.String(),
		Reason:      req.Reason,
		Status:      req.Status,
		ReviewNotes: req.ReviewNotes,
		CreatedAt:   req.CreatedAt,
	}
	if req.ReviewedBy != nil {
		reviewer := req.ReviewedBy.String()
		resp.ReviewedBy = &reviewer
	}
	return resp
}
