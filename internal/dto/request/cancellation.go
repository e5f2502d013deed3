package request

type CreateCancellationRequest struct {
	BookingID string `json:"booking_id" validate:"required,uuid4"`
	Reason    string `json:"reason" validate:"required,max=500"`
}

type ReviewCancellationRequest struct {
	Notes *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}
