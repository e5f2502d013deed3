package request

// PaymentWebhookRequest is the settlement callback from the payment gateway.
type PaymentWebhookRequest struct {
	BookingID  string  `json:"booking_id" validate:"required,uuid4"`
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Status     string  `json:"status" validate:"required,oneof=settled failed"`
	GatewayRef string  `json:"gateway_ref" validate:"required,max=100"`
}
