package request

type WithdrawalRequest struct {
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Destination string  `json:"destination" validate:"required,min=3,max=200"`
}

type DeclineWithdrawalRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}
