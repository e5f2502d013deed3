package request

type GrantRewardRequest struct {
	UserID string  `json:"user_id" validate:"required,uuid4"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Note   string  `json:"note" validate:"required,max=200"`
}
