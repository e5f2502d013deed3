package request

type BlockDateRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}
