package request

type CheckAvailabilityRequest struct {
	ListingID string `json:"listing_id" validate:"required,uuid4"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type CreateRentalRequest struct {
	ListingID string `json:"listing_id" validate:"required,uuid4"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"omitempty,max=255"`
}

type CancelRentalRequest struct {
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
