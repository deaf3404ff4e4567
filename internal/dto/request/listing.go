package request

type CreateListingRequest struct {
	Title       string `json:"title" validate:"required,max=120"`
	Description string `json:"description" validate:"omitempty,max=2000"`
	// Decimal string, e.g. "25.00". Parsed and validated by the service.
	PricePerDay string `json:"price_per_day" validate:"required"`
}
