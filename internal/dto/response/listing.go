package response

import (
	"time"

	"golfbag-rental/internal/data/entity"
)

type ListingResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	PricePerDay string    `json:"price_per_day"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func ListingToResponse(listing *entity.BagListing) ListingResponse {
	return ListingResponse{
		ID:          listing.ID.String(),
		OwnerID:     listing.OwnerID.String(),
		Title:       listing.Title,
		Description: listing.Description,
		PricePerDay: listing.PricePerDay.StringFixed(2),
		CreatedAt:   listing.CreatedAt,
		UpdatedAt:   listing.UpdatedAt,
	}
}
