package response

import (
	"time"

	"golfbag-rental/internal/data/entity"
)

type RentalResponse struct {
	ID        string `json:"id"`
	ListingID string `json:"listing_id"`
	RenterID  string `json:"renter_id"`
	OwnerID   string `json:"owner_id"`

	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`

	TotalDays   int    `json:"total_days"`
	PricePerDay string `json:"price_per_day"`
	TotalAmount string `json:"total_amount"`

	PaymentStatus   string     `json:"payment_status"`
	PaymentIntentID *string    `json:"payment_intent_id,omitempty"`
	PaidAt          *time.Time `json:"paid_at,omitempty"`

	RefundAmount *string    `json:"refund_amount,omitempty"`
	RefundedAt   *time.Time `json:"refunded_at,omitempty"`

	Status             string     `json:"status"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelledBy        *string    `json:"cancelled_by,omitempty"`
	CancellationReason *string    `json:"cancellation_reason,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func RentalToResponse(rental *entity.Rental) RentalResponse {
	resp := RentalResponse{
		ID:            rental.ID.String(),
		ListingID:     rental.ListingID.String(),
		RenterID:      rental.RenterID.String(),
		OwnerID:       rental.OwnerID.String(),
		StartDate:     rental.StartDate.Format(entity.DateLayout),
		EndDate:       rental.EndDate.Format(entity.DateLayout),
		TotalDays:     rental.TotalDays,
		PricePerDay:   rental.PricePerDay.StringFixed(2),
		TotalAmount:   rental.TotalAmount.StringFixed(2),
		PaymentStatus: string(rental.PaymentStatus),
		Status:        string(rental.Status),
		PaidAt:        rental.PaidAt,
		RefundedAt:    rental.RefundedAt,
		CancelledAt:   rental.CancelledAt,
		ExpiresAt:     rental.ExpiresAt,
		CreatedAt:     rental.CreatedAt,
		UpdatedAt:     rental.UpdatedAt,
	}

	resp.PaymentIntentID = rental.PaymentIntentID
	resp.CancellationReason = rental.CancellationReason

	if rental.RefundAmount != nil {
		refund := rental.RefundAmount.StringFixed(2)
		resp.RefundAmount = &refund
	}
	if rental.CancelledBy != nil {
		cancelledBy := rental.CancelledBy.String()
		resp.CancelledBy = &cancelledBy
	}

	return resp
}

type AvailabilityResponse struct {
	Available     bool     `json:"available"`
	BlockedRanges []string `json:"blocked_ranges,omitempty"`
}

type BlockedDatesResponse struct {
	ListingID    string   `json:"listing_id"`
	BlockedDates []string `json:"blocked_dates"`
}

type SweepResponse struct {
	Expired int64 `json:"expired"`
}
