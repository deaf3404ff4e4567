package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RentalStatus string

const (
	RentalStatusPendingPayment    RentalStatus = "pending_payment"
	RentalStatusConfirmed         RentalStatus = "confirmed"
	RentalStatusActive            RentalStatus = "active"
	RentalStatusCompleted         RentalStatus = "completed"
	RentalStatusCancelledByRenter RentalStatus = "cancelled_by_renter"
	RentalStatusCancelledByOwner  RentalStatus = "cancelled_by_owner"
	RentalStatusExpired           RentalStatus = "expired"
)

// HoldingStatuses are the statuses that keep a date range reserved and
// therefore excluded from availability.
var HoldingStatuses = []RentalStatus{
	RentalStatusPendingPayment,
	RentalStatusConfirmed,
	RentalStatusActive,
}

// Holding reports whether the status reserves the rental's date range.
func (s RentalStatus) Holding() bool {
	switch s {
	case RentalStatusPendingPayment, RentalStatusConfirmed, RentalStatusActive:
		return true
	}
	return false
}

// Terminal reports whether the status is absorbing. No transition is
// legal out of a terminal status.
func (s RentalStatus) Terminal() bool {
	switch s {
	case RentalStatusCancelledByRenter, RentalStatusCancelledByOwner, RentalStatusExpired:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
)

type Rental struct {
	Base
	ListingID uuid.UUID `db:"listing_id"`
	RenterID  uuid.UUID `db:"renter_id"`
	OwnerID   uuid.UUID `db:"owner_id"`

	// Inclusive calendar date range.
	StartDate time.Time `db:"start_date"`
	EndDate   time.Time `db:"end_date"`

	// Pricing snapshot, copied from the listing at creation time.
	// Later listing price changes never affect an existing rental.
	TotalDays   int             `db:"total_days"`
	PricePerDay decimal.Decimal `db:"price_per_day"`
	TotalAmount decimal.Decimal `db:"total_amount"`

	PaymentStatus   PaymentStatus `db:"payment_status"`
	PaymentIntentID *string       `db:"payment_intent_id"`
	PaidAt          *time.Time    `db:"paid_at"`

	RefundAmount *decimal.Decimal `db:"refund_amount"`
	RefundedAt   *time.Time       `db:"refunded_at"`

	Status             RentalStatus `db:"status"`
	CancelledAt        *time.Time   `db:"cancelled_at"`
	CancelledBy        *uuid.UUID   `db:"cancelled_by"`
	CancellationReason *string      `db:"cancellation_reason"`

	// Set only while status is pending_payment.
	ExpiresAt *time.Time `db:"expires_at"`
}

// Range returns the rental's inclusive date range.
func (r *Rental) Range() DateRange {
	return DateRange{Start: r.StartDate, End: r.EndDate}
}
