package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BagListing is the golf bag being rented out. The booking core only
// needs the owner identity and the daily price; everything else is
// catalog detail.
type BagListing struct {
	Base
	OwnerID     uuid.UUID       `db:"owner_id"`
	Title       string          `db:"title"`
	Description string          `db:"description"`
	PricePerDay decimal.Decimal `db:"price_per_day"`
}
