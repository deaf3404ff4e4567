package repository

import (
	"golfbag-rental/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Listing ListingRepository
	Rental  RentalRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		Listing: NewListingRepository(db, log),
		Rental:  NewRentalRepository(db, log),
	}
}
