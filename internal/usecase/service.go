package usecase

import (
	"time"

	"golfbag-rental/internal/data/repository"
	"golfbag-rental/pkg/utils"

	"go.uber.org/zap"
)

// nowFunc supplies the clock. Services default to time.Now; tests swap
// in a controlled clock to pin the payment and refund windows.
type nowFunc func() time.Time

func defaultNow() time.Time {
	return time.Now()
}

type Service struct {
	Listing ListingService
	Rental  RentalService
}

func NewService(repo *repository.Repository, cfg *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Listing: NewListingService(repo, log),
		Rental:  NewRentalService(repo, cfg, log),
	}
}
