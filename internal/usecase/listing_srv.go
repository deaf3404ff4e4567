package usecase

import (
	"context"
	"fmt"

	"golfbag-rental/internal/data/entity"
	"golfbag-rental/internal/data/repository"
	"golfbag-rental/internal/dto/request"
	"golfbag-rental/internal/dto/response"
	"golfbag-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type ListingService interface {
	CreateListing(ctx context.Context, ownerID string, req *request.CreateListingRequest) (*response.ListingResponse, error)
	GetListingByID(ctx context.Context, listingID string) (*response.ListingResponse, error)
	GetMyListings(ctx context.Context, ownerID string) ([]response.ListingResponse, error)
}

type listingService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  nowFunc
}

func NewListingService(repo *repository.Repository, log *zap.Logger) ListingService {
	return &listingService{
		repo: repo,
		log:  log.With(zap.String("service", "listing")),
		now:  defaultNow,
	}
}

func (s *listingService) CreateListing(ctx context.Context, ownerID string, req *request.CreateListingRequest) (*response.ListingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, errInvalidRequest("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, errInvalidRequest("Invalid user ID format")
	}

	price, err := decimal.NewFromString(req.PricePerDay)
	if err != nil {
		return nil, errInvalidRequest("Price per day must be a decimal number")
	}
	if !price.IsPositive() {
		return nil, errInvalidRequest("Price per day must be greater than zero")
	}

	now := s.now()
	listing := &entity.BagListing{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OwnerID:     ownerUUID,
		Title:       req.Title,
		Description: req.Description,
		PricePerDay: price,
	}

	if err := s.repo.Listing.Create(ctx, listing); err != nil {
		s.log.Error("Failed to create listing", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.log.Info("Listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("owner_id", ownerID),
		zap.String("price_per_day", price.StringFixed(2)),
	)

	resp := response.ListingToResponse(listing)
	return &resp, nil
}

func (s *listingService) GetListingByID(ctx context.Context, listingID string) (*response.ListingResponse, error) {
	id, err := uuid.Parse(listingID)
	if err != nil {
		return nil, errInvalidRequest("Invalid listing ID format")
	}

	listing, err := s.repo.Listing.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to look up listing", zap.Error(err), zap.String("listing_id", listingID))
		return nil, fmt.Errorf("look up listing %s: %w", listingID, err)
	}
	if listing == nil {
		return nil, errNotFound("Listing not found")
	}

	resp := response.ListingToResponse(listing)
	return &resp, nil
}

func (s *listingService) GetMyListings(ctx context.Context, ownerID string) ([]response.ListingResponse, error) {
	ownerUUID, err := uuid.Parse(ownerID)
	if err != nil {
		return nil, errInvalidRequest("Invalid user ID format")
	}

	listings, err := s.repo.Listing.FindByOwnerID(ctx, ownerUUID)
	if err != nil {
		s.log.Error("Failed to get listings", zap.Error(err), zap.String("owner_id", ownerID))
		return nil, fmt.Errorf("get listings for owner %s: %w", ownerID, err)
	}

	responses := make([]response.ListingResponse, len(listings))
	for i, listing := range listings {
		responses[i] = response.ListingToResponse(listing)
	}

	return responses, nil
}
