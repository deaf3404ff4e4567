package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golfbag-rental/internal/data/entity"
	"golfbag-rental/internal/data/repository"
	"golfbag-rental/internal/dto/request"
	"golfbag-rental/internal/dto/response"
	"golfbag-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Roles for rental list queries.
const (
	RoleRenter = "renter"
	RoleOwner  = "owner"
)

type RentalService interface {
	// CheckAvailability runs the overlap check without reserving anything.
	// Not authoritative under concurrency; CreateRental re-validates.
	CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error)

	// CreateRental reserves the range atomically and opens the payment
	// window. The rental starts in pending_payment.
	CreateRental(ctx context.Context, renterID string, req *request.CreateRentalRequest) (*response.RentalResponse, error)

	// ConfirmPayment is driven by the external payment collaborator.
	ConfirmPayment(ctx context.Context, rentalID string, req *request.ConfirmPaymentRequest) (*response.RentalResponse, error)

	CancelByRenter(ctx context.Context, userID, rentalID string, req *request.CancelRentalRequest) (*response.RentalResponse, error)
	CancelByOwner(ctx context.Context, userID, rentalID string, req *request.CancelRentalRequest) (*response.RentalResponse, error)

	GetRentalByID(ctx context.Context, userID, rentalID string) (*response.RentalResponse, error)
	GetRentalsForUser(ctx context.Context, userID, role string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RentalResponse], error)
	GetBlockedDates(ctx context.Context, listingID string) (*response.BlockedDatesResponse, error)

	// SweepExpired moves every lapsed pending_payment rental to expired
	// and reports how many rows transitioned. Invoked by the scheduler.
	SweepExpired(ctx context.Context) (int64, error)
}

type rentalService struct {
	repo *repository.Repository
	cfg  *utils.Config
	log  *zap.Logger
	now  nowFunc
}

func NewRentalService(repo *repository.Repository, cfg *utils.Config, log *zap.Logger) RentalService {
	return &rentalService{
		repo: repo,
		cfg:  cfg,
		log:  log.With(zap.String("service", "rental")),
		now:  defaultNow,
	}
}

func (s *rentalService) CheckAvailability(ctx context.Context, req *request.CheckAvailabilityRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, errInvalidRequest("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, errInvalidRequest("Invalid listing ID format")
	}

	rng, err := entity.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, errInvalidRequest("Invalid date format, expected YYYY-MM-DD")
	}
	if !rng.Valid() {
		return nil, errInvalidRequest("End date must be after start date")
	}

	blocked, err := s.blockedRanges(ctx, listingID, rng)
	if err != nil {
		return nil, err
	}

	if len(blocked) > 0 {
		return &response.AvailabilityResponse{Available: false, BlockedRanges: blocked}, nil
	}

	return &response.AvailabilityResponse{Available: true}, nil
}

func (s *rentalService) CreateRental(ctx context.Context, renterID string, req *request.CreateRentalRequest) (*response.RentalResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, errInvalidRequest("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	renterUUID, err := uuid.Parse(renterID)
	if err != nil {
		return nil, errInvalidRequest("Invalid user ID format")
	}

	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		return nil, errInvalidRequest("Invalid listing ID format")
	}

	listing, err := s.repo.Listing.FindByID(ctx, listingID)
	if err != nil {
		s.log.Error("Failed to look up listing", zap.Error(err), zap.String("listing_id", req.ListingID))
		return nil, fmt.Errorf("look up listing %s: %w", req.ListingID, err)
	}
	if listing == nil {
		return nil, errNotFound("Listing not found")
	}

	if listing.OwnerID == renterUUID {
		return nil, errInvalidRequest("You cannot rent your own listing")
	}

	rng, err := entity.ParseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, errInvalidRequest("Invalid date format, expected YYYY-MM-DD")
	}
	if !rng.Valid() {
		return nil, errInvalidRequest("End date must be after start date")
	}

	// Friendly pre-check. The authoritative check happens inside
	// CreateIfAvailable, serialized per listing.
	blocked, err := s.blockedRanges(ctx, listingID, rng)
	if err != nil {
		return nil, err
	}
	if len(blocked) > 0 {
		return nil, errConflict("Dates are not available", blocked)
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.Booking.PaymentWindow())
	totalDays := rng.TotalDays()

	rental := &entity.Rental{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		ListingID:     listingID,
		RenterID:      renterUUID,
		OwnerID:       listing.OwnerID,
		StartDate:     rng.Start,
		EndDate:       rng.End,
		TotalDays:     totalDays,
		PricePerDay:   listing.PricePerDay,
		TotalAmount:   listing.PricePerDay.Mul(decimal.NewFromInt(int64(totalDays))),
		PaymentStatus: entity.PaymentStatusPending,
		Status:        entity.RentalStatusPendingPayment,
		ExpiresAt:     &expiresAt,
	}

	if err := s.repo.Rental.CreateIfAvailable(ctx, rental); err != nil {
		var conflict *repository.RangeConflictError
		if errors.As(err, &conflict) {
			blocked := make([]string, len(conflict.Blocked))
			for i, r := range conflict.Blocked {
				blocked[i] = r.String()
			}
			return nil, errConflict("Dates are not available", blocked)
		}
		s.log.Error("Failed to create rental",
			zap.Error(err),
			zap.String("listing_id", req.ListingID),
			zap.String("renter_id", renterID),
		)
		return nil, fmt.Errorf("create rental: %w", err)
	}

	s.log.Info("Rental created",
		zap.String("rental_id", rental.ID.String()),
		zap.String("listing_id", req.ListingID),
		zap.String("renter_id", renterID),
		zap.Int("total_days", totalDays),
		zap.String("total_amount", rental.TotalAmount.StringFixed(2)),
		zap.Time("expires_at", expiresAt),
	)

	resp := response.RentalToResponse(rental)
	return &resp, nil
}

func (s *rentalService) ConfirmPayment(ctx context.Context, rentalID string, req *request.ConfirmPaymentRequest) (*response.RentalResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, errInvalidRequest("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	rental, err := s.findRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.Status != entity.RentalStatusPendingPayment {
		return nil, errInvalidState("Rental is not pending payment")
	}

	now := s.now()
	rental.Status = entity.RentalStatusConfirmed
	rental.PaymentStatus = entity.PaymentStatusPaid
	rental.PaidAt = &now
	rental.ExpiresAt = nil
	rental.UpdatedAt = now
	if req.PaymentIntentID != "" {
		rental.PaymentIntentID = &req.PaymentIntentID
	}

	if err := s.repo.Rental.UpdateTransition(ctx, rental, entity.RentalStatusPendingPayment); err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, errInvalidState("Rental is not pending payment")
		}
		return nil, fmt.Errorf("confirm payment for rental %s: %w", rentalID, err)
	}

	s.log.Info("Payment confirmed",
		zap.String("rental_id", rentalID),
		zap.String("payment_intent_id", req.PaymentIntentID),
	)

	resp := response.RentalToResponse(rental)
	return &resp, nil
}

func (s *rentalService) CancelByRenter(ctx context.Context, userID, rentalID string, req *request.CancelRentalRequest) (*response.RentalResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, errInvalidRequest("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errInvalidRequest("Invalid user ID format")
	}

	rental, err := s.findRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.RenterID != userUUID {
		return nil, errForbidden("Not authorized to cancel this rental")
	}

	if rental.Status != entity.RentalStatusPendingPayment && rental.Status != entity.RentalStatusConfirmed {
		return nil, errInvalidState("Cannot cancel this rental")
	}

	// Full refund inside the 24h window, nothing after it.
	now := s.now()
	refund := decimal.Zero
	if now.Sub(rental.CreatedAt) <= s.cfg.Booking.RefundWindow() {
		refund = rental.TotalAmount
	}

	from := rental.Status
	s.applyCancellation(rental, entity.RentalStatusCancelledByRenter, userUUID, req.Reason, refund, now)
	if refund.IsPositive() {
		rental.RefundedAt = &now
	}

	if err := s.repo.Rental.UpdateTransition(ctx, rental, from); err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, errInvalidState("Cannot cancel this rental")
		}
		return nil, fmt.Errorf("cancel rental %s by renter: %w", rentalID, err)
	}

	s.log.Info("Rental cancelled by renter",
		zap.String("rental_id", rentalID),
		zap.String("renter_id", userID),
		zap.String("refund_amount", refund.StringFixed(2)),
	)

	resp := response.RentalToResponse(rental)
	return &resp, nil
}

func (s *rentalService) CancelByOwner(ctx context.Context, userID, rentalID string, req *request.CancelRentalRequest) (*response.RentalResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, errInvalidRequest("Validation failed: " + utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errInvalidRequest("Invalid user ID format")
	}

	rental, err := s.findRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.OwnerID != userUUID {
		return nil, errForbidden("Not authorized to cancel this rental")
	}

	if rental.Status != entity.RentalStatusConfirmed && rental.Status != entity.RentalStatusActive {
		return nil, errInvalidState("Cannot cancel this rental")
	}

	// The owner backs out, the renter is made whole unconditionally.
	now := s.now()
	from := rental.Status
	s.applyCancellation(rental, entity.RentalStatusCancelledByOwner, userUUID, req.Reason, rental.TotalAmount, now)
	rental.RefundedAt = &now

	if err := s.repo.Rental.UpdateTransition(ctx, rental, from); err != nil {
		if errors.Is(err, repository.ErrStaleTransition) {
			return nil, errInvalidState("Cannot cancel this rental")
		}
		return nil, fmt.Errorf("cancel rental %s by owner: %w", rentalID, err)
	}

	s.log.Info("Rental cancelled by owner",
		zap.String("rental_id", rentalID),
		zap.String("owner_id", userID),
		zap.String("refund_amount", rental.TotalAmount.StringFixed(2)),
	)

	resp := response.RentalToResponse(rental)
	return &resp, nil
}

func (s *rentalService) GetRentalByID(ctx context.Context, userID, rentalID string) (*response.RentalResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errInvalidRequest("Invalid user ID format")
	}

	rental, err := s.findRental(ctx, rentalID)
	if err != nil {
		return nil, err
	}

	if rental.RenterID != userUUID && rental.OwnerID != userUUID {
		return nil, errForbidden("Not authorized to view this rental")
	}

	resp := response.RentalToResponse(rental)
	return &resp, nil
}

func (s *rentalService) GetRentalsForUser(ctx context.Context, userID, role string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RentalResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, errInvalidRequest("Invalid user ID format")
	}

	var rentals []*entity.Rental
	var total int64

	switch role {
	case RoleRenter:
		rentals, err = s.repo.Rental.FindByRenterID(ctx, userUUID, req.Limit(), req.Offset())
		if err == nil {
			total, err = s.repo.Rental.CountByRenterID(ctx, userUUID)
		}
	case RoleOwner:
		rentals, err = s.repo.Rental.FindByOwnerID(ctx, userUUID, req.Limit(), req.Offset())
		if err == nil {
			total, err = s.repo.Rental.CountByOwnerID(ctx, userUUID)
		}
	default:
		return nil, errInvalidRequest("Role must be renter or owner")
	}

	if err != nil {
		s.log.Error("Failed to get rentals for user",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.String("role", role),
		)
		return nil, fmt.Errorf("get %s rentals for user %s: %w", role, userID, err)
	}

	items := make([]response.RentalResponse, len(rentals))
	for i, rental := range rentals {
		items[i] = response.RentalToResponse(rental)
	}

	return response.NewPaginatedResponse(items, req.Page, req.PerPage, total), nil
}

func (s *rentalService) GetBlockedDates(ctx context.Context, listingID string) (*response.BlockedDatesResponse, error) {
	listingUUID, err := uuid.Parse(listingID)
	if err != nil {
		return nil, errInvalidRequest("Invalid listing ID format")
	}

	rentals, err := s.repo.Rental.FindHoldingByListingID(ctx, listingUUID)
	if err != nil {
		s.log.Error("Failed to get holding rentals", zap.Error(err), zap.String("listing_id", listingID))
		return nil, fmt.Errorf("get blocked dates for listing %s: %w", listingID, err)
	}

	seen := make(map[string]struct{})
	var dates []string
	for _, rental := range rentals {
		for _, day := range rental.Range().Days() {
			formatted := day.Format(entity.DateLayout)
			if _, ok := seen[formatted]; ok {
				continue
			}
			seen[formatted] = struct{}{}
			dates = append(dates, formatted)
		}
	}
	sort.Strings(dates)

	return &response.BlockedDatesResponse{ListingID: listingID, BlockedDates: dates}, nil
}

func (s *rentalService) SweepExpired(ctx context.Context) (int64, error) {
	count, err := s.repo.Rental.ExpireStale(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("sweep expired rentals: %w", err)
	}

	if count > 0 {
		s.log.Info("Expired stale rentals", zap.Int64("count", count))
	}

	return count, nil
}

// findRental loads a rental or returns the NotFound service error.
func (s *rentalService) findRental(ctx context.Context, rentalID string) (*entity.Rental, error) {
	id, err := uuid.Parse(rentalID)
	if err != nil {
		return nil, errInvalidRequest("Invalid rental ID format")
	}

	rental, err := s.repo.Rental.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to look up rental", zap.Error(err), zap.String("rental_id", rentalID))
		return nil, fmt.Errorf("look up rental %s: %w", rentalID, err)
	}
	if rental == nil {
		return nil, errNotFound("Rental not found")
	}

	return rental, nil
}

// blockedRanges returns the formatted ranges of holding rentals that
// overlap the candidate range.
func (s *rentalService) blockedRanges(ctx context.Context, listingID uuid.UUID, rng entity.DateRange) ([]string, error) {
	overlapping, err := s.repo.Rental.FindOverlapping(ctx, listingID, rng)
	if err != nil {
		s.log.Error("Failed to check overlapping rentals",
			zap.Error(err),
			zap.String("listing_id", listingID.String()),
		)
		return nil, fmt.Errorf("check availability for listing %s: %w", listingID.String(), err)
	}

	blocked := make([]string, 0, len(overlapping))
	for _, rental := range overlapping {
		blocked = append(blocked, rental.Range().String())
	}

	return blocked, nil
}

func (s *rentalService) applyCancellation(rental *entity.Rental, status entity.RentalStatus, by uuid.UUID, reason string, refund decimal.Decimal, now time.Time) {
	rental.Status = status
	rental.CancelledAt = &now
	rental.CancelledBy = &by
	rental.RefundAmount = &refund
	rental.ExpiresAt = nil
	rental.UpdatedAt = now
	if reason != "" {
		rental.CancellationReason = &reason
	}
}
