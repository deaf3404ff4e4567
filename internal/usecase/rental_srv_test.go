package usecase

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"golfbag-rental/internal/data/entity"
	"golfbag-rental/internal/data/repository"
	"golfbag-rental/internal/dto/request"
	"golfbag-rental/pkg/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRentalService(t *testing.T) (*rentalService, *fakeRentalRepo, *fakeListingRepo, *fakeClock) {
	t.Helper()

	rentalRepo := newFakeRentalRepo()
	listingRepo := newFakeListingRepo()
	repo := &repository.Repository{Listing: listingRepo, Rental: rentalRepo}

	cfg := &utils.Config{
		Booking: utils.BookingConfig{
			PaymentWindowMinutes: 15,
			RefundWindowHours:    24,
			SweepSpec:            "0 * * * * *",
		},
	}

	clock := newFakeClock(time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC))

	svc := NewRentalService(repo, cfg, zap.NewNop()).(*rentalService)
	svc.now = clock.Now

	return svc, rentalRepo, listingRepo, clock
}

func seedListing(t *testing.T, listingRepo *fakeListingRepo, clock *fakeClock, price string) *entity.BagListing {
	t.Helper()

	listing := &entity.BagListing{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: clock.Now(),
			UpdatedAt: clock.Now(),
		},
		OwnerID:     uuid.New(),
		Title:       "TaylorMade tour bag",
		PricePerDay: decimal.RequireFromString(price),
	}
	require.NoError(t, listingRepo.Create(context.Background(), listing))

	return listing
}

func createRentalReq(listingID uuid.UUID, start, end string) *request.CreateRentalRequest {
	return &request.CreateRentalRequest{
		ListingID: listingID.String(),
		StartDate: start,
		EndDate:   end,
	}
}

func requireErrorKind(t *testing.T, err error, kind ErrorKind) *Error {
	t.Helper()

	require.Error(t, err)
	svcErr, ok := err.(*Error)
	require.True(t, ok, "expected *usecase.Error, got %T: %v", err, err)
	require.Equal(t, kind, svcErr.Kind)

	return svcErr
}

func TestCreateRental(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	rental, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	assert.Equal(t, 4, rental.TotalDays)
	assert.Equal(t, "25.00", rental.PricePerDay)
	assert.Equal(t, "100.00", rental.TotalAmount)
	assert.Equal(t, string(entity.RentalStatusPendingPayment), rental.Status)
	assert.Equal(t, string(entity.PaymentStatusPending), rental.PaymentStatus)
	assert.Equal(t, listing.OwnerID.String(), rental.OwnerID)
	require.NotNil(t, rental.ExpiresAt)
	assert.Equal(t, clock.Now().Add(15*time.Minute), *rental.ExpiresAt)
}

func TestCreateRentalListingNotFound(t *testing.T) {
	svc, _, _, _ := newTestRentalService(t)

	_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(uuid.New(), "2026-03-01", "2026-03-05"))
	requireErrorKind(t, err, ErrorKindNotFound)
}

func TestCreateRentalOwnListing(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	_, err := svc.CreateRental(context.Background(), listing.OwnerID.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	svcErr := requireErrorKind(t, err, ErrorKindInvalidRequest)
	assert.Equal(t, "You cannot rent your own listing", svcErr.Message)
}

func TestCreateRentalInvalidDateOrder(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	for _, tc := range []struct{ start, end string }{
		{"2026-03-05", "2026-03-01"},
		{"2026-03-03", "2026-03-03"},
	} {
		_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, tc.start, tc.end))
		requireErrorKind(t, err, ErrorKindInvalidRequest)
	}
}

func TestCreateRentalConflict(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	// Overlaps the tail of the pending hold.
	_, err = svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-04", "2026-03-06"))
	svcErr := requireErrorKind(t, err, ErrorKindConflict)
	assert.Contains(t, svcErr.BlockedRanges, "2026-03-01 to 2026-03-05")
}

func TestCreateRentalAdjacentDaysConflict(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	// Ranges are inclusive on both ends: starting on the previous
	// booking's end day is a conflict.
	_, err = svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-05", "2026-03-08"))
	requireErrorKind(t, err, ErrorKindConflict)

	// The day after the end is free.
	_, err = svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-06", "2026-03-08"))
	require.NoError(t, err)
}

func TestCheckAvailabilityAgreesWithCreate(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	availability, err := svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		ListingID: listing.ID.String(),
		StartDate: "2026-03-01",
		EndDate:   "2026-03-05",
	})
	require.NoError(t, err)
	assert.True(t, availability.Available)
	assert.Empty(t, availability.BlockedRanges)

	_, err = svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	availability, err = svc.CheckAvailability(context.Background(), &request.CheckAvailabilityRequest{
		ListingID: listing.ID.String(),
		StartDate: "2026-03-04",
		EndDate:   "2026-03-06",
	})
	require.NoError(t, err)
	assert.False(t, availability.Available)
	assert.Equal(t, []string{"2026-03-01 to 2026-03-05"}, availability.BlockedRanges)

	// Unavailable in the pre-check means Conflict on the real attempt.
	_, err = svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-04", "2026-03-06"))
	requireErrorKind(t, err, ErrorKindConflict)
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	svc, rentalRepo, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	// Every candidate range covers 2026-03-05, so they conflict pairwise
	// and at most one reservation may win.
	const attempts = 16

	var wg sync.WaitGroup
	results := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		start := fmt.Sprintf("2026-03-0%d", 1+i%4)
		end := fmt.Sprintf("2026-03-0%d", 5+i%4)

		wg.Add(1)
		go func(start, end string) {
			defer wg.Done()
			_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, start, end))
			results <- err
		}(start, end)
	}

	wg.Wait()
	close(results)

	var successes, conflicts int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		requireErrorKind(t, err, ErrorKindConflict)
		conflicts++
	}

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)

	// Holding rentals on the listing must be pairwise non-overlapping.
	holding := make([]entity.Rental, 0)
	for _, rental := range rentalRepo.snapshot() {
		if rental.Status.Holding() {
			holding = append(holding, rental)
		}
	}
	require.Len(t, holding, 1)
}

func TestConfirmPayment(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	rental, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	confirmed, err := svc.ConfirmPayment(context.Background(), rental.ID, &request.ConfirmPaymentRequest{PaymentIntentID: "pi_123"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.RentalStatusConfirmed), confirmed.Status)
	assert.Equal(t, string(entity.PaymentStatusPaid), confirmed.PaymentStatus)
	require.NotNil(t, confirmed.PaymentIntentID)
	assert.Equal(t, "pi_123", *confirmed.PaymentIntentID)
	require.NotNil(t, confirmed.PaidAt)
	assert.Nil(t, confirmed.ExpiresAt)

	// Confirming twice fails the state guard.
	_, err = svc.ConfirmPayment(context.Background(), rental.ID, &request.ConfirmPaymentRequest{})
	requireErrorKind(t, err, ErrorKindInvalidState)
}

func TestConfirmPaymentNotFound(t *testing.T) {
	svc, _, _, _ := newTestRentalService(t)

	_, err := svc.ConfirmPayment(context.Background(), uuid.New().String(), &request.ConfirmPaymentRequest{})
	requireErrorKind(t, err, ErrorKindNotFound)
}

func TestCancelByRenterInsideRefundWindow(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	created := clock.Now()
	rental, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	// Exactly on the 24h boundary still refunds in full.
	clock.Set(created.Add(24 * time.Hour))

	cancelled, err := svc.CancelByRenter(context.Background(), renter.String(), rental.ID, &request.CancelRentalRequest{Reason: "Plans changed"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.RentalStatusCancelledByRenter), cancelled.Status)
	require.NotNil(t, cancelled.RefundAmount)
	assert.Equal(t, "100.00", *cancelled.RefundAmount)
	require.NotNil(t, cancelled.RefundedAt)
	require.NotNil(t, cancelled.CancelledBy)
	assert.Equal(t, renter.String(), *cancelled.CancelledBy)
	require.NotNil(t, cancelled.CancellationReason)
	assert.Equal(t, "Plans changed", *cancelled.CancellationReason)
	assert.Nil(t, cancelled.ExpiresAt)
}

func TestCancelByRenterOutsideRefundWindow(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	created := clock.Now()
	rental, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	// One second past the boundary: no refund.
	clock.Set(created.Add(24*time.Hour + time.Second))

	cancelled, err := svc.CancelByRenter(context.Background(), renter.String(), rental.ID, &request.CancelRentalRequest{})
	require.NoError(t, err)

	assert.Equal(t, string(entity.RentalStatusCancelledByRenter), cancelled.Status)
	require.NotNil(t, cancelled.RefundAmount)
	assert.Equal(t, "0.00", *cancelled.RefundAmount)
	assert.Nil(t, cancelled.RefundedAt)
}

func TestCancelByRenterForbidden(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	rental, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	_, err = svc.CancelByRenter(context.Background(), uuid.New().String(), rental.ID, &request.CancelRentalRequest{})
	requireErrorKind(t, err, ErrorKindForbidden)
}

func TestCancelByRenterExpiredRental(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	rental, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	clock.Advance(16 * time.Minute)
	count, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	_, err = svc.CancelByRenter(context.Background(), renter.String(), rental.ID, &request.CancelRentalRequest{})
	requireErrorKind(t, err, ErrorKindInvalidState)
}

func TestCancelByOwner(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	rental, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	// Pending rentals cannot be cancelled by the owner.
	_, err = svc.CancelByOwner(context.Background(), listing.OwnerID.String(), rental.ID, &request.CancelRentalRequest{})
	requireErrorKind(t, err, ErrorKindInvalidState)

	_, err = svc.ConfirmPayment(context.Background(), rental.ID, &request.ConfirmPaymentRequest{})
	require.NoError(t, err)

	// The renter cannot use the owner path.
	_, err = svc.CancelByOwner(context.Background(), renter.String(), rental.ID, &request.CancelRentalRequest{})
	requireErrorKind(t, err, ErrorKindForbidden)

	// Full refund regardless of elapsed time when the owner backs out.
	clock.Advance(72 * time.Hour)

	cancelled, err := svc.CancelByOwner(context.Background(), listing.OwnerID.String(), rental.ID, &request.CancelRentalRequest{Reason: "Bag damaged"})
	require.NoError(t, err)

	assert.Equal(t, string(entity.RentalStatusCancelledByOwner), cancelled.Status)
	require.NotNil(t, cancelled.RefundAmount)
	assert.Equal(t, "100.00", *cancelled.RefundAmount)
	require.NotNil(t, cancelled.RefundedAt)
}

func TestSweepExpiredIdempotent(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	// Inside the payment window nothing expires.
	count, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)

	clock.Advance(16 * time.Minute)

	count, err = svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Back-to-back sweep transitions nothing further.
	count, err = svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestSweepFreesBlockedDates(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	blocked, err := svc.GetBlockedDates(context.Background(), listing.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-03-01", "2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05"}, blocked.BlockedDates)

	clock.Advance(16 * time.Minute)
	count, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), count)

	blocked, err = svc.GetBlockedDates(context.Background(), listing.ID.String())
	require.NoError(t, err)
	assert.Empty(t, blocked.BlockedDates)

	// The range is reservable again.
	_, err = svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)
}

func TestGetBlockedDatesMergesDuplicates(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")

	_, err := svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-03"))
	require.NoError(t, err)
	_, err = svc.CreateRental(context.Background(), uuid.New().String(), createRentalReq(listing.ID, "2026-03-06", "2026-03-08"))
	require.NoError(t, err)

	blocked, err := svc.GetBlockedDates(context.Background(), listing.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{
		"2026-03-01", "2026-03-02", "2026-03-03",
		"2026-03-06", "2026-03-07", "2026-03-08",
	}, blocked.BlockedDates)
}

func TestGetRentalsForUser(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	_, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	page := request.NewPaginatedRequest(1, 10)

	asRenter, err := svc.GetRentalsForUser(context.Background(), renter.String(), RoleRenter, page)
	require.NoError(t, err)
	require.Len(t, asRenter.Data, 1)
	assert.Equal(t, int64(1), asRenter.Pagination.Total)

	asOwner, err := svc.GetRentalsForUser(context.Background(), listing.OwnerID.String(), RoleOwner, page)
	require.NoError(t, err)
	require.Len(t, asOwner.Data, 1)

	stranger, err := svc.GetRentalsForUser(context.Background(), uuid.New().String(), RoleRenter, page)
	require.NoError(t, err)
	assert.Empty(t, stranger.Data)

	_, err = svc.GetRentalsForUser(context.Background(), renter.String(), "admin", page)
	requireErrorKind(t, err, ErrorKindInvalidRequest)
}

func TestGetRentalByIDAuthorization(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	rental, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	_, err = svc.GetRentalByID(context.Background(), renter.String(), rental.ID)
	require.NoError(t, err)

	_, err = svc.GetRentalByID(context.Background(), listing.OwnerID.String(), rental.ID)
	require.NoError(t, err)

	_, err = svc.GetRentalByID(context.Background(), uuid.New().String(), rental.ID)
	requireErrorKind(t, err, ErrorKindForbidden)
}

func TestPricingSnapshotImmutable(t *testing.T) {
	svc, _, listingRepo, clock := newTestRentalService(t)
	listing := seedListing(t, listingRepo, clock, "25.00")
	renter := uuid.New()

	rental, err := svc.CreateRental(context.Background(), renter.String(), createRentalReq(listing.ID, "2026-03-01", "2026-03-05"))
	require.NoError(t, err)

	// A listing price change after creation never touches the rental.
	listing.PricePerDay = decimal.RequireFromString("90.00")
	require.NoError(t, listingRepo.Create(context.Background(), listing))

	fetched, err := svc.GetRentalByID(context.Background(), renter.String(), rental.ID)
	require.NoError(t, err)
	assert.Equal(t, "25.00", fetched.PricePerDay)
	assert.Equal(t, "100.00", fetched.TotalAmount)
}
