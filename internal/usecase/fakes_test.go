package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"golfbag-rental/internal/data/entity"
	"golfbag-rental/internal/data/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes. fakeRentalRepo honors the same atomicity
// contract as the Postgres implementation: CreateIfAvailable holds the
// lock across the overlap check and the insert.

type fakeListingRepo struct {
	mu       sync.RWMutex
	listings map[uuid.UUID]entity.BagListing
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: make(map[uuid.UUID]entity.BagListing)}
}

func (f *fakeListingRepo) Create(_ context.Context, listing *entity.BagListing) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listings[listing.ID] = *listing
	return nil
}

func (f *fakeListingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.BagListing, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	listing, ok := f.listings[id]
	if !ok {
		return nil, nil
	}
	return &listing, nil
}

func (f *fakeListingRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID) ([]*entity.BagListing, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var result []*entity.BagListing
	for _, listing := range f.listings {
		if listing.OwnerID == ownerID {
			l := listing
			result = append(result, &l)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

type fakeRentalRepo struct {
	mu      sync.Mutex
	rentals map[uuid.UUID]entity.Rental
}

func newFakeRentalRepo() *fakeRentalRepo {
	return &fakeRentalRepo{rentals: make(map[uuid.UUID]entity.Rental)}
}

func (f *fakeRentalRepo) CreateIfAvailable(_ context.Context, rental *entity.Rental) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var blocked []entity.DateRange
	for _, existing := range f.rentals {
		if existing.ListingID != rental.ListingID || !existing.Status.Holding() {
			continue
		}
		if existing.Range().Overlaps(rental.Range()) {
			blocked = append(blocked, existing.Range())
		}
	}
	if len(blocked) > 0 {
		return &repository.RangeConflictError{Blocked: blocked}
	}

	f.rentals[rental.ID] = *rental
	return nil
}

func (f *fakeRentalRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rental, ok := f.rentals[id]
	if !ok {
		return nil, nil
	}
	return &rental, nil
}

func (f *fakeRentalRepo) FindByRenterID(_ context.Context, renterID uuid.UUID, limit, offset int) ([]*entity.Rental, error) {
	return f.filter(func(r entity.Rental) bool { return r.RenterID == renterID }, limit, offset), nil
}

func (f *fakeRentalRepo) CountByRenterID(_ context.Context, renterID uuid.UUID) (int64, error) {
	return f.count(func(r entity.Rental) bool { return r.RenterID == renterID }), nil
}

func (f *fakeRentalRepo) FindByOwnerID(_ context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Rental, error) {
	return f.filter(func(r entity.Rental) bool { return r.OwnerID == ownerID }, limit, offset), nil
}

func (f *fakeRentalRepo) CountByOwnerID(_ context.Context, ownerID uuid.UUID) (int64, error) {
	return f.count(func(r entity.Rental) bool { return r.OwnerID == ownerID }), nil
}

func (f *fakeRentalRepo) FindOverlapping(_ context.Context, listingID uuid.UUID, rng entity.DateRange) ([]*entity.Rental, error) {
	return f.filter(func(r entity.Rental) bool {
		return r.ListingID == listingID && r.Status.Holding() && r.Range().Overlaps(rng)
	}, 0, 0), nil
}

func (f *fakeRentalRepo) FindHoldingByListingID(_ context.Context, listingID uuid.UUID) ([]*entity.Rental, error) {
	return f.filter(func(r entity.Rental) bool {
		return r.ListingID == listingID && r.Status.Holding()
	}, 0, 0), nil
}

func (f *fakeRentalRepo) UpdateTransition(_ context.Context, rental *entity.Rental, from entity.RentalStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	current, ok := f.rentals[rental.ID]
	if !ok || current.Status != from {
		return repository.ErrStaleTransition
	}

	f.rentals[rental.ID] = *rental
	return nil
}

func (f *fakeRentalRepo) ExpireStale(_ context.Context, now time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for id, rental := range f.rentals {
		if rental.Status != entity.RentalStatusPendingPayment {
			continue
		}
		if rental.ExpiresAt == nil || !rental.ExpiresAt.Before(now) {
			continue
		}
		rental.Status = entity.RentalStatusExpired
		rental.ExpiresAt = nil
		rental.UpdatedAt = now
		f.rentals[id] = rental
		count++
	}

	return count, nil
}

func (f *fakeRentalRepo) filter(match func(entity.Rental) bool, limit, offset int) []*entity.Rental {
	f.mu.Lock()
	defer f.mu.Unlock()

	var result []*entity.Rental
	for _, rental := range f.rentals {
		if match(rental) {
			r := rental
			result = append(result, &r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if offset > 0 {
		if offset >= len(result) {
			return nil
		}
		result = result[offset:]
	}
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result
}

func (f *fakeRentalRepo) count(match func(entity.Rental) bool) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	var count int64
	for _, rental := range f.rentals {
		if match(rental) {
			count++
		}
	}
	return count
}

// snapshot returns a copy of every stored rental, for invariant checks.
func (f *fakeRentalRepo) snapshot() []entity.Rental {
	f.mu.Lock()
	defer f.mu.Unlock()

	result := make([]entity.Rental, 0, len(f.rentals))
	for _, rental := range f.rentals {
		result = append(result, rental)
	}
	return result
}

// fakeClock is a controllable clock for window boundary tests.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}
