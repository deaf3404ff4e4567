package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golfbag-rental/internal/data/entity"
	"golfbag-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrStaleTransition is returned when a conditional status update matched
// no row: the rental left the expected status between read and write.
var ErrStaleTransition = errors.New("rental status precondition no longer holds")

// RangeConflictError reports the date ranges already holding a listing
// when a reservation attempt is rejected.
type RangeConflictError struct {
	Blocked []entity.DateRange
}

func (e *RangeConflictError) Error() string {
	ranges := make([]string, len(e.Blocked))
	for i, r := range e.Blocked {
		ranges[i] = r.String()
	}
	return fmt.Sprintf("dates are not available: %s", strings.Join(ranges, ", "))
}

type RentalRepository interface {
	// CreateIfAvailable atomically re-checks availability and inserts the
	// rental. All reservation attempts on the same listing are serialized,
	// so two concurrent calls with overlapping ranges can never both
	// succeed. Returns *RangeConflictError when the range is taken.
	CreateIfAvailable(ctx context.Context, rental *entity.Rental) error

	FindByID(ctx context.Context, id uuid.UUID) (*entity.Rental, error)
	FindByRenterID(ctx context.Context, renterID uuid.UUID, limit, offset int) ([]*entity.Rental, error)
	CountByRenterID(ctx context.Context, renterID uuid.UUID) (int64, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Rental, error)
	CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error)

	// FindOverlapping returns holding-status rentals on the listing whose
	// inclusive date ranges overlap the candidate range.
	FindOverlapping(ctx context.Context, listingID uuid.UUID, rng entity.DateRange) ([]*entity.Rental, error)
	FindHoldingByListingID(ctx context.Context, listingID uuid.UUID) ([]*entity.Rental, error)

	// UpdateTransition persists the rental's mutable fields, guarded on the
	// status it was read in. Returns ErrStaleTransition when the guard no
	// longer matches.
	UpdateTransition(ctx context.Context, rental *entity.Rental, from entity.RentalStatus) error

	// ExpireStale transitions every pending_payment rental whose payment
	// window has lapsed to expired, in one batch. Idempotent by the status
	// guard; returns the number of rows transitioned.
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

type rentalRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewRentalRepository(db database.PgxIface, log *zap.Logger) RentalRepository {
	return &rentalRepository{
		db:  db,
		log: log.With(zap.String("repository", "rental")),
	}
}

const rentalColumns = `id, listing_id, renter_id, owner_id, start_date, end_date,
	total_days, price_per_day, total_amount,
	payment_status, payment_intent_id, paid_at,
	refund_amount, refunded_at,
	status, cancelled_at, cancelled_by, cancellation_reason, expires_at,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRental(row rowScanner) (*entity.Rental, error) {
	var rental entity.Rental
	var refund decimal.NullDecimal

	err := row.Scan(
		&rental.ID,
		&rental.ListingID,
		&rental.RenterID,
		&rental.OwnerID,
		&rental.StartDate,
		&rental.EndDate,
		&rental.TotalDays,
		&rental.PricePerDay,
		&rental.TotalAmount,
		&rental.PaymentStatus,
		&rental.PaymentIntentID,
		&rental.PaidAt,
		&refund,
		&rental.RefundedAt,
		&rental.Status,
		&rental.CancelledAt,
		&rental.CancelledBy,
		&rental.CancellationReason,
		&rental.ExpiresAt,
		&rental.CreatedAt,
		&rental.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if refund.Valid {
		rental.RefundAmount = &refund.Decimal
	}

	return &rental, nil
}

func holdingStatusStrings() []string {
	statuses := make([]string, len(entity.HoldingStatuses))
	for i, s := range entity.HoldingStatuses {
		statuses[i] = string(s)
	}
	return statuses
}

func (r *rentalRepository) CreateIfAvailable(ctx context.Context, rental *entity.Rental) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin reservation transaction", zap.Error(err))
		return fmt.Errorf("begin reservation transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Serialize all reservation attempts on this listing. The advisory
	// lock is held until commit or rollback, so the overlap check and the
	// insert below behave as one atomic reservation.
	lockQuery := `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
	if _, err := tx.Exec(ctx, lockQuery, rental.ListingID.String()); err != nil {
		r.log.Error("Failed to acquire listing lock",
			zap.Error(err),
			zap.String("listing_id", rental.ListingID.String()),
		)
		return fmt.Errorf("acquire listing lock %s: %w", rental.ListingID.String(), err)
	}

	overlapQuery := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE listing_id = $1
		  AND status = ANY($2)
		  AND start_date <= $4 AND end_date >= $3
		ORDER BY start_date
	`

	rows, err := tx.Query(ctx, overlapQuery,
		rental.ListingID,
		holdingStatusStrings(),
		rental.StartDate,
		rental.EndDate,
	)
	if err != nil {
		r.log.Error("Failed to check overlapping rentals",
			zap.Error(err),
			zap.String("listing_id", rental.ListingID.String()),
		)
		return fmt.Errorf("check overlapping rentals for listing %s: %w", rental.ListingID.String(), err)
	}

	var blocked []entity.DateRange
	for rows.Next() {
		existing, err := scanRental(rows)
		if err != nil {
			rows.Close()
			return fmt.Errorf("scan rental row: %w", err)
		}
		blocked = append(blocked, existing.Range())
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate overlapping rentals: %w", err)
	}

	if len(blocked) > 0 {
		return &RangeConflictError{Blocked: blocked}
	}

	insertQuery := `
		INSERT INTO rentals (` + rentalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	_, err = tx.Exec(ctx, insertQuery,
		rental.ID,
		rental.ListingID,
		rental.RenterID,
		rental.OwnerID,
		rental.StartDate,
		rental.EndDate,
		rental.TotalDays,
		rental.PricePerDay,
		rental.TotalAmount,
		rental.PaymentStatus,
		rental.PaymentIntentID,
		rental.PaidAt,
		rental.RefundAmount,
		rental.RefundedAt,
		rental.Status,
		rental.CancelledAt,
		rental.CancelledBy,
		rental.CancellationReason,
		rental.ExpiresAt,
		rental.CreatedAt,
		rental.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to insert rental",
			zap.Error(err),
			zap.String("rental_id", rental.ID.String()),
			zap.String("listing_id", rental.ListingID.String()),
		)
		return fmt.Errorf("insert rental %s: %w", rental.ID.String(), err)
	}

	return tx.Commit(ctx)
}

func (r *rentalRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Rental, error) {
	query := `SELECT ` + rentalColumns + ` FROM rentals WHERE id = $1`

	rental, err := scanRental(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find rental by ID",
			zap.Error(err),
			zap.String("rental_id", id.String()),
		)
		return nil, fmt.Errorf("find rental by ID %s: %w", id.String(), err)
	}

	return rental, nil
}

func (r *rentalRepository) FindByRenterID(ctx context.Context, renterID uuid.UUID, limit, offset int) ([]*entity.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE renter_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryRentals(ctx, query, renterID, limit, offset)
}

func (r *rentalRepository) CountByRenterID(ctx context.Context, renterID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM rentals WHERE renter_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, renterID).Scan(&count); err != nil {
		r.log.Error("Failed to count rentals by renter ID",
			zap.Error(err),
			zap.String("renter_id", renterID.String()),
		)
		return 0, fmt.Errorf("count rentals by renter ID %s: %w", renterID.String(), err)
	}

	return count, nil
}

func (r *rentalRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*entity.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE owner_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	return r.queryRentals(ctx, query, ownerID, limit, offset)
}

func (r *rentalRepository) CountByOwnerID(ctx context.Context, ownerID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM rentals WHERE owner_id = $1`

	var count int64
	if err := r.db.QueryRow(ctx, query, ownerID).Scan(&count); err != nil {
		r.log.Error("Failed to count rentals by owner ID",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return 0, fmt.Errorf("count rentals by owner ID %s: %w", ownerID.String(), err)
	}

	return count, nil
}

func (r *rentalRepository) FindOverlapping(ctx context.Context, listingID uuid.UUID, rng entity.DateRange) ([]*entity.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE listing_id = $1
		  AND status = ANY($2)
		  AND start_date <= $4 AND end_date >= $3
		ORDER BY start_date
	`

	return r.queryRentals(ctx, query, listingID, holdingStatusStrings(), rng.Start, rng.End)
}

func (r *rentalRepository) FindHoldingByListingID(ctx context.Context, listingID uuid.UUID) ([]*entity.Rental, error) {
	query := `
		SELECT ` + rentalColumns + `
		FROM rentals
		WHERE listing_id = $1
		  AND status = ANY($2)
		ORDER BY start_date
	`

	return r.queryRentals(ctx, query, listingID, holdingStatusStrings())
}

func (r *rentalRepository) queryRentals(ctx context.Context, query string, args ...any) ([]*entity.Rental, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.log.Error("Failed to query rentals", zap.Error(err))
		return nil, fmt.Errorf("query rentals: %w", err)
	}
	defer rows.Close()

	var rentals []*entity.Rental
	for rows.Next() {
		rental, err := scanRental(rows)
		if err != nil {
			r.log.Error("Failed to scan rental row", zap.Error(err))
			return nil, fmt.Errorf("scan rental row: %w", err)
		}
		rentals = append(rentals, rental)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rental rows: %w", err)
	}

	return rentals, nil
}

func (r *rentalRepository) UpdateTransition(ctx context.Context, rental *entity.Rental, from entity.RentalStatus) error {
	query := `
		UPDATE rentals
		SET status = $3, payment_status = $4, payment_intent_id = $5, paid_at = $6,
		    refund_amount = $7, refunded_at = $8,
		    cancelled_at = $9, cancelled_by = $10, cancellation_reason = $11,
		    expires_at = $12, updated_at = $13
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.Exec(ctx, query,
		rental.ID,
		from,
		rental.Status,
		rental.PaymentStatus,
		rental.PaymentIntentID,
		rental.PaidAt,
		rental.RefundAmount,
		rental.RefundedAt,
		rental.CancelledAt,
		rental.CancelledBy,
		rental.CancellationReason,
		rental.ExpiresAt,
		rental.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to transition rental",
			zap.Error(err),
			zap.String("rental_id", rental.ID.String()),
			zap.String("from", string(from)),
			zap.String("to", string(rental.Status)),
		)
		return fmt.Errorf("transition rental %s from %s to %s: %w",
			rental.ID.String(), string(from), string(rental.Status), err)
	}

	if result.RowsAffected() == 0 {
		return ErrStaleTransition
	}

	return nil
}

func (r *rentalRepository) ExpireStale(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE rentals
		SET status = $1, expires_at = NULL, updated_at = $2
		WHERE status = $3 AND expires_at < $2
	`

	result, err := r.db.Exec(ctx, query,
		entity.RentalStatusExpired,
		now,
		entity.RentalStatusPendingPayment,
	)
	if err != nil {
		r.log.Error("Failed to expire stale rentals", zap.Error(err))
		return 0, fmt.Errorf("expire stale rentals: %w", err)
	}

	return result.RowsAffected(), nil
}
