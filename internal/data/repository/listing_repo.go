package repository

import (
	"context"
	"fmt"

	"golfbag-rental/internal/data/entity"
	"golfbag-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *entity.BagListing) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.BagListing, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.BagListing, error)
}

type listingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewListingRepository(db database.PgxIface, log *zap.Logger) ListingRepository {
	return &listingRepository{
		db:  db,
		log: log.With(zap.String("repository", "listing")),
	}
}

func (r *listingRepository) Create(ctx context.Context, listing *entity.BagListing) error {
	query := `
		INSERT INTO bag_listings (id, owner_id, title, description, price_per_day, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		listing.ID,
		listing.OwnerID,
		listing.Title,
		listing.Description,
		listing.PricePerDay,
		listing.CreatedAt,
		listing.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to create listing",
			zap.Error(err),
			zap.String("listing_id", listing.ID.String()),
			zap.String("owner_id", listing.OwnerID.String()),
		)
		return fmt.Errorf("create listing %s: %w", listing.ID.String(), err)
	}

	return nil
}

func (r *listingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.BagListing, error) {
	query := `
		SELECT id, owner_id, title, description, price_per_day, created_at, updated_at
		FROM bag_listings
		WHERE id = $1
	`

	var listing entity.BagListing
	err := r.db.QueryRow(ctx, query, id).Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Title,
		&listing.Description,
		&listing.PricePerDay,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find listing by ID",
			zap.Error(err),
			zap.String("listing_id", id.String()),
		)
		return nil, fmt.Errorf("find listing by ID %s: %w", id.String(), err)
	}

	return &listing, nil
}

func (r *listingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]*entity.BagListing, error) {
	query := `
		SELECT id, owner_id, title, description, price_per_day, created_at, updated_at
		FROM bag_listings
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		r.log.Error("Failed to find listings by owner ID",
			zap.Error(err),
			zap.String("owner_id", ownerID.String()),
		)
		return nil, fmt.Errorf("find listings by owner ID %s: %w", ownerID.String(), err)
	}
	defer rows.Close()

	var listings []*entity.BagListing
	for rows.Next() {
		var listing entity.BagListing
		err := rows.Scan(
			&listing.ID,
			&listing.OwnerID,
			&listing.Title,
			&listing.Description,
			&listing.PricePerDay,
			&listing.CreatedAt,
			&listing.UpdatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan listing row", zap.Error(err))
			return nil, fmt.Errorf("scan listing row: %w", err)
		}
		listings = append(listings, &listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listing rows: %w", err)
	}

	return listings, nil
}
