package repository

import (
	"context"
	"fmt"

	"mealmaker-backend/database"
	"mealmaker-backend/models"
)

type ListingRepository interface {
	Create(ctx context.Context, listing *models.FridgeListing) error
	GetByID(ctx context.Context, id string) (*models.FridgeListing, error)
	ListByStatus(ctx context.Context, status models.ListingStatus) ([]models.FridgeListing, error)
	ListByUser(ctx context.Context, userID string) ([]models.FridgeListing, error)
	Claim(ctx context.Context, id, claimedBy, claimedByName string) (*models.FridgeListing, error)
	SoftDelete(ctx context.Context, id string) (bool, error)
	WithTx(tx database.Querier) ListingRepository
}

type listingRepository struct {
	db *database.DB
	tx database.Querier
}

func NewListingRepository(db *database.DB) ListingRepository {
	return &listingRepository{db: db}
}

func (r *listingRepository) WithTx(tx database.Querier) ListingRepository {
	return &listingRepository{db: r.db, tx: tx}
}

func (r *listingRepository) getQuerier() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db.Pool
}

const listingColumns = `id, user_id, user_display_name, title, description, items, quantity,
	expiry_hint, pickup_instructions, image_url, status, claimed_by, claimed_by_name,
	created_at, updated_at`

func (r *listingRepository) Create(ctx context.Context, l *models.FridgeListing) error {
	query := `INSERT INTO fridge_listings (` + listingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
		RETURNING created_at, updated_at`
	err := r.getQuerier().QueryRow(ctx, query,
		l.ID, l.UserID, l.UserDisplayName, l.Title, l.Description, l.Items, l.Quantity,
		l.ExpiryHint, l.PickupInstructions, l.ImageURL, l.Status, l.ClaimedBy, l.ClaimedByName,
	).Scan(&l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating listing: %w", err)
	}
	return nil
}

func (r *listingRepository) GetByID(ctx context.Context, id string) (*models.FridgeListing, error) {
	query := `SELECT ` + listingColumns + ` FROM fridge_listings WHERE id = $1`
	l, err := scanListing(r.getQuerier().QueryRow(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("getting listing: %w", err)
	}
	return l, nil
}

func (r *listingRepository) ListByStatus(ctx context.Context, status models.ListingStatus) ([]models.FridgeListing, error) {
	query := `SELECT ` + listingColumns + ` FROM fridge_listings
		WHERE status = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, status)
}

func (r *listingRepository) ListByUser(ctx context.Context, userID string) ([]models.FridgeListing, error) {
	query := `SELECT ` + listingColumns + ` FROM fridge_listings
		WHERE user_id = $1 AND status <> 'deleted' ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *listingRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.FridgeListing, error) {
	rows, err := r.getQuerier().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying listings: %w", err)
	}
	defer rows.Close()

	listings := []models.FridgeListing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating listings: %w", err)
	}
	return listings, nil
}

// Claim only succeeds while the listing is still available. A nil listing
// with a nil error means someone else got there first or it is gone.
func (r *listingRepository) Claim(ctx context.Context, id, claimedBy, claimedByName string) (*models.FridgeListing, error) {
	query := `UPDATE fridge_listings
		SET status = 'claimed', claimed_by = $2, claimed_by_name = $3, updated_at = NOW()
		WHERE id = $1 AND status = 'available'
		RETURNING ` + listingColumns
	l, err := scanListing(r.getQuerier().QueryRow(ctx, query, id, claimedBy, claimedByName))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("claiming listing: %w", err)
	}
	return l, nil
}

func (r *listingRepository) SoftDelete(ctx context.Context, id string) (bool, error) {
	query := `UPDATE fridge_listings SET status = 'deleted', updated_at = NOW()
		WHERE id = $1 AND status <> 'deleted'`
	tag, err := r.getQuerier().Exec(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("deleting listing: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanListing(row rowScanner) (*models.FridgeListing, error) {
	var l models.FridgeListing
	if err := row.Scan(
		&l.ID, &l.UserID, &l.UserDisplayName, &l.Title, &l.Description, &l.Items, &l.Quantity,
		&l.ExpiryHint, &l.PickupInstructions, &l.ImageURL, &l.Status, &l.ClaimedBy, &l.ClaimedByName,
		&l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if l.Items == nil {
		l.Items = []string{}
	}
	return &l, nil
}
