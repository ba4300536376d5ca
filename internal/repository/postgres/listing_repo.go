package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/internal/db"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const listingColumns = `
    id, author_id, title, description, location_id, is_location_specific,
    phone_number, whatsapp_number, created_at, expires_at, is_active`

type ListingRepo struct {
	DB *db.DB
}

func (r *ListingRepo) CreateListing(ctx context.Context, l *model.Listing) error {
	query := `
        INSERT INTO listings (` + listingColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.DB.Conn(ctx).Exec(ctx, query,
		l.ID, l.AuthorID, l.Title, l.Description, l.LocationID, l.IsLocationSpecific,
		l.PhoneNumber, l.WhatsappNumber, l.CreatedAt, l.ExpiresAt, l.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", translate(err))
	}
	return nil
}

func (r *ListingRepo) GetListing(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`
	listing, err := scanListing(r.DB.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return listing, nil
}

func (r *ListingRepo) UpdateListingContent(ctx context.Context, l *model.Listing) error {
	query := `
        UPDATE listings
        SET title = $2, description = $3, location_id = $4, is_location_specific = $5,
            phone_number = $6, whatsapp_number = $7
        WHERE id = $1`
	tag, err := r.DB.Conn(ctx).Exec(ctx, query,
		l.ID, l.Title, l.Description, l.LocationID, l.IsLocationSpecific, l.PhoneNumber, l.WhatsappNumber,
	)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrRecordNotFound
	}
	return nil
}

func (r *ListingRepo) DeactivateListing(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.Conn(ctx).Exec(ctx, `UPDATE listings SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate listing: %w", err)
	}
	return nil
}

func (r *ListingRepo) DeleteListing(ctx context.Context, id uuid.UUID) error {
	_, err := r.DB.Conn(ctx).Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}

func (r *ListingRepo) ListVisibleListings(ctx context.Context, now time.Time, locationID *int64) ([]model.Listing, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if locationID != nil {
		query := `
            SELECT ` + listingColumns + `
            FROM listings
            WHERE is_active AND expires_at > $1 AND location_id = $2
            ORDER BY created_at DESC`
		rows, err = r.DB.Conn(ctx).Query(ctx, query, now, *locationID)
	} else {
		query := `
            SELECT ` + listingColumns + `
            FROM listings
            WHERE is_active AND expires_at > $1
              AND (location_id IS NULL OR NOT is_location_specific)
            ORDER BY created_at DESC`
		rows, err = r.DB.Conn(ctx).Query(ctx, query, now)
	}
	if err != nil {
		return nil, fmt.Errorf("query feed: %w", err)
	}
	return collectListings(rows)
}

func (r *ListingRepo) ListListingsByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE author_id = $1 ORDER BY created_at DESC`
	rows, err := r.DB.Conn(ctx).Query(ctx, query, authorID)
	if err != nil {
		return nil, fmt.Errorf("query author listings: %w", err)
	}
	return collectListings(rows)
}

func (r *ListingRepo) DeactivateExpiredListings(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.DB.Conn(ctx).Exec(ctx,
		`UPDATE listings SET is_active = FALSE WHERE is_active AND expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("deactivate expired listings: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanListing(row pgx.Row) (*model.Listing, error) {
	var l model.Listing
	err := row.Scan(
		&l.ID, &l.AuthorID, &l.Title, &l.Description, &l.LocationID, &l.IsLocationSpecific,
		&l.PhoneNumber, &l.WhatsappNumber, &l.CreatedAt, &l.ExpiresAt, &l.IsActive,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectListings(rows pgx.Rows) ([]model.Listing, error) {
	defer rows.Close()

	listings := []model.Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}
