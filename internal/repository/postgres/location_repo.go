package postgres

import (
	"context"
	"fmt"

	"github.com/bwise1/upzunction/internal/db"
	"github.com/bwise1/upzunction/internal/model"
)

type LocationRepo struct {
	DB *db.DB
}

func (r *LocationRepo) ListLocations(ctx context.Context, city string) ([]model.Location, error) {
	rows, err := r.DB.Conn(ctx).Query(ctx,
		`SELECT id, name, city FROM locations WHERE city = $1 ORDER BY name`, city)
	if err != nil {
		return nil, fmt.Errorf("query locations: %w", err)
	}
	defer rows.Close()

	locations := []model.Location{}
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.City); err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

func (r *LocationRepo) GetLocation(ctx context.Context, id int64) (*model.Location, error) {
	var loc model.Location
	err := r.DB.Conn(ctx).QueryRow(ctx, `SELECT id, name, city FROM locations WHERE id = $1`, id).
		Scan(&loc.ID, &loc.Name, &loc.City)
	if err != nil {
		return nil, translate(err)
	}
	return &loc, nil
}

// CreateLocation adds a location. Locations are managed by operators, not through the API.
func (r *LocationRepo) CreateLocation(ctx context.Context, name, city string) (*model.Location, error) {
	loc := model.Location{Name: name, City: city}
	err := r.DB.Conn(ctx).QueryRow(ctx,
		`INSERT INTO locations (name, city) VALUES ($1, $2) RETURNING id`, name, city).Scan(&loc.ID)
	if err != nil {
		return nil, fmt.Errorf("insert location: %w", err)
	}
	return &loc, nil
}
