package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bwise1/upzunction/internal/db"
	"github.com/jackc/pgx/v5"
)

type VisitRepo struct {
	DB *db.DB
}

// IncrementVisit creates the day's row or bumps it in one statement.
func (r *VisitRepo) IncrementVisit(ctx context.Context, date time.Time) error {
	_, err := r.DB.Conn(ctx).Exec(ctx, `
        INSERT INTO daily_visits (date, count) VALUES ($1, 1)
        ON CONFLICT (date) DO UPDATE SET count = daily_visits.count + 1`, date)
	if err != nil {
		return fmt.Errorf("increment visit: %w", err)
	}
	return nil
}

func (r *VisitRepo) GetVisitCount(ctx context.Context, date time.Time) (int64, error) {
	var n int64
	err := r.DB.Conn(ctx).QueryRow(ctx, `SELECT count FROM daily_visits WHERE date = $1`, date).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read visit count: %w", err)
	}
	return n, nil
}
