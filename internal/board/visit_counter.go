package board

import (
	"context"
	"fmt"
	"time"

	"github.com/bwise1/upzunction/internal/metrics"
)

// VisitCounter counts page views per calendar day (UTC).
type VisitCounter struct {
	visits  VisitRepository
	metrics *metrics.Metrics

	Now func() time.Time
}

func NewVisitCounter(visits VisitRepository, m *metrics.Metrics) *VisitCounter {
	if m == nil {
		m = metrics.New(nil)
	}
	return &VisitCounter{visits: visits, metrics: m, Now: time.Now}
}

func (c *VisitCounter) Record(ctx context.Context) error {
	if err := c.visits.IncrementVisit(ctx, Day(c.Now())); err != nil {
		return fmt.Errorf("recording visit: %w", err)
	}
	c.metrics.IncrementVisitsRecorded()
	return nil
}

// Count returns the visits recorded on the day containing date. A day without visits counts zero.
func (c *VisitCounter) Count(ctx context.Context, date time.Time) (int64, error) {
	n, err := c.visits.GetVisitCount(ctx, Day(date))
	if err != nil {
		return 0, fmt.Errorf("reading visit count: %w", err)
	}
	return n, nil
}

// Today returns today's count.
func (c *VisitCounter) Today(ctx context.Context) (int64, error) {
	return c.Count(ctx, c.Now())
}

// Day truncates t to midnight UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
