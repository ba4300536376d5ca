//go:build integration

package deps

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/bwise1/upzunction/config"
	"github.com/bwise1/upzunction/internal/logger"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/internal/repository/postgres"
)

func TestSweepNeedsOnlyPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("upzunction"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	defer func() { _ = container.Terminate(ctx) }()

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// No Redis and no SMTP settings.
	cfg := &config.Config{Dsn: dsn, ApplySchema: true, DefaultCity: "Lucknow"}

	database, err := OpenDatabase(ctx, cfg)
	require.NoError(t, err)
	defer database.Close()

	author := &model.User{
		ID:           uuid.New(),
		Username:     "asha",
		Email:        "asha@example.com",
		PasswordHash: "x",
		IsActive:     true,
		DateJoined:   time.Now().UTC(),
	}
	require.NoError(t, (&postgres.UserRepo{DB: database}).CreateUser(ctx, author))

	created := time.Now().UTC().Add(-8 * 24 * time.Hour)
	require.NoError(t, (&postgres.ListingRepo{DB: database}).CreateListing(ctx, &model.Listing{
		ID:          uuid.New(),
		AuthorID:    author.ID,
		Title:       "Bicycle",
		Description: "Barely used",
		CreatedAt:   created,
		ExpiresAt:   created.Add(model.ListingLifetime),
		IsActive:    true,
	}))

	n, err := NewListingService(database, cfg, logger.Nop(), nil).SweepExpired(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}
