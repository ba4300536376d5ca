package deps

import (
	"context"
	"fmt"

	"github.com/bwise1/upzunction/config"
	"github.com/bwise1/upzunction/internal/account"
	"github.com/bwise1/upzunction/internal/board"
	"github.com/bwise1/upzunction/internal/db"
	"github.com/bwise1/upzunction/internal/logger"
	"github.com/bwise1/upzunction/internal/mailer"
	"github.com/bwise1/upzunction/internal/metrics"
	"github.com/bwise1/upzunction/internal/realtime"
	"github.com/bwise1/upzunction/internal/repository/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	DB       *db.DB
	Redis    *redis.Client
	Hub      *realtime.Hub
	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Listings *board.ListingService
	Contacts *board.ContactService
	Visits   *board.VisitCounter
	Sweeper  *board.Sweeper
	Accounts *account.Service
}

// New connects to Postgres and Redis and wires the services on top of them.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Dependencies, error) {
	database, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var sessions account.SessionStore
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			redisClient.Close()
			database.Close()
			return nil, fmt.Errorf("redis ping failed: %w", err)
		}
		sessions = account.NewRedisSessionStore(redisClient)
	} else {
		log.Warn("REDIS_ADDR is empty, keeping OTP sessions in memory")
		sessions = account.NewMemorySessionStore()
	}

	sender, err := mailer.NewSMTPSender(cfg)
	if err != nil {
		if redisClient != nil {
			redisClient.Close()
		}
		database.Close()
		return nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)
	hub := realtime.NewHub(log)

	listingRepo := &postgres.ListingRepo{DB: database}
	messageRepo := &postgres.MessageRepo{DB: database}

	listings := NewListingService(database, cfg, log, m)

	return &Dependencies{
		DB:       database,
		Redis:    redisClient,
		Hub:      hub,
		Registry: registry,
		Metrics:  m,
		Listings: listings,
		Contacts: board.NewContactService(board.ContactServiceConfig{
			Listings: listingRepo,
			Messages: messageRepo,
			Tx:       database,
			Notifier: hub,
			Metrics:  m,
			Logger:   log,
		}),
		Visits:  board.NewVisitCounter(&postgres.VisitRepo{DB: database}, m),
		Sweeper: board.NewSweeper(listings, cfg.SweepInterval, log),
		Accounts: account.NewService(account.Config{
			Users:    &postgres.UserRepo{DB: database},
			Profiles: &postgres.ProfileRepo{DB: database},
			Tx:       database,
			Sessions: sessions,
			Mail:     sender,
			Logger:   log,
		}),
	}, nil
}

// OpenDatabase connects to Postgres and applies the schema when APPLY_SCHEMA is set.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*db.DB, error) {
	database, err := db.New(cfg.Dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.ApplySchema {
		if err := database.ApplySchema(ctx); err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}

// NewListingService wires the listing lifecycle on Postgres alone. It needs
// neither Redis nor SMTP, so one-shot jobs can use it.
func NewListingService(database *db.DB, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) *board.ListingService {
	return board.NewListingService(board.ListingServiceConfig{
		Listings:  &postgres.ListingRepo{DB: database},
		Messages:  &postgres.MessageRepo{DB: database},
		Locations: &postgres.LocationRepo{DB: database},
		Tx:        database,
		Metrics:   m,
		Logger:    log,
		City:      cfg.DefaultCity,
	})
}

// Close releases the database pool and the Redis client.
func (d *Dependencies) Close() {
	if d.Redis != nil {
		_ = d.Redis.Close()
	}
	if d.DB != nil {
		d.DB.Close()
	}
}
