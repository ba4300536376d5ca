package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/internal/logger"
	"github.com/bwise1/upzunction/internal/metrics"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/util"
	"github.com/google/uuid"
)

// maxTitleLength counts characters, not bytes.
const maxTitleLength = 200

type ListingService struct {
	listings  ListingRepository
	messages  MessageRepository
	locations LocationRepository
	tx        Transactor
	metrics   *metrics.Metrics
	logger    *logger.Logger
	city      string

	// Now is the clock used for creation and visibility. Tests replace it.
	Now func() time.Time
}

type ListingServiceConfig struct {
	Listings  ListingRepository
	Messages  MessageRepository
	Locations LocationRepository
	Tx        Transactor
	Metrics   *metrics.Metrics
	Logger    *logger.Logger
	City      string
}

func NewListingService(cfg ListingServiceConfig) *ListingService {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &ListingService{
		listings:  cfg.Listings,
		messages:  cfg.Messages,
		locations: cfg.Locations,
		tx:        cfg.Tx,
		metrics:   cfg.Metrics,
		logger:    cfg.Logger,
		city:      cfg.City,
		Now:       time.Now,
	}
}

func (s *ListingService) Create(ctx context.Context, authorID uuid.UUID, req model.ListingRequest) (*model.Listing, error) {
	listing := &model.Listing{ID: uuid.New(), AuthorID: authorID}
	if err := s.applyContent(ctx, listing, req); err != nil {
		return nil, err
	}

	now := s.Now().UTC()
	listing.CreatedAt = now
	listing.ExpiresAt = now.Add(model.ListingLifetime)
	listing.IsActive = true

	if err := s.listings.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("creating listing: %w", err)
	}
	s.metrics.IncrementListingsCreated()
	s.logger.Info("listing created", "listing_id", listing.ID, "author_id", authorID)
	return listing, nil
}

func (s *ListingService) Edit(ctx context.Context, listingID, authorID uuid.UUID, req model.ListingRequest) (*model.Listing, error) {
	var listing *model.Listing
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		listing, err = s.ownedListing(ctx, listingID, authorID)
		if err != nil {
			return err
		}
		if err := s.applyContent(ctx, listing, req); err != nil {
			return err
		}
		if err := s.listings.UpdateListingContent(ctx, listing); err != nil {
			if errors.Is(err, apperr.ErrRecordNotFound) {
				return apperr.NotFound("listing not found")
			}
			return fmt.Errorf("updating listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// Deactivate hides the listing from the feed. Deactivating an inactive listing is a no-op.
func (s *ListingService) Deactivate(ctx context.Context, listingID, authorID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		listing, err := s.ownedListing(ctx, listingID, authorID)
		if err != nil {
			return err
		}
		if !listing.IsActive {
			return nil
		}
		if err := s.listings.DeactivateListing(ctx, listingID); err != nil {
			return fmt.Errorf("deactivating listing: %w", err)
		}
		return nil
	})
}

// Delete removes the listing together with every message sent about it.
func (s *ListingService) Delete(ctx context.Context, listingID, authorID uuid.UUID) error {
	return s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := s.ownedListing(ctx, listingID, authorID); err != nil {
			return err
		}
		if err := s.messages.DeleteMessagesByListing(ctx, listingID); err != nil {
			return fmt.Errorf("deleting listing messages: %w", err)
		}
		if err := s.listings.DeleteListing(ctx, listingID); err != nil {
			return fmt.Errorf("deleting listing: %w", err)
		}
		s.logger.Info("listing deleted", "listing_id", listingID, "author_id", authorID)
		return nil
	})
}

// ListVisible returns the feed, newest first. With a location it returns every
// visible listing tagged with that location; without one it returns the
// listings that are not restricted to a location.
func (s *ListingService) ListVisible(ctx context.Context, locationID *int64) ([]model.Listing, error) {
	listings, err := s.listings.ListVisibleListings(ctx, s.Now().UTC(), locationID)
	if err != nil {
		return nil, fmt.Errorf("listing feed: %w", err)
	}
	return listings, nil
}

func (s *ListingService) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Listing, error) {
	listings, err := s.listings.ListListingsByAuthor(ctx, authorID)
	if err != nil {
		return nil, fmt.Errorf("listing author listings: %w", err)
	}
	return listings, nil
}

// Get returns a listing that is visible, or any listing to its own author.
func (s *ListingService) Get(ctx context.Context, listingID, viewerID uuid.UUID) (*model.Listing, error) {
	listing, err := s.listing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.AuthorID == viewerID {
		return listing, nil
	}
	if !listing.IsActive || !listing.ExpiresAt.After(s.Now()) {
		return nil, apperr.NotFound("listing not found")
	}
	return listing, nil
}

// Locations lists the selectable locations of the configured city, ordered by name.
func (s *ListingService) Locations(ctx context.Context) ([]model.Location, error) {
	locations, err := s.locations.ListLocations(ctx, s.city)
	if err != nil {
		return nil, fmt.Errorf("listing locations: %w", err)
	}
	return locations, nil
}

// SweepExpired deactivates every active listing whose expiry has passed.
func (s *ListingService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.listings.DeactivateExpiredListings(ctx, s.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweeping expired listings: %w", err)
	}
	s.metrics.AddListingsSwept(n)
	return n, nil
}

func (s *ListingService) listing(ctx context.Context, id uuid.UUID) (*model.Listing, error) {
	listing, err := s.listings.GetListing(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrRecordNotFound) {
			return nil, apperr.NotFound("listing not found")
		}
		return nil, fmt.Errorf("fetching listing: %w", err)
	}
	return listing, nil
}

func (s *ListingService) ownedListing(ctx context.Context, id, authorID uuid.UUID) (*model.Listing, error) {
	listing, err := s.listing(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing.AuthorID != authorID {
		return nil, apperr.Permission("you can only manage your own listings")
	}
	return listing, nil
}

func (s *ListingService) applyContent(ctx context.Context, listing *model.Listing, req model.ListingRequest) error {
	title := strings.TrimSpace(req.Title)
	description := strings.TrimSpace(req.Description)
	if !util.NotBlank(title) {
		return apperr.Validation("title is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return apperr.Validation("title must be at most 200 characters")
	}
	if !util.NotBlank(description) {
		return apperr.Validation("description is required")
	}

	phone := util.TrimmedPtr(req.PhoneNumber)
	whatsapp := util.TrimmedPtr(req.WhatsappNumber)
	if phone != nil && !util.IsPhone(*phone) {
		return apperr.Validation("phone number is invalid")
	}
	if whatsapp != nil && !util.IsPhone(*whatsapp) {
		return apperr.Validation("whatsapp number is invalid")
	}

	if req.LocationID != nil {
		loc, err := s.locations.GetLocation(ctx, *req.LocationID)
		if err != nil {
			if errors.Is(err, apperr.ErrRecordNotFound) {
				return apperr.Validation("location does not exist")
			}
			return fmt.Errorf("fetching location: %w", err)
		}
		// Locations of other cities are not offered in the feed.
		if s.city != "" && !strings.EqualFold(loc.City, s.city) {
			return apperr.Validation("location does not exist")
		}
	}

	listing.Title = title
	listing.Description = description
	listing.LocationID = req.LocationID
	listing.IsLocationSpecific = req.IsLocationSpecific
	listing.PhoneNumber = phone
	listing.WhatsappNumber = whatsapp
	return nil
}
