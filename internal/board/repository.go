// Package board holds the classifieds workflows: listing lifecycle, the feed,
// contact exchange between a listing's author and interested users, the expiry
// sweeper and the daily visit counter.
package board

import (
	"context"
	"time"

	"github.com/bwise1/upzunction/internal/model"
	"github.com/google/uuid"
)

type ListingRepository interface {
	CreateListing(ctx context.Context, listing *model.Listing) error
	GetListing(ctx context.Context, id uuid.UUID) (*model.Listing, error)
	// UpdateListingContent writes the editable fields only.
	UpdateListingContent(ctx context.Context, listing *model.Listing) error
	DeactivateListing(ctx context.Context, id uuid.UUID) error
	// DeleteListing removes the row. A row that is already gone is not an error.
	DeleteListing(ctx context.Context, id uuid.UUID) error
	// ListVisibleListings returns active unexpired listings, newest first. A nil
	// locationID selects the general feed.
	ListVisibleListings(ctx context.Context, now time.Time, locationID *int64) ([]model.Listing, error)
	ListListingsByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Listing, error)
	// DeactivateExpiredListings flips is_active on every active listing with
	// expires_at <= now and returns how many rows changed.
	DeactivateExpiredListings(ctx context.Context, now time.Time) (int64, error)
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, message *model.Message) error
	GetMessage(ctx context.Context, id uuid.UUID) (*model.Message, error)
	// ApproveMessage approves a pending message. It reports false when the
	// message was already approved and leaves it untouched.
	ApproveMessage(ctx context.Context, id uuid.UUID, recipientPhone *string) (bool, error)
	DeleteMessagesByListing(ctx context.Context, listingID uuid.UUID) error
	ListIncomingMessages(ctx context.Context, recipientID uuid.UUID) ([]model.Message, error)
	ListOutgoingMessages(ctx context.Context, senderID uuid.UUID) ([]model.Message, error)
}

type VisitRepository interface {
	IncrementVisit(ctx context.Context, date time.Time) error
	GetVisitCount(ctx context.Context, date time.Time) (int64, error)
}

type LocationRepository interface {
	ListLocations(ctx context.Context, city string) ([]model.Location, error)
	GetLocation(ctx context.Context, id int64) (*model.Location, error)
}

// Transactor runs fn in a transaction. Repository calls made with the ctx
// passed to fn join it.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier pushes an event to a connected user.
type Notifier interface {
	Notify(userID uuid.UUID, event string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Notify(uuid.UUID, string, any) {}

// Contact events pushed through the Notifier.
const (
	EventContactProposed = "contact.proposed"
	EventContactApproved = "contact.approved"
)
