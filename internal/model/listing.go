package model

import (
	"time"

	"github.com/google/uuid"
)

// ListingLifetime is how long a listing stays in the feed after creation.
const ListingLifetime = 7 * 24 * time.Hour

type Listing struct {
	ID                 uuid.UUID `json:"id"`
	AuthorID           uuid.UUID `json:"author_id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	LocationID         *int64    `json:"location_id,omitempty"`
	IsLocationSpecific bool      `json:"is_location_specific"`
	PhoneNumber        *string   `json:"phone_number,omitempty"`
	WhatsappNumber     *string   `json:"whatsapp_number,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	ExpiresAt          time.Time `json:"expires_at"`
	IsActive           bool      `json:"is_active"`
}

// VisibleAt reports whether the listing belongs in the general feed at now.
func (l Listing) VisibleAt(now time.Time) bool {
	if !l.IsActive || !l.ExpiresAt.After(now) {
		return false
	}
	return l.LocationID == nil || !l.IsLocationSpecific
}

// VisibleInLocationAt reports whether the listing belongs in the feed of locationID at now.
func (l Listing) VisibleInLocationAt(locationID int64, now time.Time) bool {
	return l.IsActive && l.ExpiresAt.After(now) && l.LocationID != nil && *l.LocationID == locationID
}

// Expired reports whether the sweeper should retire the listing at now.
func (l Listing) Expired(now time.Time) bool {
	return l.IsActive && !l.ExpiresAt.After(now)
}

type ListingRequest struct {
	Title              string  `json:"title" validate:"required,max=200"`
	Description        string  `json:"description" validate:"required"`
	LocationID         *int64  `json:"location_id,omitempty"`
	IsLocationSpecific bool    `json:"is_location_specific"`
	PhoneNumber        *string `json:"phone_number,omitempty" validate:"omitempty,phone"`
	WhatsappNumber     *string `json:"whatsapp_number,omitempty" validate:"omitempty,phone"`
}

type FeedResponse struct {
	Listings          []Listing  `json:"listings"`
	Locations         []Location `json:"locations"`
	CurrentLocationID *int64     `json:"current_location_id,omitempty"`
}
