package model

import (
	"time"

	"github.com/google/uuid"
)

// Message is a contact proposal on a listing. It is always addressed to the
// listing's author and stays pending until that author approves it.
type Message struct {
	ID                       uuid.UUID `json:"id"`
	ListingID                uuid.UUID `json:"listing_id"`
	SenderID                 uuid.UUID `json:"sender_id"`
	RecipientID              uuid.UUID `json:"recipient_id"`
	Body                     string    `json:"body"`
	SentAt                   time.Time `json:"sent_at"`
	SenderPhone              *string   `json:"sender_phone,omitempty"`
	IsApproved               bool      `json:"is_approved"`
	RecipientPhoneOnApproval *string   `json:"recipient_phone_on_approval,omitempty"`
}

func (m Message) Status() string {
	if m.IsApproved {
		return "approved"
	}
	return "pending"
}

type ProposeContactRequest struct {
	Body        string  `json:"message_body"`
	SenderPhone *string `json:"sender_phone,omitempty" validate:"omitempty,phone"`
}

type ApproveContactRequest struct {
	RecipientPhone *string `json:"recipient_phone,omitempty" validate:"omitempty,phone"`
}

// Inbox groups a user's messages: incoming are addressed to them, outgoing were sent by them.
type Inbox struct {
	Incoming []Message `json:"received_messages"`
	Outgoing []Message `json:"sent_messages"`
}

type DashboardResponse struct {
	Listings []Listing `json:"user_posts"`
	Inbox
}
