package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwise1/upzunction/internal/apperr"
	"github.com/bwise1/upzunction/internal/logger"
	"github.com/bwise1/upzunction/internal/metrics"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/bwise1/upzunction/util"
	"github.com/google/uuid"
)

// ContactService runs the contact exchange: an interested user proposes contact
// on a listing, and the listing's author decides whether to share a number back.
type ContactService struct {
	listings ListingRepository
	messages MessageRepository
	tx       Transactor
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *logger.Logger

	Now func() time.Time
}

type ContactServiceConfig struct {
	Listings ListingRepository
	Messages MessageRepository
	Tx       Transactor
	Notifier Notifier
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
}

func NewContactService(cfg ContactServiceConfig) *ContactService {
	if cfg.Notifier == nil {
		cfg.Notifier = nopNotifier{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New(nil)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	return &ContactService{
		listings: cfg.Listings,
		messages: cfg.Messages,
		tx:       cfg.Tx,
		notifier: cfg.Notifier,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		Now:      time.Now,
	}
}

func (s *ContactService) ProposeContact(ctx context.Context, listingID, senderID uuid.UUID, req model.ProposeContactRequest) (*model.Message, error) {
	var message *model.Message
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.Now().UTC()
		listing, err := s.listings.GetListing(ctx, listingID)
		if err != nil {
			if errors.Is(err, apperr.ErrRecordNotFound) {
				return apperr.NotFound("listing not found")
			}
			return fmt.Errorf("fetching listing: %w", err)
		}
		if listing.AuthorID == senderID {
			return apperr.Permission("You cannot send a message to yourself.")
		}
		if !listing.IsActive || !listing.ExpiresAt.After(now) {
			return apperr.NotFound("listing not found")
		}

		body := strings.TrimSpace(req.Body)
		if body == "" {
			return apperr.Validation("message body is required")
		}
		phone := util.TrimmedPtr(req.SenderPhone)
		if phone != nil && !util.IsPhone(*phone) {
			return apperr.Validation("phone number is invalid")
		}

		message = &model.Message{
			ID:          uuid.New(),
			ListingID:   listing.ID,
			SenderID:    senderID,
			RecipientID: listing.AuthorID,
			Body:        body,
			SentAt:      now,
			SenderPhone: phone,
		}
		if err := s.messages.CreateMessage(ctx, message); err != nil {
			return fmt.Errorf("creating message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementContactsProposed()
	s.logger.Info("contact proposed", "message_id", message.ID, "listing_id", listingID, "sender_id", senderID)
	s.notifier.Notify(message.RecipientID, EventContactProposed, message)
	return message, nil
}

// ApproveContact approves a pending message. Only the recipient may approve,
// and a message is approved at most once.
func (s *ContactService) ApproveContact(ctx context.Context, messageID, approverID uuid.UUID, req model.ApproveContactRequest) (*model.Message, error) {
	phone := util.TrimmedPtr(req.RecipientPhone)
	if phone != nil && !util.IsPhone(*phone) {
		return nil, apperr.Validation("phone number is invalid")
	}

	var message *model.Message
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		message, err = s.messages.GetMessage(ctx, messageID)
		if err != nil {
			if errors.Is(err, apperr.ErrRecordNotFound) {
				return apperr.NotFound("message not found")
			}
			return fmt.Errorf("fetching message: %w", err)
		}
		if message.RecipientID != approverID {
			return apperr.Permission("only the recipient can approve this message")
		}
		if message.IsApproved {
			return apperr.State("message is already approved")
		}

		approved, err := s.messages.ApproveMessage(ctx, messageID, phone)
		if err != nil {
			return fmt.Errorf("approving message: %w", err)
		}
		if !approved {
			return apperr.State("message is already approved")
		}
		message.IsApproved = true
		message.RecipientPhoneOnApproval = phone
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncrementContactsApproved()
	s.logger.Info("contact approved", "message_id", messageID, "recipient_id", approverID)
	s.notifier.Notify(message.SenderID, EventContactApproved, message)
	return message, nil
}

// ListForUser returns the messages addressed to and sent by userID, each newest first.
func (s *ContactService) ListForUser(ctx context.Context, userID uuid.UUID) (*model.Inbox, error) {
	incoming, err := s.messages.ListIncomingMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing incoming messages: %w", err)
	}
	outgoing, err := s.messages.ListOutgoingMessages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing outgoing messages: %w", err)
	}
	return &model.Inbox{Incoming: incoming, Outgoing: outgoing}, nil
}
