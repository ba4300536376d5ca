package postgres

import (
	"context"
	"fmt"

	"github.com/bwise1/upzunction/internal/db"
	"github.com/bwise1/upzunction/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const messageColumns = `
    id, listing_id, sender_id, recipient_id, body, sent_at, sender_phone,
    is_approved, recipient_phone_on_approval`

type MessageRepo struct {
	DB *db.DB
}

func (r *MessageRepo) CreateMessage(ctx context.Context, m *model.Message) error {
	query := `
        INSERT INTO messages (` + messageColumns + `)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.DB.Conn(ctx).Exec(ctx, query,
		m.ID, m.ListingID, m.SenderID, m.RecipientID, m.Body, m.SentAt, m.SenderPhone,
		m.IsApproved, m.RecipientPhoneOnApproval,
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", translate(err))
	}
	return nil
}

func (r *MessageRepo) GetMessage(ctx context.Context, id uuid.UUID) (*model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = $1`
	m, err := scanMessage(r.DB.Conn(ctx).QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// ApproveMessage only touches pending rows, so of two racing approvals exactly one reports true.
func (r *MessageRepo) ApproveMessage(ctx context.Context, id uuid.UUID, recipientPhone *string) (bool, error) {
	tag, err := r.DB.Conn(ctx).Exec(ctx, `
        UPDATE messages
        SET is_approved = TRUE, recipient_phone_on_approval = $2
        WHERE id = $1 AND is_approved = FALSE`, id, recipientPhone)
	if err != nil {
		return false, fmt.Errorf("approve message: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *MessageRepo) DeleteMessagesByListing(ctx context.Context, listingID uuid.UUID) error {
	_, err := r.DB.Conn(ctx).Exec(ctx, `DELETE FROM messages WHERE listing_id = $1`, listingID)
	if err != nil {
		return fmt.Errorf("delete listing messages: %w", err)
	}
	return nil
}

func (r *MessageRepo) ListIncomingMessages(ctx context.Context, recipientID uuid.UUID) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE recipient_id = $1 ORDER BY sent_at DESC`
	rows, err := r.DB.Conn(ctx).Query(ctx, query, recipientID)
	if err != nil {
		return nil, fmt.Errorf("query incoming messages: %w", err)
	}
	return collectMessages(rows)
}

func (r *MessageRepo) ListOutgoingMessages(ctx context.Context, senderID uuid.UUID) ([]model.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE sender_id = $1 ORDER BY sent_at DESC`
	rows, err := r.DB.Conn(ctx).Query(ctx, query, senderID)
	if err != nil {
		return nil, fmt.Errorf("query outgoing messages: %w", err)
	}
	return collectMessages(rows)
}

// CountMessagesByListing is used by the cascade checks.
func (r *MessageRepo) CountMessagesByListing(ctx context.Context, listingID uuid.UUID) (int64, error) {
	var n int64
	err := r.DB.Conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM messages WHERE listing_id = $1`, listingID).Scan(&n)
	return n, err
}

func scanMessage(row pgx.Row) (*model.Message, error) {
	var m model.Message
	err := row.Scan(
		&m.ID, &m.ListingID, &m.SenderID, &m.RecipientID, &m.Body, &m.SentAt, &m.SenderPhone,
		&m.IsApproved, &m.RecipientPhoneOnApproval,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func collectMessages(rows pgx.Rows) ([]model.Message, error) {
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return messages, nil
}
