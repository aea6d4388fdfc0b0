package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"inkwell/internal/model"
)

type notificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (sender_id, receiver_id, reference_id, type, title, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, read, created_at
	`
	row := r.db.QueryRowxContext(ctx, query,
		n.SenderID, n.ReceiverID, n.ReferenceID, n.Type, n.Title, n.Message)
	if err := row.Scan(&n.ID, &n.Read, &n.CreatedAt); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// Remove deletes the notification matching a retracted event. Deleting an
// already-absent record is not an error.
func (r *notificationRepository) Remove(ctx context.Context, senderID, receiverID, referenceID int64) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM notifications
		WHERE sender_id = $1 AND receiver_id = $2 AND reference_id = $3
	`, senderID, receiverID, referenceID)
	if err != nil {
		return fmt.Errorf("delete notification: %w", err)
	}
	return nil
}

type notificationJoinRow struct {
	model.Notification
	SenderRow creatorRow `db:"sender"`
}

// ListByReceiver returns a user's notifications with senders joined, newest
// first, plus the unread count computed from the same fetch.
func (r *notificationRepository) ListByReceiver(ctx context.Context, receiverID int64, limit int) ([]model.Notification, int, error) {
	query := `
		SELECT n.id, n.sender_id, n.receiver_id, n.reference_id, n.type, n.title,
		       n.message, n.read, n.created_at,
		       u.id AS "sender.id", u.email AS "sender.email", u.username AS "sender.username",
		       u.profile_picture AS "sender.profile_picture", u.bio AS "sender.bio",
		       u.location AS "sender.location", u.position AS "sender.position",
		       u.skills AS "sender.skills", u.backdrop AS "sender.backdrop",
		       u.posts_count AS "sender.posts_count", u.bookmarks_count AS "sender.bookmarks_count",
		       u.followers_count AS "sender.followers_count", u.following_count AS "sender.following_count",
		       u.created_at AS "sender.created_at", u.updated_at AS "sender.updated_at"
		FROM notifications n
		JOIN users u ON u.id = n.sender_id
		WHERE n.receiver_id = $1
		ORDER BY n.created_at DESC
		LIMIT $2
	`
	var rows []notificationJoinRow
	err := r.db.SelectContext(ctx, &rows, query, receiverID, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}

	notifications := make([]model.Notification, len(rows))
	unread := 0
	for i, row := range rows {
		notifications[i] = row.Notification
		notifications[i].Sender = row.SenderRow.toUser()
		if !row.Read {
			unread++
		}
	}
	return notifications, unread, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, receiverID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = true WHERE receiver_id = $1 AND read = false`,
		receiverID)
	if err != nil {
		return fmt.Errorf("mark notifications read: %w", err)
	}
	return nil
}
