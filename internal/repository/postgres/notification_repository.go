package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/jmoiron/sqlx"
)

type notificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *notificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) UsersInGroup(ctx context.Context, group string) ([]int64, error) {
	query := `
		SELECT DISTINCT ug.user_id
		FROM user_groups ug
		JOIN users u ON u.id = ug.user_id
		WHERE LOWER(ug.group_name) = LOWER($1) AND u.is_active
		ORDER BY ug.user_id
	`
	var ids []int64
	if err := sqlx.SelectContext(ctx, r.db, &ids, query, group); err != nil {
		return nil, fmt.Errorf("failed to list users in group: %w", err)
	}
	return ids, nil
}

// CreateNotifications inserts the batch in one transaction and returns it with
// the ids and timestamps assigned by the database
func (r *notificationRepository) CreateNotifications(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error) {
	out := make([]domain.Notification, 0, len(notifications))

	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		stmt, err := tx.PrepareNamedContext(ctx, `
			INSERT INTO notifications (user_id, title, message, type, link, is_read)
			VALUES (:user_id, :title, :message, :type, :link, :is_read)
			RETURNING id, created_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare notification insert: %w", err)
		}
		defer stmt.Close()

		for _, n := range notifications {
			if err := stmt.QueryRowxContext(ctx, n).Scan(&n.ID, &n.CreatedAt); err != nil {
				return fmt.Errorf("failed to insert notification for user %d: %w", n.UserID, err)
			}
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepository) ListNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	query := `
		SELECT id, user_id, title, message, type, link, is_read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	var items []domain.Notification
	if err := sqlx.SelectContext(ctx, r.db, &items, query, userID, limit); err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return items, nil
}

func (r *notificationRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}
