package repository

import (
	"context"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
)

type NotificationRepository interface {
	// UsersInGroup returns the ids of the users in the named group (case-insensitive)
	UsersInGroup(ctx context.Context, group string) ([]int64, error)
	CreateNotifications(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error)
	ListNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
}
