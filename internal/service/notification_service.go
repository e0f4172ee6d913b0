package service

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository"
	"github.com/rs/zerolog/log"
)

// notificationListLimit is how many notifications a user sees in their feed
const notificationListLimit = 20

// Notifier delivers notifications to connected users
type Notifier interface {
	Notify(n domain.Notification)
}

// NotificationService stores notifications per recipient and pushes them to
// the recipients' open sessions
type NotificationService struct {
	repo     repository.NotificationRepository
	notifier Notifier
	now      func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, notifier Notifier) *NotificationService {
	return &NotificationService{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
	}
}

// NotifyGroup sends n to every member of group
func (s *NotificationService) NotifyGroup(ctx context.Context, group string, n domain.Notification) error {
	userIDs, err := s.repo.UsersInGroup(ctx, group)
	if err != nil {
		return fmt.Errorf("failed to resolve group %s: %w", group, err)
	}
	if len(userIDs) == 0 {
		log.Debug().Str("group", group).Str("title", n.Title).Msg("notifications: group has no members")
		return nil
	}
	return s.NotifyUsers(ctx, userIDs, n)
}

// NotifyUsers stores one copy of n per user and pushes each copy
func (s *NotificationService) NotifyUsers(ctx context.Context, userIDs []int64, n domain.Notification) error {
	if n.Type == "" {
		n.Type = domain.NotificationInfo
	}

	now := s.now()
	batch := make([]domain.Notification, 0, len(userIDs))
	for _, id := range userIDs {
		if id <= 0 {
			continue
		}
		msg := n
		msg.UserID = id
		msg.IsRead = false
		msg.CreatedAt = now
		batch = append(batch, msg)
	}
	if len(batch) == 0 {
		return nil
	}

	stored, err := s.repo.CreateNotifications(ctx, batch)
	if err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}

	if s.notifier != nil {
		for _, sn := range stored {
			s.notifier.Notify(sn)
		}
	}
	log.Info().Str("title", n.Title).Int("recipients", len(stored)).Msg("notifications: sent")
	return nil
}

// List returns the user's latest notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID int64) ([]domain.Notification, error) {
	if userID <= 0 {
		return nil, domain.ValidationError{"user": "user is required"}
	}
	items, err := s.repo.ListNotifications(ctx, userID, notificationListLimit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = make([]domain.Notification, 0)
	}
	return items, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id int64) error {
	if userID <= 0 {
		return domain.ValidationError{"user": "user is required"}
	}
	return s.repo.MarkNotificationRead(ctx, userID, id)
}
