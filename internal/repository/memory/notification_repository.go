package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/andresuchdata/purchasing/backend-go/internal/domain"
	"github.com/andresuchdata/purchasing/backend-go/internal/repository"
)

var _ repository.NotificationRepository = (*NotificationRepository)(nil)

type NotificationRepository struct {
	mu     sync.Mutex
	groups map[string][]int64
	stored []domain.Notification
	nextID int64
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{groups: make(map[string][]int64)}
}

// SetGroup replaces the members of group
func (r *NotificationRepository) SetGroup(group string, userIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[strings.ToLower(group)] = append([]int64(nil), userIDs...)
}

// Stored returns every notification in insertion order
func (r *NotificationRepository) Stored() []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Notification(nil), r.stored...)
}

func (r *NotificationRepository) UsersInGroup(ctx context.Context, group string) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.groups[strings.ToLower(strings.TrimSpace(group))]...), nil
}

func (r *NotificationRepository) CreateNotifications(ctx context.Context, notifications []domain.Notification) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Notification, 0, len(notifications))
	for _, n := range notifications {
		r.nextID++
		n.ID = r.nextID
		r.stored = append(r.stored, n)
		out = append(out, n)
	}
	return out, nil
}

func (r *NotificationRepository) ListNotifications(ctx context.Context, userID int64, limit int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.Notification
	for _, n := range r.stored {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) MarkNotificationRead(ctx context.Context, userID, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.stored {
		if r.stored[i].ID == id && r.stored[i].UserID == userID {
			r.stored[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}
