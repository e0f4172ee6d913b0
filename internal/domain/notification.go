package domain

import "time"

// User groups that take part in the approval flow
const (
	GroupBuyer      = "comprador"
	GroupAnalyst    = "analista"
	GroupSupervisor = "supervisor"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationWarning NotificationType = "warning"
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
)

// Notification is a message stored for one user and pushed to their open
// sessions. A zero UserID addresses every connected client.
type Notification struct {
	ID        int64            `json:"id" db:"id"`
	UserID    int64            `json:"user" db:"user_id"`
	Title     string           `json:"title" db:"title"`
	Message   string           `json:"message" db:"message"`
	Type      NotificationType `json:"type" db:"type"`
	Link      string           `json:"link" db:"link"`
	IsRead    bool             `json:"is_read" db:"is_read"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
}
