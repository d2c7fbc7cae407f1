package models

import "time"

// NotificationType classifies platform notifications.
type NotificationType string

const (
	NotificationRoleSubmitted NotificationType = "role_application_submitted"
	NotificationRoleApproved  NotificationType = "role_application_approved"
	NotificationRoleRejected  NotificationType = "role_application_rejected"
	NotificationTaskAssigned  NotificationType = "task_assigned"
	NotificationTaskUnassigned NotificationType = "task_unassigned"
)

// Notification is a persisted in-app notification. Delivery is fire-and-forget:
// failures are logged and never surfaced to the triggering request.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"user_id"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Read      bool             `db:"read" json:"read"`
	ReadAt    *time.Time       `db:"read_at" json:"read_at,omitempty"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}
