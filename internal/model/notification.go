package model

import "time"

// NotificationType selects the icon and color of a notification.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
	NotificationTask    NotificationType = "task"
	NotificationMention NotificationType = "mention"
)

// Notification represents an alert surfaced to the user. It is not owned by
// any project.
type Notification struct {
	// ID is the unique identifier for this notification.
	ID string `json:"id"`

	// Title is the short heading.
	Title string `json:"title"`

	// Message is the human-readable notification text.
	Message string `json:"message"`

	// Type is used only for presentation.
	Type NotificationType `json:"type"`

	// Read indicates whether the user has seen this notification.
	Read bool `json:"read"`

	// CreatedAt is when this notification was generated.
	CreatedAt time.Time `json:"createdAt"`

	// Link is an optional deep link into the application.
	Link string `json:"link,omitempty"`

	// Category is an optional free-form grouping label.
	Category string `json:"category,omitempty"`
}

// NotificationInput carries the fields needed to create a notification.
type NotificationInput struct {
	Title    string
	Message  string
	Type     NotificationType
	Link     string
	Category string
}
