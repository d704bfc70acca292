package types

import "time"

type NotificationLevel string

const (
	LevelInfo    NotificationLevel = "info"
	LevelSuccess NotificationLevel = "success"
	LevelError   NotificationLevel = "error"
)

// Notification is a transient toast tied to one workspace action.
type Notification struct {
	ID          string            `json:"id"`
	WorkspaceID string            `json:"workspace_id"`
	Level       NotificationLevel `json:"level"`
	Title       string            `json:"title"`
	Message     string            `json:"message"`
	Time        time.Time         `json:"time"`
}
