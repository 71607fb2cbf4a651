package models

// NotificationRequest is the reminder engine's output unit: enough
// information for a delivery collaborator to send one message. It is
// ephemeral and never persisted.
type NotificationRequest struct {
	RecipientAddress string
	Birthday         Birthday
	DaysUntil        int
}
