package models

// NotificationKind distinguishes the events handed to the notifier.
type NotificationKind string

const (
	NotificationBooked    NotificationKind = "booked"
	NotificationCancelled NotificationKind = "cancelled"
)

// Notification is the fire-and-forget hand-off to the delivery layer.
// Delivery failures never roll back scheduling state.
type Notification struct {
	To      string                 `json:"to"`
	Kind    NotificationKind       `json:"kind"`
	Payload map[string]interface{} `json:"payload"`
}
