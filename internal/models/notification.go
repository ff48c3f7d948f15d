package models

import "time"

// Notification is a request accepted by the local notification center and
// waiting for delivery.
type Notification struct {
	ID          string     `json:"id"`
	FireAt      time.Time  `json:"fire_at"`
	Immediate   bool       `json:"immediate"`
	Badge       int        `json:"badge"`
	Body        string     `json:"body,omitempty"`
	Sound       bool       `json:"sound"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsDue reports whether the notification should be delivered at now.
func (n Notification) IsDue(now time.Time) bool {
	return n.DeliveredAt == nil && (n.Immediate || !n.FireAt.After(now))
}
