package domain

import "time"

// Delivery channels.
const (
	ChannelInApp    = "in-app"
	ChannelEmail    = "email"
	ChannelSMS      = "sms"
	ChannelWhatsApp = "whatsapp"
)

// Related entity kinds.
const (
	RelatedLeave        = "leave"
	RelatedTask         = "task"
	RelatedPayroll      = "payroll"
	RelatedTraining     = "training"
	RelatedOffboarding  = "offboarding"
	RelatedAnnouncement = "announcement"
	RelatedOther        = "other"
)

// Notification is an in-app message addressed to one user.
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	SenderID    string    `json:"sender_id,omitempty"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"type"`
	RelatedTo   string    `json:"related_to"`
	RelatedID   string    `json:"related_id,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}
