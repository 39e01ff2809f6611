package domain

import "time"

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

type ChatMessage struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession is the running conversation of one user with the assistant.
type ChatSession struct {
	UserID       string        `json:"user_id"`
	Conversation []ChatMessage `json:"conversation"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
