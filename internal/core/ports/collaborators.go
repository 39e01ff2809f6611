package ports

import (
	"context"

	"github.com/b2world/ems-backend/internal/core/domain"
)

// LetterKind distinguishes the offboarding documents.
type LetterKind string

const (
	ExperienceLetter LetterKind = "experience"
	RelievingLetter  LetterKind = "relieving"
)

// DocumentRenderer produces the PDF documents handed to users.
type DocumentRenderer interface {
	RenderPayslip(rec *domain.PayrollRecord, user *domain.User) ([]byte, error)
	RenderLetter(kind LetterKind, o *domain.Offboarding, user *domain.User) ([]byte, error)
}

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSSender sends a single text message.
type SMSSender interface {
	Send(ctx context.Context, phone, message string) error
}

// LLM answers free-form questions.
type LLM interface {
	Ask(ctx context.Context, prompt string) (string, error)
}

// Delivery is one outbound message on an external channel.
type Delivery struct {
	Channel     string
	RecipientID string
	To          string
	Subject     string
	Body        string
}

// DeliveryQueue accepts deliveries for asynchronous processing.
type DeliveryQueue interface {
	Enqueue(d Delivery)
}
