package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/metrics"
)

const fallbackReply = "I am sorry, I am unable to answer right now. Please try again later or contact HR."

// Answer sources.
const (
	SourceFAQ      = "faq"
	SourceLLM      = "llm"
	SourceFallback = "fallback"
)

// ChatbotService answers employee questions from the FAQ first and the LLM
// otherwise, keeping a per-user conversation log.
type ChatbotService struct {
	repo ports.ChatRepository
	llm  ports.LLM
	faq  *faqMatcher
	log  zerolog.Logger
}

func NewChatbotService(repo ports.ChatRepository, llm ports.LLM, log zerolog.Logger) *ChatbotService {
	return &ChatbotService{repo: repo, llm: llm, faq: newFAQMatcher(defaultFAQ), log: log}
}

func (s *ChatbotService) Ask(ctx context.Context, userID, message string) (*ports.ChatAnswer, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, domain.Validation("message cannot be empty")
	}

	answer := s.answer(ctx, message)
	metrics.ChatbotAnswersTotal.WithLabelValues(answer.Source).Inc()

	now := time.Now().UTC()
	err := s.repo.Append(ctx, userID,
		domain.ChatMessage{Sender: domain.SenderUser, Message: message, Timestamp: now},
		domain.ChatMessage{Sender: domain.SenderBot, Message: answer.Reply, Timestamp: now},
	)
	if err != nil {
		return nil, fmt.Errorf("chatbot: save conversation: %w", err)
	}
	return answer, nil
}

func (s *ChatbotService) answer(ctx context.Context, message string) *ports.ChatAnswer {
	if reply, ok := s.faq.Match(message); ok {
		return &ports.ChatAnswer{Reply: reply, Source: SourceFAQ}
	}

	reply, err := s.llm.Ask(ctx, message)
	if err != nil || strings.TrimSpace(reply) == "" {
		if err == nil {
			err = errors.New("empty reply")
		}
		s.log.Warn().Err(err).Msg("llm request failed")
		return &ports.ChatAnswer{Reply: fallbackReply, Source: SourceFallback}
	}
	return &ports.ChatAnswer{Reply: strings.TrimSpace(reply), Source: SourceLLM}
}

// History returns the user's conversation; an empty session when none exists.
func (s *ChatbotService) History(ctx context.Context, userID string) (*domain.ChatSession, error) {
	sess, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.ChatSession{UserID: userID, Conversation: []domain.ChatMessage{}}, nil
		}
		return nil, fmt.Errorf("chat history: %w", err)
	}
	return sess, nil
}
