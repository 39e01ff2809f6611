package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/b2world/ems-backend/internal/core/domain"
	"github.com/b2world/ems-backend/internal/core/ports"
	"github.com/b2world/ems-backend/internal/pkg/metrics"
)

// NotificationService stores in-app notifications and hands external
// deliveries to the queue. Notify never fails the calling operation.
type NotificationService struct {
	repo  ports.NotificationRepository
	users ports.UserRepository
	queue ports.DeliveryQueue
	log   zerolog.Logger
}

func NewNotificationService(repo ports.NotificationRepository, users ports.UserRepository, queue ports.DeliveryQueue, log zerolog.Logger) *NotificationService {
	return &NotificationService{repo: repo, users: users, queue: queue, log: log}
}

func (s *NotificationService) Notify(ctx context.Context, in ports.NotifyInput) {
	related := in.RelatedTo
	if related == "" {
		related = domain.RelatedOther
	}

	_, err := s.repo.Create(ctx, &domain.Notification{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Title:       in.Title,
		Message:     in.Message,
		Type:        domain.ChannelInApp,
		RelatedTo:   related,
		RelatedID:   in.RelatedID,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		metrics.NotificationsTotal.WithLabelValues(domain.ChannelInApp, "failed").Inc()
		s.log.Warn().Err(err).Str("recipient_id", in.RecipientID).Msg("failed to store notification")
	} else {
		metrics.NotificationsTotal.WithLabelValues(domain.ChannelInApp, "sent").Inc()
	}

	if len(in.Channels) == 0 || s.queue == nil {
		return
	}

	user, err := s.users.FindByID(ctx, in.RecipientID)
	if err != nil {
		s.log.Warn().Err(err).Str("recipient_id", in.RecipientID).Msg("notification recipient lookup failed")
		return
	}

	for _, ch := range in.Channels {
		d := ports.Delivery{Channel: ch, RecipientID: user.ID, Subject: in.Title, Body: in.Message}
		switch ch {
		case domain.ChannelEmail:
			d.To = user.Email
		case domain.ChannelSMS:
			d.To = user.Phone
		default:
			s.log.Warn().Str("channel", ch).Msg("unsupported notification channel")
			continue
		}
		if d.To == "" {
			continue
		}
		s.queue.Enqueue(d)
	}
}

func (s *NotificationService) Unread(ctx context.Context, userID string) ([]domain.Notification, error) {
	out, err := s.repo.ListByRecipient(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("unread notifications: %w", err)
	}
	return out, nil
}

func (s *NotificationService) All(ctx context.Context, userID string) ([]domain.Notification, error) {
	out, err := s.repo.ListByRecipient(ctx, userID, false)
	if err != nil {
		return nil, fmt.Errorf("notifications: %w", err)
	}
	return out, nil
}

// MarkRead flags the given notifications of userID as read and returns how
// many changed. Ids belonging to other users are ignored.
func (s *NotificationService) MarkRead(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, domain.Validation("notification ids are required")
	}
	n, err := s.repo.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("mark notifications read: %w", err)
	}
	return n, nil
}
