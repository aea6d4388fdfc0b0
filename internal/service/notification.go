package service

import (
	"context"

	"inkwell/internal/model"
	"inkwell/internal/repository"
)

const defaultNotificationLimit = 50

// NotificationService serves the notification feed. Records are written by
// the stream worker, not by request handlers.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// List returns the newest notifications for a user with the unread count.
func (s *NotificationService) List(ctx context.Context, receiverID int64, limit int) (*model.NotificationListResponse, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}

	notifications, unread, err := s.repo.ListByReceiver(ctx, receiverID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]model.NotificationView, 0, len(notifications))
	for i := range notifications {
		views = append(views, model.NewNotificationView(&notifications[i]))
	}

	return &model.NotificationListResponse{
		Notifications: views,
		UnreadCount:   unread,
	}, nil
}

// MarkAllRead clears the unread state for a user's notifications.
func (s *NotificationService) MarkAllRead(ctx context.Context, receiverID int64) error {
	return s.repo.MarkAllRead(ctx, receiverID)
}
