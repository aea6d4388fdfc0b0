package worker

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"inkwell/internal/model"
	"inkwell/internal/queue"
)

// FollowerProvider fetches follower ids for fan-out. Abstracts the
// repository so the worker does not depend on the DB layer directly.
type FollowerProvider interface {
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
}

// SenderProvider resolves the acting user for notification text.
type SenderProvider interface {
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

// NotificationStore writes and retracts notification records.
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	Remove(ctx context.Context, senderID, receiverID, referenceID int64) error
}

// Handler turns stream events into notification records.
type Handler struct {
	followers FollowerProvider
	senders   SenderProvider
	store     NotificationStore
	log       *zap.SugaredLogger
}

func NewHandler(followers FollowerProvider, senders SenderProvider, store NotificationStore, log *zap.SugaredLogger) *Handler {
	return &Handler{
		followers: followers,
		senders:   senders,
		store:     store,
		log:       log,
	}
}

// HandleEvent routes an event by type.
func (h *Handler) HandleEvent(ctx context.Context, event queue.Event) error {
	switch event.Type {
	case queue.EventPostPublished:
		return h.handlePostPublished(ctx, event)
	case queue.EventPostLiked:
		return h.handlePostLiked(ctx, event)
	case queue.EventPostUnliked:
		return h.handlePostUnliked(ctx, event)
	case queue.EventCommentCreated:
		return h.handleCommentCreated(ctx, event)
	case queue.EventUserFollowed:
		return h.handleUserFollowed(ctx, event)
	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// handlePostPublished fans a "new post" notification out to every follower
// of the author.
func (h *Handler) handlePostPublished(ctx context.Context, event queue.Event) error {
	followers, err := h.followers.GetFollowerIDs(ctx, event.ActorID)
	if err != nil {
		return fmt.Errorf("get followers: %w", err)
	}
	if len(followers) == 0 {
		return nil
	}

	sender, err := h.senders.GetByID(ctx, event.ActorID)
	if err != nil {
		return fmt.Errorf("get sender: %w", err)
	}

	var failed int
	for _, followerID := range followers {
		n := &model.Notification{
			SenderID:    event.ActorID,
			ReceiverID:  followerID,
			ReferenceID: event.PostID,
			Type:        model.NotificationTypePost,
			Title:       "made a new post.",
			Message:     fmt.Sprintf("%s made a new post.", sender.Username),
		}
		if err := h.store.Create(ctx, n); err != nil {
			// Keep fanning out; one bad receiver must not sink the rest.
			h.log.Warnw("notification fan-out failed", "receiver", followerID, "error", err)
			failed++
		}
	}

	h.log.Infow("post published fan-out done",
		"post", event.PostID, "followers", len(followers), "failed", failed)
	return nil
}

func (h *Handler) handlePostLiked(ctx context.Context, event queue.Event) error {
	if event.ActorID == event.ReceiverID {
		return nil
	}

	sender, err := h.senders.GetByID(ctx, event.ActorID)
	if err != nil {
		return fmt.Errorf("get sender: %w", err)
	}

	return h.store.Create(ctx, &model.Notification{
		SenderID:    event.ActorID,
		ReceiverID:  event.ReceiverID,
		ReferenceID: event.PostID,
		Type:        model.NotificationTypeLike,
		Title:       "liked your post.",
		Message:     fmt.Sprintf("%s liked your post.", sender.Username),
	})
}

// handlePostUnliked retracts the notification its like produced.
func (h *Handler) handlePostUnliked(ctx context.Context, event queue.Event) error {
	return h.store.Remove(ctx, event.ActorID, event.ReceiverID, event.PostID)
}

func (h *Handler) handleCommentCreated(ctx context.Context, event queue.Event) error {
	if event.ActorID == event.ReceiverID {
		return nil
	}

	sender, err := h.senders.GetByID(ctx, event.ActorID)
	if err != nil {
		return fmt.Errorf("get sender: %w", err)
	}

	return h.store.Create(ctx, &model.Notification{
		SenderID:    event.ActorID,
		ReceiverID:  event.ReceiverID,
		ReferenceID: event.PostID,
		Type:        model.NotificationTypeComment,
		Title:       "commented on your post.",
		Message:     fmt.Sprintf("%s commented on your post.", sender.Username),
	})
}

func (h *Handler) handleUserFollowed(ctx context.Context, event queue.Event) error {
	sender, err := h.senders.GetByID(ctx, event.FollowerID)
	if err != nil {
		return fmt.Errorf("get sender: %w", err)
	}

	return h.store.Create(ctx, &model.Notification{
		SenderID:    event.FollowerID,
		ReceiverID:  event.FolloweeID,
		ReferenceID: event.FollowerID,
		Type:        model.NotificationTypeFollow,
		Title:       "started following you.",
		Message:     fmt.Sprintf("%s started following you.", sender.Username),
	})
}
