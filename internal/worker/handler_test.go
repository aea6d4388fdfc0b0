package worker

import (
	"context"
	"testing"

	"inkwell/internal/logger"
	"inkwell/internal/model"
	"inkwell/internal/queue"
)

type mockFollowerProvider struct {
	followers map[int64][]int64
}

func (m *mockFollowerProvider) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	return m.followers[userID], nil
}

type mockSenderProvider struct{}

func (m *mockSenderProvider) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return &model.User{ID: id, Username: "sender"}, nil
}

type mockNotificationStore struct {
	created []*model.Notification
	removed [][3]int64
}

func (m *mockNotificationStore) Create(ctx context.Context, n *model.Notification) error {
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationStore) Remove(ctx context.Context, senderID, receiverID, referenceID int64) error {
	m.removed = append(m.removed, [3]int64{senderID, receiverID, referenceID})
	return nil
}

func newTestHandler(followers map[int64][]int64) (*Handler, *mockNotificationStore) {
	store := &mockNotificationStore{}
	h := NewHandler(&mockFollowerProvider{followers: followers}, &mockSenderProvider{}, store, logger.NewNop())
	return h, store
}

func TestHandler_PostPublished_FansOutToFollowers(t *testing.T) {
	h, store := newTestHandler(map[int64][]int64{7: {1, 2, 3}})

	err := h.HandleEvent(context.Background(), queue.NewPostPublishedEvent(100, 7))
	if err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}

	if len(store.created) != 3 {
		t.Fatalf("created %d notifications, want 3", len(store.created))
	}
	seen := map[int64]bool{}
	for _, n := range store.created {
		seen[n.ReceiverID] = true
		if n.Type != model.NotificationTypePost {
			t.Errorf("type = %q, want %q", n.Type, model.NotificationTypePost)
		}
		if n.ReferenceID != 100 {
			t.Errorf("reference = %d, want post id 100", n.ReferenceID)
		}
		if n.SenderID != 7 {
			t.Errorf("sender = %d, want 7", n.SenderID)
		}
	}
	for _, id := range []int64{1, 2, 3} {
		if !seen[id] {
			t.Errorf("follower %d got no notification", id)
		}
	}
}

func TestHandler_PostPublished_NoFollowers(t *testing.T) {
	h, store := newTestHandler(nil)

	if err := h.HandleEvent(context.Background(), queue.NewPostPublishedEvent(100, 7)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(store.created) != 0 {
		t.Errorf("created %d notifications, want 0", len(store.created))
	}
}

func TestHandler_PostLiked_SkipsSelf(t *testing.T) {
	h, store := newTestHandler(nil)

	if err := h.HandleEvent(context.Background(), queue.NewPostLikedEvent(100, 7, 7)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(store.created) != 0 {
		t.Error("liking your own post must not create a notification")
	}
}

func TestHandler_PostLiked_CreatesNotification(t *testing.T) {
	h, store := newTestHandler(nil)

	if err := h.HandleEvent(context.Background(), queue.NewPostLikedEvent(100, 7, 9)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(store.created))
	}
	n := store.created[0]
	if n.Type != model.NotificationTypeLike || n.ReceiverID != 9 || n.SenderID != 7 || n.ReferenceID != 100 {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestHandler_PostUnliked_RetractsNotification(t *testing.T) {
	h, store := newTestHandler(nil)

	if err := h.HandleEvent(context.Background(), queue.NewPostUnlikedEvent(100, 7, 9)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(store.removed) != 1 {
		t.Fatalf("removed %d notifications, want 1", len(store.removed))
	}
	if got := store.removed[0]; got != [3]int64{7, 9, 100} {
		t.Errorf("removed = %v, want [7 9 100]", got)
	}
}

func TestHandler_UserFollowed(t *testing.T) {
	h, store := newTestHandler(nil)

	if err := h.HandleEvent(context.Background(), queue.NewUserFollowedEvent(7, 9)); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("created %d notifications, want 1", len(store.created))
	}
	n := store.created[0]
	if n.Type != model.NotificationTypeFollow || n.ReceiverID != 9 || n.SenderID != 7 {
		t.Errorf("unexpected notification: %+v", n)
	}
}

func TestHandler_UnknownEventType(t *testing.T) {
	h, _ := newTestHandler(nil)

	if err := h.HandleEvent(context.Background(), queue.Event{Type: "bogus"}); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestEvent_StreamRoundTrip(t *testing.T) {
	event := queue.NewPostLikedEvent(100, 7, 9)

	values, err := event.ToMap()
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}

	parsed, err := queue.ParseEvent(values)
	if err != nil {
		t.Fatalf("ParseEvent: %v", err)
	}
	if parsed.Type != queue.EventPostLiked || parsed.PostID != 100 || parsed.ActorID != 7 || parsed.ReceiverID != 9 {
		t.Errorf("parsed = %+v, want original event", parsed)
	}
}
