package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types for the notification stream.
const (
	EventPostPublished  = "post_published"
	EventPostLiked      = "post_liked"
	EventPostUnliked    = "post_unliked"
	EventCommentCreated = "comment_created"
	EventUserFollowed   = "user_followed"
)

// Stream and consumer group names.
const (
	StreamNotifications       = "stream:notifications"
	ConsumerGroupNotification = "notification_workers"
)

// Event is a social event published after the primary mutation commits. The
// worker turns these into notification records; delivery is best-effort and
// never blocks or fails the mutation that produced the event.
type Event struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp"`

	// Post events (published, liked, unliked). ReceiverID is the post's
	// creator for like events.
	PostID     int64 `json:"post_id,omitempty"`
	ActorID    int64 `json:"actor_id,omitempty"`
	ReceiverID int64 `json:"receiver_id,omitempty"`

	// Follow event.
	FollowerID int64 `json:"follower_id,omitempty"`
	FolloweeID int64 `json:"followee_id,omitempty"`
}

// NewPostPublishedEvent is emitted when a post goes live. The worker fans out
// a notification to every follower of the author.
func NewPostPublishedEvent(postID, authorID int64) Event {
	return Event{
		Type:      EventPostPublished,
		Timestamp: time.Now().Unix(),
		PostID:    postID,
		ActorID:   authorID,
	}
}

// NewPostLikedEvent is emitted after a like commits.
func NewPostLikedEvent(postID, actorID, receiverID int64) Event {
	return Event{
		Type:       EventPostLiked,
		Timestamp:  time.Now().Unix(),
		PostID:     postID,
		ActorID:    actorID,
		ReceiverID: receiverID,
	}
}

// NewPostUnlikedEvent is emitted after an unlike commits. The worker removes
// the matching like notification.
func NewPostUnlikedEvent(postID, actorID, receiverID int64) Event {
	return Event{
		Type:       EventPostUnliked,
		Timestamp:  time.Now().Unix(),
		PostID:     postID,
		ActorID:    actorID,
		ReceiverID: receiverID,
	}
}

// NewCommentCreatedEvent is emitted after a comment commits. ReceiverID is
// the post's creator.
func NewCommentCreatedEvent(postID, actorID, receiverID int64) Event {
	return Event{
		Type:       EventCommentCreated,
		Timestamp:  time.Now().Unix(),
		PostID:     postID,
		ActorID:    actorID,
		ReceiverID: receiverID,
	}
}

// NewUserFollowedEvent is emitted after a follow commits.
func NewUserFollowedEvent(followerID, followeeID int64) Event {
	return Event{
		Type:       EventUserFollowed,
		Timestamp:  time.Now().Unix(),
		FollowerID: followerID,
		FolloweeID: followeeID,
	}
}

// ToMap converts the event to field-value pairs for Redis XADD. The payload
// travels as JSON in a "data" field.
func (e Event) ToMap() (map[string]interface{}, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return map[string]interface{}{
		"type": e.Type,
		"data": string(data),
	}, nil
}

// ParseEvent parses an Event from Redis stream message values.
func ParseEvent(values map[string]interface{}) (Event, error) {
	data, ok := values["data"].(string)
	if !ok {
		return Event{}, fmt.Errorf("missing or invalid 'data' field")
	}

	var event Event
	if err := json.Unmarshal([]byte(data), &event); err != nil {
		return Event{}, fmt.Errorf("unmarshal event: %w", err)
	}
	return event, nil
}
