package model

import "time"

// Notification types.
const (
	NotificationTypePost    = "post"
	NotificationTypeComment = "comment"
	NotificationTypeFollow  = "follow"
	NotificationTypeLike    = "like"
)

// Notification is a best-effort side-effect record of a social event. Its
// creation never blocks the mutation that triggered it.
type Notification struct {
	ID          int64     `db:"id"`
	SenderID    int64     `db:"sender_id"`
	ReceiverID  int64     `db:"receiver_id"`
	ReferenceID int64     `db:"reference_id"`
	Type        string    `db:"type"`
	Title       string    `db:"title"`
	Message     string    `db:"message"`
	Read        bool      `db:"read"`
	CreatedAt   time.Time `db:"created_at"`

	// Joined, not a notifications column.
	Sender *User `db:"-"`
}

// NotificationView is the boundary projection of a notification.
type NotificationView struct {
	ID          string   `json:"_id"`
	SenderID    string   `json:"senderId"`
	ReceiverID  string   `json:"receiverId"`
	ReferenceID string   `json:"referenceId"`
	Type        string   `json:"type"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Read        bool     `json:"read"`
	CreatedAt   int64    `json:"createdAt"`
	Sender      *Creator `json:"sender,omitempty"`
}

func NewNotificationView(n *Notification) NotificationView {
	return NotificationView{
		ID:          IDString(n.ID),
		SenderID:    IDString(n.SenderID),
		ReceiverID:  IDString(n.ReceiverID),
		ReferenceID: IDString(n.ReferenceID),
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		Read:        n.Read,
		CreatedAt:   Millis(n.CreatedAt),
		Sender:      NewCreator(n.Sender),
	}
}

// NotificationListResponse is the notification feed payload.
type NotificationListResponse struct {
	Notifications []NotificationView `json:"notifications"`
	UnreadCount   int                `json:"unreadCount"`
}
