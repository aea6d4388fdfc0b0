package model

import (
	"errors"
	"time"
)

// Topic is a stored topic document. Value is the natural key: repeated
// resolutions of the same value must converge on one row.
type Topic struct {
	ID          int64     `db:"id"`
	Value       string    `db:"value"`
	Label       string    `db:"label"`
	Color       string    `db:"color"`
	Description string    `db:"description"`
	UsageCount  int       `db:"usage_count"`
	CreatedAt   time.Time `db:"created_at"`
}

// TopicView is the boundary projection of a topic.
type TopicView struct {
	ID          string `json:"_id"`
	Value       string `json:"value"`
	Label       string `json:"label"`
	Color       string `json:"color"`
	Description string `json:"description"`
	UsageCount  int    `json:"usageCount"`
}

func NewTopicView(t *Topic) TopicView {
	return TopicView{
		ID:          IDString(t.ID),
		Value:       t.Value,
		Label:       t.Label,
		Color:       t.Color,
		Description: t.Description,
		UsageCount:  t.UsageCount,
	}
}

// TopicDescriptor is how clients reference a topic on post creation: by value,
// with display metadata used only if the topic does not exist yet.
type TopicDescriptor struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Color string `json:"color"`
}

var ErrTopicNotFound = errors.New("topic not found")
