package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"inkwell/internal/model"
)

type topicRepository struct {
	db *sqlx.DB
}

func NewTopicRepository(db *sqlx.DB) TopicRepository {
	return &topicRepository{db: db}
}

// ResolveOrCreate resolves a descriptor to a topic id by its unique value.
// A single upsert both creates missing topics (usage seeded at 1) and bumps
// the usage counter of existing ones, so two racing resolutions of the same
// value converge on one row.
func (r *topicRepository) ResolveOrCreate(ctx context.Context, tx *sqlx.Tx, d model.TopicDescriptor) (int64, error) {
	query := `
		INSERT INTO topics (value, label, color, description, usage_count, created_at)
		VALUES ($1, $2, $3, '', 1, NOW())
		ON CONFLICT (value) DO UPDATE SET usage_count = topics.usage_count + 1
		RETURNING id
	`
	var id int64
	err := tx.GetContext(ctx, &id, query, d.Value, d.Label, d.Color)
	if err != nil {
		return 0, fmt.Errorf("resolve topic %q: %w", d.Value, err)
	}
	return id, nil
}

// GetByIDs fetches topics for the given ids, returned in input order so post
// topic sequences keep the author's ordering.
func (r *topicRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Topic, error) {
	if len(ids) == 0 {
		return []model.Topic{}, nil
	}

	query := `
		SELECT id, value, label, color, description, usage_count, created_at
		FROM topics
		WHERE id = ANY($1)
	`
	var topics []model.Topic
	err := r.db.SelectContext(ctx, &topics, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("get topics by ids: %w", err)
	}

	byID := make(map[int64]model.Topic, len(topics))
	for _, t := range topics {
		byID[t.ID] = t
	}
	ordered := make([]model.Topic, 0, len(ids))
	for _, id := range ids {
		if t, ok := byID[id]; ok {
			ordered = append(ordered, t)
		}
	}
	return ordered, nil
}

func (r *topicRepository) GetByValue(ctx context.Context, value string) (*model.Topic, error) {
	query := `
		SELECT id, value, label, color, description, usage_count, created_at
		FROM topics
		WHERE value = $1
	`
	var t model.Topic
	err := r.db.GetContext(ctx, &t, query, value)
	if err == sql.ErrNoRows {
		return nil, model.ErrTopicNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get topic by value: %w", err)
	}
	return &t, nil
}
