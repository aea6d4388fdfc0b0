package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"inkwell/internal/model"
)

type likeRepository struct {
	db *sqlx.DB
}

func NewLikeRepository(db *sqlx.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Add inserts the (post, actor) pair. Returns false when the pair already
// exists; the caller must then skip the paired counter delta.
func (r *likeRepository) Add(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	query := `
		INSERT INTO post_likes (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *likeRepository) Remove(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotLiked
	}
	return nil
}

func (r *likeRepository) ListByPost(ctx context.Context, postID int64) ([]int64, error) {
	var userIDs []int64
	err := r.db.SelectContext(ctx, &userIDs,
		`SELECT user_id FROM post_likes WHERE post_id = $1 ORDER BY created_at`, postID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	return userIDs, nil
}

// MapByPosts returns the liker ids for each post in one query, for hydrating
// feed pages without N+1 lookups.
func (r *likeRepository) MapByPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	type likeRow struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	var rows []likeRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT post_id, user_id FROM post_likes WHERE post_id = ANY($1) ORDER BY created_at`,
		pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("map likes: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.UserID)
	}
	return result, nil
}
