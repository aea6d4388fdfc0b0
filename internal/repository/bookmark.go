package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"inkwell/internal/model"
)

type bookmarkRepository struct {
	db *sqlx.DB
}

func NewBookmarkRepository(db *sqlx.DB) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

// Add inserts the (post, actor) pair. Returns false when the pair already
// exists; the caller must then skip the paired counter deltas.
func (r *bookmarkRepository) Add(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	query := `
		INSERT INTO bookmarks (post_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (post_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, postID, userID)
	if err != nil {
		return false, fmt.Errorf("insert bookmark: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *bookmarkRepository) Remove(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotBookmarked
	}
	return nil
}

func (r *bookmarkRepository) ListByPost(ctx context.Context, postID int64) ([]int64, error) {
	var userIDs []int64
	err := r.db.SelectContext(ctx, &userIDs,
		`SELECT user_id FROM bookmarks WHERE post_id = $1 ORDER BY created_at`, postID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return userIDs, nil
}

func (r *bookmarkRepository) MapByPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	result := make(map[int64][]int64, len(postIDs))
	if len(postIDs) == 0 {
		return result, nil
	}

	type bookmarkRow struct {
		PostID int64 `db:"post_id"`
		UserID int64 `db:"user_id"`
	}
	var rows []bookmarkRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT post_id, user_id FROM bookmarks WHERE post_id = ANY($1) ORDER BY created_at`,
		pq.Array(postIDs))
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("map bookmarks: %w", err)
	}

	for _, row := range rows {
		result[row.PostID] = append(result[row.PostID], row.UserID)
	}
	return result, nil
}

// ListPostsByUser returns the posts a user has bookmarked, with creators
// joined, most recently bookmarked first.
func (r *bookmarkRepository) ListPostsByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	query := `
		SELECT p.id, p.creator_id, p.title, p.cover, p.topics, p.reading_time,
		       p.published, p.likes_count, p.comments_count, p.bookmarks_count,
		       p.total_views, p.created_at, p.updated_at,` + creatorJoinColumns + `
		FROM bookmarks b
		JOIN posts p ON p.id = b.post_id
		JOIN users u ON u.id = p.creator_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC
	`
	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarked posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.Post
		posts[i].Creator = row.CreatorRow.toUser()
	}
	return posts, nil
}
