package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"inkwell/internal/model"
)

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

type commentJoinRow struct {
	model.Comment
	CreatorRow creatorRow    `db:"creator"`
	LikeIDs    pq.Int64Array `db:"like_ids"`
}

func (r *commentRepository) Create(ctx context.Context, tx *sqlx.Tx, c *model.Comment) error {
	query := `
		INSERT INTO comments (post_id, creator_id, parent_id, content, depth, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, likes_count, created_at, updated_at
	`
	row := tx.QueryRowxContext(ctx, query, c.PostID, c.CreatorID, c.ParentID, c.Content, c.Depth)
	err := row.Scan(&c.ID, &c.LikesCount, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	query := `
		SELECT id, post_id, creator_id, parent_id, content, depth, likes_count,
		       created_at, updated_at
		FROM comments
		WHERE id = $1
	`
	var c model.Comment
	err := r.db.GetContext(ctx, &c, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment: %w", err)
	}
	return &c, nil
}

// ListByPost returns a post's comments with creator and likes hydrated,
// newest first.
func (r *commentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.creator_id, c.parent_id, c.content, c.depth,
		       c.likes_count, c.created_at, c.updated_at,
		       COALESCE(
		           (SELECT array_agg(cl.user_id ORDER BY cl.created_at)
		            FROM comment_likes cl WHERE cl.comment_id = c.id),
		           '{}') AS like_ids,` + creatorJoinColumns + `
		FROM comments c
		JOIN users u ON u.id = c.creator_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC
	`
	var rows []commentJoinRow
	err := r.db.SelectContext(ctx, &rows, query, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.Comment
		comments[i].Creator = row.CreatorRow.toUser()
		comments[i].Likes = row.LikeIDs
	}
	return comments, nil
}

// ListByUser returns a user's comments newer than the cursor, newest first.
func (r *commentRepository) ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.Comment, error) {
	var conds []string
	var args []interface{}

	conds = append(conds, "creator_id = $1")
	args = append(args, creatorID)

	if after != nil {
		args = append(args, *after)
		conds = append(conds, fmt.Sprintf("created_at > $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, post_id, creator_id, parent_id, content, depth, likes_count,
		       created_at, updated_at
		FROM comments
		WHERE %s
		ORDER BY created_at DESC
	`, strings.Join(conds, " AND "))

	var comments []model.Comment
	err := r.db.SelectContext(ctx, &comments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list comments by user: %w", err)
	}
	return comments, nil
}

// AddLike inserts the actor into the comment's likes set. Returns false when
// the actor already liked the comment, so the caller skips the counter delta.
func (r *commentRepository) AddLike(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (bool, error) {
	query := `
		INSERT INTO comment_likes (comment_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (comment_id, user_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, commentID, userID)
	if err != nil {
		return false, fmt.Errorf("insert comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *commentRepository) RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`,
		commentID, userID)
	if err != nil {
		return fmt.Errorf("delete comment like: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotLiked
	}
	return nil
}

func (r *commentRepository) IncrementLikesCount(ctx context.Context, tx *sqlx.Tx, commentID int64, delta int) error {
	query := `UPDATE comments SET likes_count = likes_count + $1, updated_at = NOW() WHERE id = $2`
	result, err := tx.ExecContext(ctx, query, delta, commentID)
	if err != nil {
		return fmt.Errorf("update likes count: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrCommentNotFound
	}
	return nil
}

func (r *commentRepository) GetLikes(ctx context.Context, commentID int64) ([]int64, error) {
	var userIDs []int64
	err := r.db.SelectContext(ctx, &userIDs,
		`SELECT user_id FROM comment_likes WHERE comment_id = $1 ORDER BY created_at`,
		commentID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get comment likes: %w", err)
	}
	return userIDs, nil
}
