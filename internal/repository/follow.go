package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"inkwell/internal/model"
)

type followRepository struct {
	db *sqlx.DB
}

func NewFollowRepository(db *sqlx.DB) FollowRepository {
	return &followRepository{db: db}
}

// Add inserts the (follower, followee) pair. Returns false when the pair
// already exists; the caller must then skip the paired counter deltas.
func (r *followRepository) Add(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	query := `
		INSERT INTO follows (follower_id, followee_id)
		VALUES ($1, $2)
		ON CONFLICT (follower_id, followee_id) DO NOTHING
	`
	result, err := tx.ExecContext(ctx, query, followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("insert follow: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return rows > 0, nil
}

func (r *followRepository) Remove(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error {
	result, err := tx.ExecContext(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrNotFollowing
	}
	return nil
}

func (r *followRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND followee_id = $2)`,
		followerID, followeeID)
	if err != nil {
		return false, fmt.Errorf("check follow existence: %w", err)
	}
	return exists, nil
}

// GetFollowerIDs returns all follower ids for a user, used by the worker for
// notification fan-out.
func (r *followRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	var ids []int64
	err := r.db.SelectContext(ctx, &ids,
		`SELECT follower_id FROM follows WHERE followee_id = $1`, userID)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("get follower ids: %w", err)
	}
	return ids, nil
}

func (r *followRepository) GetFollowers(ctx context.Context, userID int64) ([]model.User, error) {
	query := `
		SELECT ` + joinedUserColumns("u") + `
		FROM follows f
		JOIN users u ON u.id = f.follower_id
		WHERE f.followee_id = $1
		ORDER BY f.created_at DESC
	`
	return r.selectUsers(ctx, query, userID)
}

func (r *followRepository) GetFollowing(ctx context.Context, userID int64) ([]model.User, error) {
	query := `
		SELECT ` + joinedUserColumns("u") + `
		FROM follows f
		JOIN users u ON u.id = f.followee_id
		WHERE f.follower_id = $1
		ORDER BY f.created_at DESC
	`
	return r.selectUsers(ctx, query, userID)
}

func (r *followRepository) selectUsers(ctx context.Context, query string, arg interface{}) ([]model.User, error) {
	var users []model.User
	err := r.db.SelectContext(ctx, &users, query, arg)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

// joinedUserColumns selects the stripped projection columns of a joined user.
func joinedUserColumns(alias string) string {
	return fmt.Sprintf(`%[1]s.id, %[1]s.email, %[1]s.username, %[1]s.profile_picture,
	       %[1]s.bio, %[1]s.location, %[1]s.position, %[1]s.skills, %[1]s.backdrop,
	       %[1]s.posts_count, %[1]s.bookmarks_count, %[1]s.followers_count,
	       %[1]s.following_count, %[1]s.created_at, %[1]s.updated_at`, alias)
}
