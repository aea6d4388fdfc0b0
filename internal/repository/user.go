package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"inkwell/internal/model"
)

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, email, username, password_hashed, profile_picture, bio, location,
       position, skills, backdrop, interests, posts_count, bookmarks_count,
       followers_count, following_count, status, report_received, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	query := `
		INSERT INTO users (email, username, password_hashed, profile_picture, bio, location,
		                   position, skills, backdrop, interests, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW())
		RETURNING id, posts_count, bookmarks_count, followers_count, following_count,
		          report_received, created_at, updated_at
	`

	row := r.db.QueryRowxContext(ctx, query,
		u.Email,
		u.Username,
		u.PasswordHashed,
		u.ProfilePicture,
		u.Bio,
		u.Location,
		u.Position,
		u.Skills,
		u.Backdrop,
		pq.Int64Array(u.Interests),
		u.Status,
	)

	err := row.Scan(
		&u.ID,
		&u.PostsCount,
		&u.BookmarksCount,
		&u.FollowersCount,
		&u.FollowingCount,
		&u.ReportReceived,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			if pqErr.Constraint == "users_username_key" {
				return model.ErrUsernameExists
			}
			return model.ErrEmailExists
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return r.getBy(ctx, "id = $1", id)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *userRepository) getBy(ctx context.Context, where string, arg interface{}) (*model.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s`, userColumns, where)

	var u model.User
	err := r.db.GetContext(ctx, &u, query, arg)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (r *userRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username)
}

func (r *userRepository) exists(ctx context.Context, query string, arg interface{}) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, arg); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return exists, nil
}

// Update applies a partial settings patch and returns the post-update state.
func (r *userRepository) Update(ctx context.Context, id int64, patch model.UpdateUserRequest) (*model.User, error) {
	query := `
		UPDATE users SET
			bio             = COALESCE($1, bio),
			location        = COALESCE($2, location),
			position        = COALESCE($3, position),
			skills          = COALESCE($4, skills),
			backdrop        = COALESCE($5, backdrop),
			profile_picture = COALESCE($6, profile_picture),
			updated_at      = NOW()
		WHERE id = $7
		RETURNING ` + userColumns

	var u model.User
	err := r.db.GetContext(ctx, &u, query,
		patch.Bio, patch.Location, patch.Position, patch.Skills,
		patch.Backdrop, patch.ProfilePicture, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return &u, nil
}

func (r *userRepository) UpdatePassword(ctx context.Context, id int64, passwordHashed string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hashed = $1, updated_at = NOW() WHERE id = $2`,
		passwordHashed, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return r.increment(ctx, tx, "posts_count", userID, delta)
}

func (r *userRepository) IncrementBookmarksCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return r.increment(ctx, tx, "bookmarks_count", userID, delta)
}

func (r *userRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return r.increment(ctx, tx, "followers_count", userID, delta)
}

func (r *userRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	return r.increment(ctx, tx, "following_count", userID, delta)
}

// increment applies an atomic field delta so concurrent mutations never lose
// updates. Column names come from the fixed wrapper methods above, never from
// user input.
func (r *userRepository) increment(ctx context.Context, tx *sqlx.Tx, column string, userID int64, delta int) error {
	query := fmt.Sprintf(`UPDATE users SET %s = %s + $1, updated_at = NOW() WHERE id = $2`, column, column)
	result, err := tx.ExecContext(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrUserNotFound
	}
	return nil
}
