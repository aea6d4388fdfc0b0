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

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) PostRepository {
	return &postRepository{db: db}
}

// creatorJoinColumns selects the stripped creator projection alongside the
// post row. password_hashed, status, interests and report_received are never
// selected; the stripping is structural, not a post-processing step.
const creatorJoinColumns = `
       u.id AS "creator.id", u.email AS "creator.email", u.username AS "creator.username",
       u.profile_picture AS "creator.profile_picture", u.bio AS "creator.bio",
       u.location AS "creator.location", u.position AS "creator.position",
       u.skills AS "creator.skills", u.backdrop AS "creator.backdrop",
       u.posts_count AS "creator.posts_count", u.bookmarks_count AS "creator.bookmarks_count",
       u.followers_count AS "creator.followers_count", u.following_count AS "creator.following_count",
       u.created_at AS "creator.created_at", u.updated_at AS "creator.updated_at"`

// postRow scans a post joined with its creator projection.
type postRow struct {
	model.Post
	CreatorRow creatorRow `db:"creator"`
}

type creatorRow struct {
	ID             int64     `db:"id"`
	Email          string    `db:"email"`
	Username       string    `db:"username"`
	ProfilePicture string    `db:"profile_picture"`
	Bio            string    `db:"bio"`
	Location       string    `db:"location"`
	Position       string    `db:"position"`
	Skills         string    `db:"skills"`
	Backdrop       string    `db:"backdrop"`
	PostsCount     int       `db:"posts_count"`
	BookmarksCount int       `db:"bookmarks_count"`
	FollowersCount int       `db:"followers_count"`
	FollowingCount int       `db:"following_count"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (cr creatorRow) toUser() *model.User {
	return &model.User{
		ID:             cr.ID,
		Email:          cr.Email,
		Username:       cr.Username,
		ProfilePicture: cr.ProfilePicture,
		Bio:            cr.Bio,
		Location:       cr.Location,
		Position:       cr.Position,
		Skills:         cr.Skills,
		Backdrop:       cr.Backdrop,
		PostsCount:     cr.PostsCount,
		BookmarksCount: cr.BookmarksCount,
		FollowersCount: cr.FollowersCount,
		FollowingCount: cr.FollowingCount,
		CreatedAt:      cr.CreatedAt,
		UpdatedAt:      cr.UpdatedAt,
	}
}

func (r *postRepository) Create(ctx context.Context, tx *sqlx.Tx, p *model.Post) error {
	query := `
		INSERT INTO posts (creator_id, title, content, cover, topics, reading_time, published,
		                   created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, likes_count, comments_count, bookmarks_count, total_views,
		          created_at, updated_at
	`
	row := tx.QueryRowxContext(ctx, query,
		p.CreatorID, p.Title, p.Content, p.Cover, pq.Int64Array(p.Topics),
		p.ReadingTime, p.Published)

	err := row.Scan(&p.ID, &p.LikesCount, &p.CommentsCount, &p.BookmarksCount,
		&p.TotalViews, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// GetByID retrieves a single post with its creator joined.
func (r *postRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	query := `
		SELECT p.id, p.creator_id, p.title, p.content, p.cover, p.topics, p.reading_time,
		       p.published, p.likes_count, p.comments_count, p.bookmarks_count,
		       p.total_views, p.created_at, p.updated_at,` + creatorJoinColumns + `
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`
	var row postRow
	err := r.db.GetContext(ctx, &row, query, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get post: %w", err)
	}

	post := row.Post
	post.Creator = row.CreatorRow.toUser()
	return &post, nil
}

// List runs the feed query. The lookup-then-merge shape of the original
// aggregation becomes one creator join plus batched membership queries done
// by the service; sort order is always created_at DESC before skip/limit.
func (r *postRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.TitleMatch != "" {
		conds = append(conds, "p.title ILIKE "+arg("%"+filter.TitleMatch+"%"))
	}
	if filter.By != 0 {
		conds = append(conds, "p.creator_id = "+arg(filter.By))
	}
	if filter.Topic != 0 {
		conds = append(conds, arg(filter.Topic)+" = ANY(p.topics)")
	}
	if filter.ExcludeID != 0 {
		conds = append(conds, "p.id <> "+arg(filter.ExcludeID))
	}

	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = model.DefaultListLimit
	}
	skip := filter.Skip
	if skip < 0 {
		skip = 0
	}

	query := fmt.Sprintf(`
		SELECT p.id, p.creator_id, p.title, p.cover, p.topics, p.reading_time,
		       p.published, p.likes_count, p.comments_count, p.bookmarks_count,
		       p.total_views, p.created_at, p.updated_at,%s
		FROM posts p
		JOIN users u ON u.id = p.creator_id
		%s
		ORDER BY p.created_at DESC
		OFFSET %s LIMIT %s
	`, creatorJoinColumns, where, arg(skip), arg(limit))

	var rows []postRow
	err := r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	posts := make([]model.Post, len(rows))
	for i, row := range rows {
		posts[i] = row.Post
		posts[i].Creator = row.CreatorRow.toUser()
	}
	return posts, nil
}

// ListByUser returns a user's posts newer than the cursor, newest first.
// Content and topics are omitted from this projection.
func (r *postRepository) ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.Post, error) {
	var conds []string
	var args []interface{}

	conds = append(conds, "creator_id = $1")
	args = append(args, creatorID)

	if after != nil {
		args = append(args, *after)
		conds = append(conds, fmt.Sprintf("created_at > $%d", len(args)))
	}

	query := fmt.Sprintf(`
		SELECT id, creator_id, title, cover, reading_time, published, likes_count,
		       comments_count, bookmarks_count, total_views, created_at, updated_at
		FROM posts
		WHERE %s
		ORDER BY created_at DESC
	`, strings.Join(conds, " AND "))

	var posts []model.Post
	err := r.db.SelectContext(ctx, &posts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts by user: %w", err)
	}
	return posts, nil
}

// Update applies a partial patch and returns the post-update state.
func (r *postRepository) Update(ctx context.Context, id int64, patch model.UpdatePostRequest) (*model.Post, error) {
	query := `
		UPDATE posts SET
			title        = COALESCE($1, title),
			content      = COALESCE($2, content),
			cover        = COALESCE($3, cover),
			reading_time = COALESCE($4, reading_time),
			published    = COALESCE($5, published),
			total_views  = COALESCE($6, total_views),
			updated_at   = NOW()
		WHERE id = $7
		RETURNING id, creator_id, title, content, cover, topics, reading_time, published,
		          likes_count, comments_count, bookmarks_count, total_views,
		          created_at, updated_at
	`
	var p model.Post
	err := r.db.GetContext(ctx, &p, query,
		patch.Title, patch.Content, patch.Cover, patch.ReadingTime,
		patch.Published, patch.TotalViews, id)
	if err == sql.ErrNoRows {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return &p, nil
}

// Count returns the total post count. The randomized feed recomputes its
// window from a fresh count on every call; nothing is cached here.
func (r *postRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM posts`)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

func (r *postRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM posts WHERE id = $1)`, id)
	if err != nil {
		return false, fmt.Errorf("check post exists: %w", err)
	}
	return exists, nil
}

func (r *postRepository) GetCreatorID(ctx context.Context, id int64) (int64, error) {
	var creatorID int64
	err := r.db.GetContext(ctx, &creatorID, `SELECT creator_id FROM posts WHERE id = $1`, id)
	if err == sql.ErrNoRows {
		return 0, model.ErrPostNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get creator id: %w", err)
	}
	return creatorID, nil
}

func (r *postRepository) IncrementLikesCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	return r.increment(ctx, tx, "likes_count", postID, delta)
}

func (r *postRepository) IncrementCommentsCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	return r.increment(ctx, tx, "comments_count", postID, delta)
}

func (r *postRepository) IncrementBookmarksCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	return r.increment(ctx, tx, "bookmarks_count", postID, delta)
}

// increment applies an atomic field delta. Column names come from the fixed
// wrapper methods above.
func (r *postRepository) increment(ctx context.Context, tx *sqlx.Tx, column string, postID int64, delta int) error {
	query := fmt.Sprintf(`UPDATE posts SET %s = %s + $1, updated_at = NOW() WHERE id = $2`, column, column)
	result, err := tx.ExecContext(ctx, query, delta, postID)
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return model.ErrPostNotFound
	}
	return nil
}
