package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"inkwell/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, id int64, patch model.UpdateUserRequest) (*model.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHashed string) error
	IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementBookmarksCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
	IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error
}

type TopicRepository interface {
	// ResolveOrCreate looks a topic up by its unique value, creating it when
	// absent, and bumps its usage counter. Can never produce duplicates.
	ResolveOrCreate(ctx context.Context, tx *sqlx.Tx, d model.TopicDescriptor) (int64, error)
	GetByIDs(ctx context.Context, ids []int64) ([]model.Topic, error)
	GetByValue(ctx context.Context, value string) (*model.Topic, error)
}

type PostRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	GetByID(ctx context.Context, id int64) (*model.Post, error)
	// List runs the filtered feed query with creator join; the caller decides
	// the effective skip (plain or windowed-random).
	List(ctx context.Context, filter model.PostFilter) ([]model.Post, error)
	ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.Post, error)
	Update(ctx context.Context, id int64, patch model.UpdatePostRequest) (*model.Post, error)
	Count(ctx context.Context) (int, error)
	Exists(ctx context.Context, id int64) (bool, error)
	GetCreatorID(ctx context.Context, id int64) (int64, error)
	IncrementLikesCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
	IncrementCommentsCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
	IncrementBookmarksCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error
}

type CommentRepository interface {
	Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error
	GetByID(ctx context.Context, id int64) (*model.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]model.Comment, error)
	ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.Comment, error)
	AddLike(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (bool, error)
	RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) error
	IncrementLikesCount(ctx context.Context, tx *sqlx.Tx, commentID int64, delta int) error
	GetLikes(ctx context.Context, commentID int64) ([]int64, error)
}

// LikeRepository is the append/remove set backing post likes. Uniqueness of
// (post, user) is enforced here, not assumed from caller discipline.
type LikeRepository interface {
	Add(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	Remove(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	ListByPost(ctx context.Context, postID int64) ([]int64, error)
	MapByPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
}

type BookmarkRepository interface {
	Add(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	Remove(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	ListByPost(ctx context.Context, postID int64) ([]int64, error)
	MapByPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
	// ListPostsByUser returns the hydrated posts a user has bookmarked.
	ListPostsByUser(ctx context.Context, userID int64) ([]model.Post, error)
}

type FollowRepository interface {
	Add(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	Remove(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error
	Exists(ctx context.Context, followerID, followeeID int64) (bool, error)
	GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error)
	GetFollowers(ctx context.Context, userID int64) ([]model.User, error)
	GetFollowing(ctx context.Context, userID int64) ([]model.User, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	// Remove deletes the notification matching a retracted event, e.g. an
	// unlike retracting the "liked your post" record.
	Remove(ctx context.Context, senderID, receiverID, referenceID int64) error
	ListByReceiver(ctx context.Context, receiverID int64, limit int) ([]model.Notification, int, error)
	MarkAllRead(ctx context.Context, receiverID int64) error
}
