package service

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"inkwell/internal/model"
	"inkwell/internal/queue"
)

// Hand-rolled mocks with function fields: each test overrides only the calls
// it cares about, everything else falls back to a zero-ish default.

// newMockDB returns a sqlx handle over a sqlmock connection so service
// methods that open transactions can run against mocked repositories. Tests
// script Begin/Commit/Rollback on the returned controller.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	getByUsernameFn    func(ctx context.Context, username string) (*model.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string) (bool, error)
	updateFn           func(ctx context.Context, id int64, patch model.UpdateUserRequest) (*model.User, error)
	updatePasswordFn   func(ctx context.Context, id int64, passwordHashed string) error

	createCalls []*model.User

	postsCountCalls     int
	bookmarksCountCalls int
	followerCountCalls  int
	followingCountCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = int64(len(m.createCalls))
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	if m.getByUsernameFn != nil {
		return m.getByUsernameFn(ctx, username)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username)
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id int64, patch model.UpdateUserRequest) (*model.User, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHashed string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, id, passwordHashed)
	}
	return nil
}

func (m *mockUserRepository) IncrementPostsCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	m.postsCountCalls++
	return nil
}

func (m *mockUserRepository) IncrementBookmarksCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	m.bookmarksCountCalls++
	return nil
}

func (m *mockUserRepository) IncrementFollowerCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	m.followerCountCalls++
	return nil
}

func (m *mockUserRepository) IncrementFollowingCount(ctx context.Context, tx *sqlx.Tx, userID int64, delta int) error {
	m.followingCountCalls++
	return nil
}

type mockTopicRepository struct {
	resolveOrCreateFn func(ctx context.Context, tx *sqlx.Tx, d model.TopicDescriptor) (int64, error)
	getByIDsFn        func(ctx context.Context, ids []int64) ([]model.Topic, error)
	getByValueFn      func(ctx context.Context, value string) (*model.Topic, error)
}

func (m *mockTopicRepository) ResolveOrCreate(ctx context.Context, tx *sqlx.Tx, d model.TopicDescriptor) (int64, error) {
	if m.resolveOrCreateFn != nil {
		return m.resolveOrCreateFn(ctx, tx, d)
	}
	return 0, nil
}

func (m *mockTopicRepository) GetByIDs(ctx context.Context, ids []int64) ([]model.Topic, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	topics := make([]model.Topic, 0, len(ids))
	for _, id := range ids {
		topics = append(topics, model.Topic{ID: id, Value: "t", Label: "T"})
	}
	return topics, nil
}

func (m *mockTopicRepository) GetByValue(ctx context.Context, value string) (*model.Topic, error) {
	if m.getByValueFn != nil {
		return m.getByValueFn(ctx, value)
	}
	return nil, model.ErrTopicNotFound
}

type mockPostRepository struct {
	createFn       func(ctx context.Context, tx *sqlx.Tx, post *model.Post) error
	getByIDFn      func(ctx context.Context, id int64) (*model.Post, error)
	listFn         func(ctx context.Context, filter model.PostFilter) ([]model.Post, error)
	listByUserFn   func(ctx context.Context, creatorID int64, after *time.Time) ([]model.Post, error)
	updateFn       func(ctx context.Context, id int64, patch model.UpdatePostRequest) (*model.Post, error)
	countFn        func(ctx context.Context) (int, error)
	existsFn       func(ctx context.Context, id int64) (bool, error)
	getCreatorIDFn func(ctx context.Context, id int64) (int64, error)

	listCalls []model.PostFilter

	likesCountCalls     int
	commentsCountCalls  int
	bookmarksCountCalls int
}

func (m *mockPostRepository) Create(ctx context.Context, tx *sqlx.Tx, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, tx, post)
	}
	post.ID = 1
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, id int64) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) List(ctx context.Context, filter model.PostFilter) ([]model.Post, error) {
	m.listCalls = append(m.listCalls, filter)
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, nil
}

func (m *mockPostRepository) ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.Post, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, creatorID, after)
	}
	return nil, nil
}

func (m *mockPostRepository) Update(ctx context.Context, id int64, patch model.UpdatePostRequest) (*model.Post, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) Count(ctx context.Context) (int, error) {
	if m.countFn != nil {
		return m.countFn(ctx)
	}
	return 0, nil
}

func (m *mockPostRepository) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockPostRepository) GetCreatorID(ctx context.Context, id int64) (int64, error) {
	if m.getCreatorIDFn != nil {
		return m.getCreatorIDFn(ctx, id)
	}
	return 0, model.ErrPostNotFound
}

func (m *mockPostRepository) IncrementLikesCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	m.likesCountCalls++
	return nil
}

func (m *mockPostRepository) IncrementCommentsCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	m.commentsCountCalls++
	return nil
}

func (m *mockPostRepository) IncrementBookmarksCount(ctx context.Context, tx *sqlx.Tx, postID int64, delta int) error {
	m.bookmarksCountCalls++
	return nil
}

type mockCommentRepository struct {
	getByIDFn    func(ctx context.Context, id int64) (*model.Comment, error)
	listByPostFn func(ctx context.Context, postID int64) ([]model.Comment, error)
	listByUserFn func(ctx context.Context, creatorID int64, after *time.Time) ([]model.Comment, error)
	addLikeFn    func(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (bool, error)
	removeLikeFn func(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) error

	likesCountCalls int
}

func (m *mockCommentRepository) Create(ctx context.Context, tx *sqlx.Tx, comment *model.Comment) error {
	comment.ID = 1
	return nil
}

func (m *mockCommentRepository) GetByID(ctx context.Context, id int64) (*model.Comment, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrCommentNotFound
}

func (m *mockCommentRepository) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockCommentRepository) ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.Comment, error) {
	if m.listByUserFn != nil {
		return m.listByUserFn(ctx, creatorID, after)
	}
	return nil, nil
}

func (m *mockCommentRepository) AddLike(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (bool, error) {
	if m.addLikeFn != nil {
		return m.addLikeFn(ctx, tx, commentID, userID)
	}
	return true, nil
}

func (m *mockCommentRepository) RemoveLike(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) error {
	if m.removeLikeFn != nil {
		return m.removeLikeFn(ctx, tx, commentID, userID)
	}
	return nil
}

func (m *mockCommentRepository) IncrementLikesCount(ctx context.Context, tx *sqlx.Tx, commentID int64, delta int) error {
	m.likesCountCalls++
	return nil
}

func (m *mockCommentRepository) GetLikes(ctx context.Context, commentID int64) ([]int64, error) {
	return nil, nil
}

type mockLikeRepository struct {
	addFn        func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	removeFn     func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error
	listByPostFn func(ctx context.Context, postID int64) ([]int64, error)
	mapByPostsFn func(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
}

func (m *mockLikeRepository) Add(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	if m.addFn != nil {
		return m.addFn(ctx, tx, postID, userID)
	}
	return true, nil
}

func (m *mockLikeRepository) Remove(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	if m.removeFn != nil {
		return m.removeFn(ctx, tx, postID, userID)
	}
	return nil
}

func (m *mockLikeRepository) ListByPost(ctx context.Context, postID int64) ([]int64, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockLikeRepository) MapByPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	if m.mapByPostsFn != nil {
		return m.mapByPostsFn(ctx, postIDs)
	}
	return map[int64][]int64{}, nil
}

type mockBookmarkRepository struct {
	addFn             func(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error)
	listByPostFn      func(ctx context.Context, postID int64) ([]int64, error)
	mapByPostsFn      func(ctx context.Context, postIDs []int64) (map[int64][]int64, error)
	listPostsByUserFn func(ctx context.Context, userID int64) ([]model.Post, error)
}

func (m *mockBookmarkRepository) Add(ctx context.Context, tx *sqlx.Tx, postID, userID int64) (bool, error) {
	if m.addFn != nil {
		return m.addFn(ctx, tx, postID, userID)
	}
	return true, nil
}

func (m *mockBookmarkRepository) Remove(ctx context.Context, tx *sqlx.Tx, postID, userID int64) error {
	return nil
}

func (m *mockBookmarkRepository) ListByPost(ctx context.Context, postID int64) ([]int64, error) {
	if m.listByPostFn != nil {
		return m.listByPostFn(ctx, postID)
	}
	return nil, nil
}

func (m *mockBookmarkRepository) MapByPosts(ctx context.Context, postIDs []int64) (map[int64][]int64, error) {
	if m.mapByPostsFn != nil {
		return m.mapByPostsFn(ctx, postIDs)
	}
	return map[int64][]int64{}, nil
}

func (m *mockBookmarkRepository) ListPostsByUser(ctx context.Context, userID int64) ([]model.Post, error) {
	if m.listPostsByUserFn != nil {
		return m.listPostsByUserFn(ctx, userID)
	}
	return nil, nil
}

type mockFollowRepository struct {
	addFn            func(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error)
	existsFn         func(ctx context.Context, followerID, followeeID int64) (bool, error)
	getFollowerIDsFn func(ctx context.Context, userID int64) ([]int64, error)
}

func (m *mockFollowRepository) Add(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) (bool, error) {
	if m.addFn != nil {
		return m.addFn(ctx, tx, followerID, followeeID)
	}
	return true, nil
}

func (m *mockFollowRepository) Remove(ctx context.Context, tx *sqlx.Tx, followerID, followeeID int64) error {
	return nil
}

func (m *mockFollowRepository) Exists(ctx context.Context, followerID, followeeID int64) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, followerID, followeeID)
	}
	return false, nil
}

func (m *mockFollowRepository) GetFollowerIDs(ctx context.Context, userID int64) ([]int64, error) {
	if m.getFollowerIDsFn != nil {
		return m.getFollowerIDsFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockFollowRepository) GetFollowers(ctx context.Context, userID int64) ([]model.User, error) {
	return nil, nil
}

func (m *mockFollowRepository) GetFollowing(ctx context.Context, userID int64) ([]model.User, error) {
	return nil, nil
}

type mockPublisher struct {
	events []queue.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event queue.Event) error {
	m.events = append(m.events, event)
	return nil
}
