package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"inkwell/internal/model"
	"inkwell/internal/queue"
	"inkwell/internal/repository"
)

// PostService owns the post lifecycle, the feed queries and the paired
// relation/counter mutations for likes and bookmarks.
type PostService struct {
	postRepo     repository.PostRepository
	userRepo     repository.UserRepository
	topicRepo    repository.TopicRepository
	likeRepo     repository.LikeRepository
	bookmarkRepo repository.BookmarkRepository
	publisher    queue.Publisher
	sanitizer    *bluemonday.Policy
	db           *sqlx.DB
	log          *zap.SugaredLogger
}

func NewPostService(
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	topicRepo repository.TopicRepository,
	likeRepo repository.LikeRepository,
	bookmarkRepo repository.BookmarkRepository,
	publisher queue.Publisher,
	db *sqlx.DB,
	log *zap.SugaredLogger,
) *PostService {
	return &PostService{
		postRepo:     postRepo,
		userRepo:     userRepo,
		topicRepo:    topicRepo,
		likeRepo:     likeRepo,
		bookmarkRepo: bookmarkRepo,
		publisher:    publisher,
		sanitizer:    bluemonday.UGCPolicy(),
		db:           db,
		log:          log,
	}
}

// Create stores a post. Topic resolution, the post insert and the author's
// postsCount bump run in one transaction; postsCount moves only when the post
// goes live as published. Content is sanitized before storage.
func (s *PostService) Create(ctx context.Context, creatorID int64, req model.CreatePostRequest) (*model.PostDetail, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	topicIDs := make([]int64, 0, len(req.Topics))
	for _, d := range req.Topics {
		id, err := s.topicRepo.ResolveOrCreate(ctx, tx, d)
		if err != nil {
			return nil, fmt.Errorf("resolve topic %q: %w", d.Value, err)
		}
		topicIDs = append(topicIDs, id)
	}

	post := &model.Post{
		CreatorID:   creatorID,
		Title:       req.Title,
		Content:     s.sanitizer.Sanitize(req.Content),
		Cover:       req.Cover,
		Topics:      topicIDs,
		ReadingTime: req.ReadingTime,
		Published:   req.Published,
	}

	if err := s.postRepo.Create(ctx, tx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	if post.Published {
		if err := s.userRepo.IncrementPostsCount(ctx, tx, creatorID, 1); err != nil {
			return nil, fmt.Errorf("increment posts count: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if post.Published {
		s.publish(ctx, queue.NewPostPublishedEvent(post.ID, creatorID))
	}

	creator, err := s.userRepo.GetByID(ctx, creatorID)
	if err == nil {
		post.Creator = creator
	}

	topics, err := s.topicViews(ctx, topicIDs)
	if err != nil {
		return nil, err
	}
	return model.NewPostDetail(post, topics, nil, nil), nil
}

// GetByID returns the full detail projection with topics, like and bookmark
// sets hydrated. viewerID marks IsLiked/IsBookmarked when present.
func (s *PostService) GetByID(ctx context.Context, postID int64, viewerID *int64) (*model.PostDetail, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	topics, err := s.topicViews(ctx, post.Topics)
	if err != nil {
		return nil, err
	}

	likes, err := s.likeRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	bookmarks, err := s.bookmarkRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	detail := model.NewPostDetail(post, topics, likes, bookmarks)
	if viewerID != nil {
		detail.IsLiked = containsID(likes, *viewerID)
		detail.IsBookmarked = containsID(bookmarks, *viewerID)
	}
	return detail, nil
}

// List runs the filtered feed query. With Random set, the caller's skip is
// replaced by an offset drawn from a fresh total count, so repeated calls
// sample different windows of the newest-first ordering.
func (s *PostService) List(ctx context.Context, filter model.PostFilter) ([]model.PostView, error) {
	if filter.Limit <= 0 {
		filter.Limit = model.DefaultListLimit
	}

	if filter.Random {
		count, err := s.postRepo.Count(ctx)
		if err != nil {
			return nil, fmt.Errorf("count posts: %w", err)
		}
		filter.Skip = randomOffset(count, model.RandomWindow, rand.Intn)
		filter.Limit = model.RandomWindow
	}

	posts, err := s.postRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return s.buildViews(ctx, posts)
}

// ListByUser returns a user's posts newer than the optional cursor.
func (s *PostService) ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.PostView, error) {
	posts, err := s.postRepo.ListByUser(ctx, creatorID, after)
	if err != nil {
		return nil, fmt.Errorf("list user posts: %w", err)
	}
	return s.buildViews(ctx, posts)
}

// Update applies a partial update after an ownership check. Publishing a
// draft moves the author's postsCount and emits the publish event;
// unpublishing moves it back.
func (s *PostService) Update(ctx context.Context, postID, actorID int64, patch model.UpdatePostRequest) (*model.PostDetail, error) {
	current, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if current.CreatorID != actorID {
		return nil, model.ErrForbidden
	}

	if patch.Content != nil {
		clean := s.sanitizer.Sanitize(*patch.Content)
		patch.Content = &clean
	}

	post, err := s.postRepo.Update(ctx, postID, patch)
	if err != nil {
		return nil, err
	}

	if patch.Published != nil && *patch.Published != current.Published {
		delta := -1
		if *patch.Published {
			delta = 1
		}
		if err := s.adjustPostsCount(ctx, actorID, delta); err != nil {
			return nil, err
		}
		if *patch.Published {
			s.publish(ctx, queue.NewPostPublishedEvent(post.ID, actorID))
		}
	}

	return s.GetByID(ctx, post.ID, &actorID)
}

// Like records a like and bumps the post's likesCount in one transaction. A
// duplicate like is a no-op, so the counter stays equal to the set size.
func (s *PostService) Like(ctx context.Context, postID, userID int64) error {
	creatorID, err := s.postRepo.GetCreatorID(ctx, postID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.likeRepo.Add(ctx, tx, postID, userID)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	if err := s.postRepo.IncrementLikesCount(ctx, tx, postID, 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if creatorID != userID {
		s.publish(ctx, queue.NewPostLikedEvent(postID, userID, creatorID))
	}
	return nil
}

// Unlike removes a like and its counter contribution. Removing a like that
// was never recorded is an error, not a silent decrement.
func (s *PostService) Unlike(ctx context.Context, postID, userID int64) error {
	creatorID, err := s.postRepo.GetCreatorID(ctx, postID)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.likeRepo.Remove(ctx, tx, postID, userID); err != nil {
		return err
	}
	if err := s.postRepo.IncrementLikesCount(ctx, tx, postID, -1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	// Retract the like notification.
	if creatorID != userID {
		s.publish(ctx, queue.NewPostUnlikedEvent(postID, userID, creatorID))
	}
	return nil
}

// Bookmark records a bookmark; the post's bookmarksCount and the user's own
// bookmarksCount move together with the insert.
func (s *PostService) Bookmark(ctx context.Context, postID, userID int64) error {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return model.ErrPostNotFound
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.bookmarkRepo.Add(ctx, tx, postID, userID)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	if err := s.postRepo.IncrementBookmarksCount(ctx, tx, postID, 1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementBookmarksCount(ctx, tx, userID, 1); err != nil {
		return err
	}
	return tx.Commit()
}

// Unbookmark removes a bookmark and both counter contributions.
func (s *PostService) Unbookmark(ctx context.Context, postID, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookmarkRepo.Remove(ctx, tx, postID, userID); err != nil {
		return err
	}
	if err := s.postRepo.IncrementBookmarksCount(ctx, tx, postID, -1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementBookmarksCount(ctx, tx, userID, -1); err != nil {
		return err
	}
	return tx.Commit()
}

// GetLikes returns the ids of users who liked a post.
func (s *PostService) GetLikes(ctx context.Context, postID int64) ([]int64, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}
	return s.likeRepo.ListByPost(ctx, postID)
}

// GetBookmarks returns the ids of users who bookmarked a post.
func (s *PostService) GetBookmarks(ctx context.Context, postID int64) ([]int64, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}
	return s.bookmarkRepo.ListByPost(ctx, postID)
}

// GetBookmarkedPosts returns the hydrated posts a user has saved.
func (s *PostService) GetBookmarkedPosts(ctx context.Context, userID int64) ([]model.PostView, error) {
	posts, err := s.bookmarkRepo.ListPostsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list bookmarked posts: %w", err)
	}
	return s.buildViews(ctx, posts)
}

// buildViews hydrates topics and the like/bookmark id sets for a page of
// posts with one batched query per concern.
func (s *PostService) buildViews(ctx context.Context, posts []model.Post) ([]model.PostView, error) {
	if len(posts) == 0 {
		return []model.PostView{}, nil
	}

	postIDs := make([]int64, len(posts))
	var topicIDs []int64
	seen := make(map[int64]struct{})
	for i, p := range posts {
		postIDs[i] = p.ID
		for _, tid := range p.Topics {
			if _, ok := seen[tid]; !ok {
				seen[tid] = struct{}{}
				topicIDs = append(topicIDs, tid)
			}
		}
	}

	topics, err := s.topicRepo.GetByIDs(ctx, topicIDs)
	if err != nil {
		return nil, fmt.Errorf("get topics: %w", err)
	}
	topicsByID := make(map[int64]model.Topic, len(topics))
	for _, t := range topics {
		topicsByID[t.ID] = t
	}

	likesByPost, err := s.likeRepo.MapByPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("map likes: %w", err)
	}
	bookmarksByPost, err := s.bookmarkRepo.MapByPosts(ctx, postIDs)
	if err != nil {
		return nil, fmt.Errorf("map bookmarks: %w", err)
	}

	views := make([]model.PostView, 0, len(posts))
	for i := range posts {
		p := &posts[i]
		var topicViews []model.TopicView
		for _, tid := range p.Topics {
			if t, ok := topicsByID[tid]; ok {
				topicViews = append(topicViews, model.NewTopicView(&t))
			}
		}
		views = append(views, model.NewPostView(p, topicViews, likesByPost[p.ID], bookmarksByPost[p.ID]))
	}
	return views, nil
}

func (s *PostService) topicViews(ctx context.Context, ids []int64) ([]model.TopicView, error) {
	topics, err := s.topicRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get topics: %w", err)
	}
	views := make([]model.TopicView, 0, len(topics))
	for i := range topics {
		views = append(views, model.NewTopicView(&topics[i]))
	}
	return views, nil
}

func (s *PostService) adjustPostsCount(ctx context.Context, userID int64, delta int) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.userRepo.IncrementPostsCount(ctx, tx, userID, delta); err != nil {
		return err
	}
	return tx.Commit()
}

// publish is fire-and-forget: a broken stream never fails the mutation that
// already committed.
func (s *PostService) publish(ctx context.Context, event queue.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warnw("publish event failed", "type", event.Type, "error", err)
	}
}

// randomOffset picks a uniform offset into the newest-first ordering leaving
// at least window rows after it. Collections at or under the window size
// always start at zero.
func randomOffset(count, window int, intn func(int) int) int {
	if count <= window {
		return 0
	}
	return intn(count - window)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
