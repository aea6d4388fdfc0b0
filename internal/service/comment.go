package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"inkwell/internal/model"
	"inkwell/internal/queue"
	"inkwell/internal/repository"
)

// CommentService owns the comment tree under posts. A top-level comment's
// parent is the post itself, so ParentID is never null and depth follows
// directly from the parent.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	publisher   queue.Publisher
	sanitizer   *bluemonday.Policy
	db          *sqlx.DB
	log         *zap.SugaredLogger
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	publisher queue.Publisher,
	db *sqlx.DB,
	log *zap.SugaredLogger,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		publisher:   publisher,
		sanitizer:   bluemonday.UGCPolicy(),
		db:          db,
		log:         log,
	}
}

// Create stores a comment and bumps the post's commentsCount in one
// transaction. An omitted parent defaults to the post itself; a parent from
// another post is rejected. Depth is derived from the parent, never trusted
// from the request.
func (s *CommentService) Create(ctx context.Context, postID, creatorID int64, req model.CreateCommentRequest) (*model.Comment, error) {
	postCreatorID, err := s.postRepo.GetCreatorID(ctx, postID)
	if err != nil {
		return nil, err
	}

	parentID := req.ParentID
	depth := 0
	if parentID == 0 || parentID == postID {
		parentID = postID
	} else {
		parent, err := s.commentRepo.GetByID(ctx, parentID)
		if err != nil {
			return nil, err
		}
		if parent.PostID != postID {
			return nil, model.ErrParentMismatch
		}
		depth = parent.Depth + 1
	}

	comment := &model.Comment{
		PostID:    postID,
		CreatorID: creatorID,
		ParentID:  parentID,
		Content:   s.sanitizer.Sanitize(req.Content),
		Depth:     depth,
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.commentRepo.Create(ctx, tx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if err := s.postRepo.IncrementCommentsCount(ctx, tx, postID, 1); err != nil {
		return nil, fmt.Errorf("increment comments count: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	if postCreatorID != creatorID {
		s.publishEvent(ctx, queue.NewCommentCreatedEvent(postID, creatorID, postCreatorID))
	}
	return comment, nil
}

// ListByPost returns a post's full comment tree, newest first.
func (s *CommentService) ListByPost(ctx context.Context, postID int64) ([]model.Comment, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("check post exists: %w", err)
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}
	return s.commentRepo.ListByPost(ctx, postID)
}

// ListByUser returns a user's comments newer than the optional cursor.
func (s *CommentService) ListByUser(ctx context.Context, creatorID int64, after *time.Time) ([]model.Comment, error) {
	return s.commentRepo.ListByUser(ctx, creatorID, after)
}

// Like records a comment like with its counter in one transaction. A
// duplicate like is a no-op.
func (s *CommentService) Like(ctx context.Context, commentID, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.commentRepo.AddLike(ctx, tx, commentID, userID)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	if err := s.commentRepo.IncrementLikesCount(ctx, tx, commentID, 1); err != nil {
		return err
	}
	return tx.Commit()
}

// Unlike removes a comment like and its counter contribution.
func (s *CommentService) Unlike(ctx context.Context, commentID, userID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.commentRepo.RemoveLike(ctx, tx, commentID, userID); err != nil {
		return err
	}
	if err := s.commentRepo.IncrementLikesCount(ctx, tx, commentID, -1); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *CommentService) publishEvent(ctx context.Context, event queue.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.log.Warnw("publish event failed", "type", event.Type, "error", err)
	}
}
