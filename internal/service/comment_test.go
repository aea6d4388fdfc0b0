package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"inkwell/internal/logger"
	"inkwell/internal/model"
)

func newTestCommentService(commentRepo *mockCommentRepository, postRepo *mockPostRepository) *CommentService {
	return NewCommentService(commentRepo, postRepo, &mockPublisher{}, nil, logger.NewNop())
}

func TestCommentService_Create_UnknownPost(t *testing.T) {
	svc := newTestCommentService(&mockCommentRepository{}, &mockPostRepository{})

	_, err := svc.Create(context.Background(), 99, 1, model.CreateCommentRequest{
		Content: "a reply",
	})
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Fatalf("err = %v, want ErrPostNotFound", err)
	}
}

func TestCommentService_Create_ParentFromAnotherPost(t *testing.T) {
	postRepo := &mockPostRepository{
		getCreatorIDFn: func(ctx context.Context, id int64) (int64, error) {
			return 7, nil
		},
	}
	commentRepo := &mockCommentRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Comment, error) {
			return &model.Comment{ID: id, PostID: 555, Depth: 0}, nil
		},
	}
	svc := newTestCommentService(commentRepo, postRepo)

	_, err := svc.Create(context.Background(), 1, 2, model.CreateCommentRequest{
		Content:  "a reply",
		ParentID: 10,
	})
	if !errors.Is(err, model.ErrParentMismatch) {
		t.Fatalf("err = %v, want ErrParentMismatch", err)
	}
}

func TestCommentService_Create_UnknownParent(t *testing.T) {
	postRepo := &mockPostRepository{
		getCreatorIDFn: func(ctx context.Context, id int64) (int64, error) {
			return 7, nil
		},
	}
	svc := newTestCommentService(&mockCommentRepository{}, postRepo)

	_, err := svc.Create(context.Background(), 1, 2, model.CreateCommentRequest{
		Content:  "a reply",
		ParentID: 10,
	})
	if !errors.Is(err, model.ErrCommentNotFound) {
		t.Fatalf("err = %v, want ErrCommentNotFound", err)
	}
}

func TestCommentService_ListByPost_UnknownPost(t *testing.T) {
	svc := newTestCommentService(&mockCommentRepository{}, &mockPostRepository{})

	_, err := svc.ListByPost(context.Background(), 99)
	if !errors.Is(err, model.ErrPostNotFound) {
		t.Fatalf("err = %v, want ErrPostNotFound", err)
	}
}

func TestCommentService_Like_DuplicateSkipsCounter(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	commentRepo := &mockCommentRepository{
		addLikeFn: func(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) (bool, error) {
			return false, nil
		},
	}
	svc := NewCommentService(commentRepo, &mockPostRepository{}, &mockPublisher{}, db, logger.NewNop())

	if err := svc.Like(context.Background(), 5, 42); err != nil {
		t.Fatalf("Like: %v", err)
	}

	if commentRepo.likesCountCalls != 0 {
		t.Errorf("likesCount increments = %d, want 0 for duplicate like", commentRepo.likesCountCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestCommentService_Unlike_NotLiked(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	commentRepo := &mockCommentRepository{
		removeLikeFn: func(ctx context.Context, tx *sqlx.Tx, commentID, userID int64) error {
			return model.ErrCommentNotLiked
		},
	}
	svc := NewCommentService(commentRepo, &mockPostRepository{}, &mockPublisher{}, db, logger.NewNop())

	err := svc.Unlike(context.Background(), 5, 42)
	if !errors.Is(err, model.ErrCommentNotLiked) {
		t.Fatalf("err = %v, want ErrCommentNotLiked", err)
	}
	if commentRepo.likesCountCalls != 0 {
		t.Errorf("likesCount increments = %d, want 0 when nothing was removed", commentRepo.likesCountCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("transaction expectations: %v", err)
	}
}

func TestCommentView_ParentDefaultsToPost(t *testing.T) {
	// A top-level comment stores the post id as its parent; the projection
	// exposes both as strings.
	c := &model.Comment{ID: 5, PostID: 3, CreatorID: 2, ParentID: 3, Content: "root comment"}
	v := model.NewCommentView(c)

	if v.ParentID != v.PostID {
		t.Errorf("parentId = %s, postId = %s; top-level parent must be the post", v.ParentID, v.PostID)
	}
	if v.Likes == nil {
		t.Error("likes must serialize as an array, not null")
	}
}
