package service

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"inkwell/internal/model"
	"inkwell/internal/queue"
	"inkwell/internal/repository"
)

// FollowService owns the follow graph and its two denormalized counters.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
	publisher  queue.Publisher
	db         *sqlx.DB
	log        *zap.SugaredLogger
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	publisher queue.Publisher,
	db *sqlx.DB,
	log *zap.SugaredLogger,
) *FollowService {
	return &FollowService{
		followRepo: followRepo,
		userRepo:   userRepo,
		publisher:  publisher,
		db:         db,
		log:        log,
	}
}

// Follow records the edge and moves the followee's followersCount and the
// follower's followingCount in one transaction. A duplicate follow is a
// no-op; following yourself is rejected.
func (s *FollowService) Follow(ctx context.Context, followerID, followeeID int64) error {
	if followerID == followeeID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.userRepo.GetByID(ctx, followeeID); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	inserted, err := s.followRepo.Add(ctx, tx, followerID, followeeID)
	if err != nil {
		return err
	}
	if !inserted {
		return nil
	}

	if err := s.userRepo.IncrementFollowerCount(ctx, tx, followeeID, 1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementFollowingCount(ctx, tx, followerID, 1); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	if s.publisher != nil {
		event := queue.NewUserFollowedEvent(followerID, followeeID)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.log.Warnw("publish event failed", "type", event.Type, "error", err)
		}
	}
	return nil
}

// Unfollow removes the edge and both counter contributions. Removing an edge
// that does not exist is an error.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followeeID int64) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.followRepo.Remove(ctx, tx, followerID, followeeID); err != nil {
		return err
	}
	if err := s.userRepo.IncrementFollowerCount(ctx, tx, followeeID, -1); err != nil {
		return err
	}
	if err := s.userRepo.IncrementFollowingCount(ctx, tx, followerID, -1); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *FollowService) IsFollowing(ctx context.Context, followerID, followeeID int64) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followeeID)
}

func (s *FollowService) GetFollowers(ctx context.Context, userID int64) ([]model.User, error) {
	return s.followRepo.GetFollowers(ctx, userID)
}

func (s *FollowService) GetFollowing(ctx context.Context, userID int64) ([]model.User, error) {
	return s.followRepo.GetFollowing(ctx, userID)
}
