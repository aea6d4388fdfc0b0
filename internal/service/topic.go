package service

import (
	"context"

	"inkwell/internal/model"
	"inkwell/internal/repository"
)

// TopicService resolves topic values for feed filtering.
type TopicService struct {
	repo repository.TopicRepository
}

func NewTopicService(repo repository.TopicRepository) *TopicService {
	return &TopicService{repo: repo}
}

// GetByValue looks a topic up by its natural key.
func (s *TopicService) GetByValue(ctx context.Context, value string) (*model.Topic, error) {
	return s.repo.GetByValue(ctx, value)
}
