package catalog

import (
	"context"
	"strings"

	"skillswap/pkg/logger"
)

type Service struct {
	repo   Repository
	logger logger.Logger
}

func NewService(repo Repository, logger logger.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Resolve normalizes a free-text skill name to its canonical Skill entity,
// creating it if no case-insensitive match exists.
func (s *Service) Resolve(ctx context.Context, rawName string) (*Skill, error) {
	name := strings.TrimSpace(rawName)
	if name == "" {
		return nil, ErrEmptySkillName
	}

	skill, err := s.repo.GetOrCreate(ctx, name)
	if err != nil {
		s.logger.Error(ctx, "failed to resolve skill",
			logger.Field{Key: "name", Value: name},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	return skill, nil
}

// GetByID retrieves a skill by ID
func (s *Service) GetByID(ctx context.Context, skillID string) (*Skill, error) {
	return s.repo.GetByID(ctx, skillID)
}

// List retrieves all skills
func (s *Service) List(ctx context.Context) ([]*Skill, error) {
	return s.repo.List(ctx)
}
