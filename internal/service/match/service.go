package match

import (
	"context"

	"skillswap/internal/service/profile"
	"skillswap/pkg/logger"
)

type Service struct {
	matcher  Matcher
	profiles *profile.Service
	logger   logger.Logger
}

func NewService(matcher Matcher, profiles *profile.Service, logger logger.Logger) *Service {
	return &Service{
		matcher:  matcher,
		profiles: profiles,
		logger:   logger,
	}
}

// FindMatches returns ranked swap suggestions for the authenticated user.
// Callers may truncate with limit; limit <= 0 returns the full sequence.
func (s *Service) FindMatches(ctx context.Context, userID string, limit int) ([]Match, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches, err := s.matcher.FindMatches(ctx, p)
	if err != nil {
		s.logger.Error(ctx, "failed to find matches",
			logger.Field{Key: "profile_id", Value: p.ID},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	if limit > 0 && limit < len(matches) {
		matches = matches[:limit]
	}

	s.logger.Info(ctx, "matches computed",
		logger.Field{Key: "profile_id", Value: p.ID},
		logger.Field{Key: "count", Value: len(matches)},
	)

	return matches, nil
}
