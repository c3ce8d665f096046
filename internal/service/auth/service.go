package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"skillswap/internal/service/profile"
	"skillswap/pkg/logger"
	"skillswap/pkg/oauth2"
	"skillswap/pkg/session"
)

// usernameAttempts bounds how many suffixed candidates we try before
// giving up on a contended username.
const usernameAttempts = 5

type Service struct {
	repo     Repository
	profiles *profile.Service
	sessions session.Store
	logger   logger.Logger
}

func NewService(repo Repository, profiles *profile.Service, sessions session.Store, logger logger.Logger) *Service {
	return &Service{
		repo:     repo,
		profiles: profiles,
		sessions: sessions,
		logger:   logger,
	}
}

// HandleCallback is wired as the oauth2 manager's CallbackFunc. It upserts
// the account keyed by the provider's subject claim, provisions the profile
// on first login, and opens a session.
func (s *Service) HandleCallback(ctx context.Context, provider string, userInfo *oauth2.UserInfo, _ *oauth2.TokenSet) (*oauth2.CallbackInfo, error) {
	user, err := s.repo.GetUserBySubject(ctx, userInfo.Subject)
	if err == ErrUserNotFound {
		user, err = s.register(ctx, userInfo)
	}
	if err != nil {
		s.logger.Error(ctx, "login failed",
			logger.Field{Key: "provider", Value: provider},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	if _, err := s.profiles.Provision(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("provision profile: %w", err)
	}

	token, err := s.sessions.Create(ctx, session.Session{
		UserID:   user.ID,
		Username: user.Username,
	}, session.DefaultTTL)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info(ctx, "user logged in",
		logger.Field{Key: "user_id", Value: user.ID},
		logger.Field{Key: "provider", Value: provider},
	)

	return &oauth2.CallbackInfo{
		SessionToken: token,
		RedirectURL:  "/api/v1/profiles/me",
	}, nil
}

func (s *Service) register(ctx context.Context, userInfo *oauth2.UserInfo) (*User, error) {
	base := usernameFromEmail(userInfo.Email)

	for attempt := 0; attempt < usernameAttempts; attempt++ {
		user := &User{
			ID:       uuid.New().String(),
			Subject:  userInfo.Subject,
			Email:    userInfo.Email,
			Username: candidateUsername(base, attempt),
		}

		err := s.repo.CreateUser(ctx, user)
		if err == nil {
			s.logger.Info(ctx, "user registered",
				logger.Field{Key: "user_id", Value: user.ID},
				logger.Field{Key: "username", Value: user.Username},
			)
			return user, nil
		}
		if err != ErrUsernameExists {
			return nil, err
		}
	}

	return nil, ErrUsernameExists
}

// usernameFromEmail derives a username from the email local part, keeping
// only characters safe to embed in channel names and URLs.
func usernameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	var b strings.Builder
	for _, r := range strings.ToLower(local) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}

func candidateUsername(base string, attempt int) string {
	if attempt == 0 {
		return base
	}
	return fmt.Sprintf("%s_%s", base, uuid.New().String()[:8])
}

// Authenticate resolves a session token to its session.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Session, error) {
	return s.sessions.Get(ctx, token)
}

// Logout invalidates a session token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
