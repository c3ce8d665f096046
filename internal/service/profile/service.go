package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skillswap/internal/service/catalog"
	"skillswap/pkg/cache"
	"skillswap/pkg/logger"
)

const profileCacheTTL = 5 * time.Minute

type Service struct {
	repo    Repository
	catalog *catalog.Service
	cache   cache.Cache
	logger  logger.Logger
}

func NewService(repo Repository, catalogService *catalog.Service, cache cache.Cache, logger logger.Logger) *Service {
	return &Service{
		repo:    repo,
		catalog: catalogService,
		cache:   cache,
		logger:  logger,
	}
}

// Provision creates the profile for a newly confirmed account. It runs
// exactly once per identity, during onboarding; read paths never create
// profiles as a side effect.
func (s *Service) Provision(ctx context.Context, userID string) (*Profile, error) {
	existing, err := s.repo.GetProfileByUserID(ctx, userID)
	if err == nil {
		return existing, nil
	}
	if err != ErrProfileNotFound {
		return nil, fmt.Errorf("check existing profile: %w", err)
	}

	p := &Profile{
		ID:     uuid.New().String(),
		UserID: userID,
	}

	if err := s.repo.CreateProfile(ctx, p); err != nil {
		// Lost a provisioning race; the winner's row is the profile.
		if err == ErrProfileExists {
			return s.repo.GetProfileByUserID(ctx, userID)
		}
		s.logger.Error(ctx, "failed to provision profile",
			logger.Field{Key: "user_id", Value: userID},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	return s.repo.GetProfileByUserID(ctx, userID)
}

// GetByUserID retrieves the profile owned by a user
func (s *Service) GetByUserID(ctx context.Context, userID string) (*Profile, error) {
	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// GetByUsername retrieves a public profile, serving from cache when possible.
func (s *Service) GetByUsername(ctx context.Context, username string) (*Profile, error) {
	key := "profile:" + username

	if cached, err := s.cache.Get(ctx, key); err == nil {
		var p Profile
		if err := json.Unmarshal([]byte(cached), &p); err == nil {
			return &p, nil
		}
	}

	p, err := s.repo.GetProfileByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(p); err == nil {
		s.cache.Set(ctx, key, string(payload), profileCacheTTL)
	}

	return p, nil
}

// Update edits bio, location and photo on the caller's own profile.
func (s *Service) Update(ctx context.Context, userID string, req UpdateProfileRequest) (*Profile, error) {
	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Bio != nil {
		p.Bio = *req.Bio
	}
	if req.Location != nil {
		p.Location = *req.Location
	}
	if req.PhotoURL != nil {
		p.PhotoURL = *req.PhotoURL
	}

	if err := s.repo.UpdateProfile(ctx, p); err != nil {
		s.logger.Error(ctx, "failed to update profile",
			logger.Field{Key: "profile_id", Value: p.ID},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	s.cache.Del(ctx, "profile:"+p.Username)

	s.logger.Info(ctx, "profile updated", logger.Field{Key: "profile_id", Value: p.ID})
	return p, nil
}

// CreateOffer resolves the skill through the catalog and creates the offer.
func (s *Service) CreateOffer(ctx context.Context, userID string, req CreateOfferRequest) (*Offer, error) {
	level, err := ParseLevel(req.Level)
	if err != nil {
		return nil, err
	}

	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	skill, err := s.catalog.Resolve(ctx, req.SkillName)
	if err != nil {
		return nil, err
	}

	offer := &Offer{
		ProfileID:       p.ID,
		Skill:           *skill,
		Description:     req.Description,
		Level:           level,
		AvailableOnline: req.AvailableOnline,
	}

	if err := s.repo.CreateOffer(ctx, offer); err != nil {
		s.logger.Error(ctx, "failed to create offer",
			logger.Field{Key: "profile_id", Value: p.ID},
			logger.Field{Key: "skill", Value: skill.Name},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	s.logger.Info(ctx, "offer created",
		logger.Field{Key: "offer_id", Value: offer.ID},
		logger.Field{Key: "skill", Value: skill.Name},
	)
	return offer, nil
}

// DeleteOffer removes an offer owned by the caller.
func (s *Service) DeleteOffer(ctx context.Context, userID, offerID string) error {
	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}

	offer, err := s.repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return err
	}
	if offer.ProfileID != p.ID {
		return ErrNotOfferOwner
	}

	return s.repo.DeleteOffer(ctx, offerID)
}

// CreateRequest resolves the skill through the catalog and creates the request.
func (s *Service) CreateRequest(ctx context.Context, userID string, req CreateRequestRequest) (*Request, error) {
	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	skill, err := s.catalog.Resolve(ctx, req.SkillName)
	if err != nil {
		return nil, err
	}

	request := &Request{
		ProfileID: p.ID,
		Skill:     *skill,
		Details:   req.Details,
	}

	if err := s.repo.CreateRequest(ctx, request); err != nil {
		s.logger.Error(ctx, "failed to create request",
			logger.Field{Key: "profile_id", Value: p.ID},
			logger.Field{Key: "skill", Value: skill.Name},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	return request, nil
}

// DeleteRequest removes a request owned by the caller.
func (s *Service) DeleteRequest(ctx context.Context, userID, requestID string) error {
	p, err := s.repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		return err
	}

	request, err := s.repo.GetRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.ProfileID != p.ID {
		return ErrNotRequestOwner
	}

	return s.repo.DeleteRequest(ctx, requestID)
}

// ListOffers retrieves all offers owned by a profile
func (s *Service) ListOffers(ctx context.Context, profileID string) ([]*Offer, error) {
	return s.repo.ListOffersByProfile(ctx, profileID)
}

// ListRequests retrieves all requests owned by a profile
func (s *Service) ListRequests(ctx context.Context, profileID string) ([]*Request, error) {
	return s.repo.ListRequestsByProfile(ctx, profileID)
}

// BrowseOffers lists recent offers, optionally filtered by skill name.
func (s *Service) BrowseOffers(ctx context.Context, q string, limit int) ([]*Offer, error) {
	if q != "" {
		return s.repo.SearchOffersBySkillName(ctx, q)
	}
	if limit <= 0 {
		limit = 12
	}
	return s.repo.ListRecentOffers(ctx, limit)
}

// GetOffer retrieves an offer by ID
func (s *Service) GetOffer(ctx context.Context, offerID string) (*Offer, error) {
	return s.repo.GetOfferByID(ctx, offerID)
}

// GetOfferDetail retrieves an offer together with its owner's public
// profile. The owner's email is never exposed on the public view.
func (s *Service) GetOfferDetail(ctx context.Context, offerID string) (*Offer, *Profile, error) {
	offer, err := s.repo.GetOfferByID(ctx, offerID)
	if err != nil {
		return nil, nil, err
	}

	owner, err := s.repo.GetProfileByID(ctx, offer.ProfileID)
	if err != nil {
		return nil, nil, err
	}

	public := *owner
	public.Email = ""
	return offer, &public, nil
}
