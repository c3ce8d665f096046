package swap

import (
	"context"
	"fmt"

	"skillswap/internal/service/profile"
	"skillswap/pkg/id"
	"skillswap/pkg/logger"
)

// EffectDispatcher executes the side effects emitted by a transition.
type EffectDispatcher interface {
	Dispatch(ctx context.Context, effects []Effect)
}

type Service struct {
	repo       Repository
	profiles   *profile.Service
	dispatcher EffectDispatcher
	ids        *id.Generator
	baseURL    string
	logger     logger.Logger
}

func NewService(repo Repository, profiles *profile.Service, dispatcher EffectDispatcher, ids *id.Generator, baseURL string, logger logger.Logger) *Service {
	return &Service{
		repo:       repo,
		profiles:   profiles,
		dispatcher: dispatcher,
		ids:        ids,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Create opens a new pending proposal from the caller towards the owner
// of the target offer.
func (s *Service) Create(ctx context.Context, userID string, req CreateProposalRequest) (*Proposal, error) {
	proposer, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	myOffer, err := s.profiles.GetOffer(ctx, req.MyOfferID)
	if err != nil {
		return nil, err
	}
	if myOffer.ProfileID != proposer.ID {
		return nil, ErrOfferNotOwned
	}

	target, err := s.profiles.GetOffer(ctx, req.TargetOfferID)
	if err != nil {
		return nil, err
	}
	if target.ProfileID == proposer.ID {
		return nil, ErrSelfProposal
	}

	pending, err := s.repo.CountPendingByOffers(ctx, myOffer.ID, target.ID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, ErrDuplicateProposal
	}

	proposal := &Proposal{
		ID:               s.ids.Next(),
		ProposerID:       proposer.ID,
		ResponderID:      target.ProfileID,
		ProposerOfferID:  myOffer.ID,
		ResponderOfferID: target.ID,
		Message:          req.Message,
		Status:           StatusPending,
	}

	if err := s.repo.CreateProposal(ctx, proposal); err != nil {
		s.logger.Error(ctx, "failed to create proposal",
			logger.Field{Key: "proposer_id", Value: proposer.ID},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	s.logger.Info(ctx, "proposal created",
		logger.Field{Key: "proposal_id", Value: proposal.ID},
		logger.Field{Key: "proposer_id", Value: proposer.ID},
		logger.Field{Key: "responder_id", Value: target.ProfileID},
	)

	return proposal, nil
}

// Get retrieves a proposal for one of its participants.
func (s *Service) Get(ctx context.Context, userID string, proposalID int64) (*Proposal, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.IsParticipant(p.ID) {
		return nil, ErrNotParticipant
	}

	// Completed swaps carry their review, when one has been left.
	if proposal.Status == StatusCompleted {
		review, err := s.repo.GetReviewByProposal(ctx, proposalID)
		if err != nil {
			return nil, err
		}
		proposal.Review = review
	}

	return proposal, nil
}

// ListMine retrieves the caller's sent and received proposals.
func (s *Service) ListMine(ctx context.Context, userID string) (sent, received []*Proposal, err error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	return s.repo.ListProposalsByProfile(ctx, p.ID)
}

// Accept transitions a pending proposal to accepted. Only the responder
// may accept. The transition is guarded against concurrent accept/decline;
// exactly one caller wins. On success the emitted effects (one push to the
// proposer's notification channels, one email) are dispatched after the
// commit, best-effort.
func (s *Service) Accept(ctx context.Context, userID string, proposalID int64) (*Proposal, error) {
	proposal, err := s.decide(ctx, userID, proposalID, StatusAccepted)
	if err != nil {
		return nil, err
	}

	effects := AcceptEffects(proposal, s.baseURL)
	go s.dispatcher.Dispatch(context.WithoutCancel(ctx), effects)

	s.logger.Info(ctx, "proposal accepted", logger.Field{Key: "proposal_id", Value: proposalID})
	return proposal, nil
}

// Decline transitions a pending proposal to declined. No notification or
// email is produced.
func (s *Service) Decline(ctx context.Context, userID string, proposalID int64) (*Proposal, error) {
	proposal, err := s.decide(ctx, userID, proposalID, StatusDeclined)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "proposal declined", logger.Field{Key: "proposal_id", Value: proposalID})
	return proposal, nil
}

func (s *Service) decide(ctx context.Context, userID string, proposalID int64, next Status) (*Proposal, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if proposal.ResponderID != p.ID {
		return nil, ErrNotResponder
	}

	won, err := s.repo.UpdateStatusIf(ctx, proposalID, StatusPending, next)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrNotPending
	}

	proposal.Status = next
	return proposal, nil
}

// Complete marks an accepted swap as completed. Either participant may do so.
func (s *Service) Complete(ctx context.Context, userID string, proposalID int64) (*Proposal, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.IsParticipant(p.ID) {
		return nil, ErrNotParticipant
	}

	won, err := s.repo.UpdateStatusIf(ctx, proposalID, StatusAccepted, StatusCompleted)
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, ErrNotAccepted
	}

	proposal.Status = StatusCompleted
	return proposal, nil
}

// PostMessage appends a message to the proposal thread. Participants may
// message at any status; the proposal itself is untouched.
func (s *Service) PostMessage(ctx context.Context, userID string, proposalID int64, content string) (*Message, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.IsParticipant(p.ID) {
		return nil, ErrNotParticipant
	}

	m := &Message{
		ID:             s.ids.Next(),
		ProposalID:     proposalID,
		SenderID:       p.ID,
		SenderUsername: p.Username,
		Content:        content,
	}

	if err := s.repo.CreateMessage(ctx, m); err != nil {
		s.logger.Error(ctx, "failed to post message",
			logger.Field{Key: "proposal_id", Value: proposalID},
			logger.Field{Key: "error", Value: err},
		)
		return nil, err
	}

	return m, nil
}

// ListMessages retrieves a proposal's thread in creation order.
func (s *Service) ListMessages(ctx context.Context, userID string, proposalID int64) ([]*Message, error) {
	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.IsParticipant(p.ID) {
		return nil, ErrNotParticipant
	}

	return s.repo.ListMessages(ctx, proposalID)
}

// CreateReview stores a participant's review of a completed swap.
func (s *Service) CreateReview(ctx context.Context, userID string, proposalID int64, req CreateReviewRequest) (*Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRating
	}

	p, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	proposal, err := s.repo.GetProposalByID(ctx, proposalID)
	if err != nil {
		return nil, err
	}
	if !proposal.IsParticipant(p.ID) {
		return nil, ErrNotParticipant
	}
	if proposal.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}

	review := &Review{
		ProposalID: proposalID,
		ReviewerID: p.ID,
		Rating:     req.Rating,
		Text:       req.Text,
	}

	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	return review, nil
}

// CallURL returns the absolute join URL for a proposal's call room.
func (s *Service) CallURL(proposalID int64) string {
	return VideoCallURL(s.baseURL, proposalID)
}

// VideoCallURL returns the absolute join URL for a proposal's call room.
func VideoCallURL(baseURL string, proposalID int64) string {
	return fmt.Sprintf("%s/video_call/%d", baseURL, proposalID)
}

// AcceptEffects builds the side effects of a successful accept: exactly
// one push notification and one email, both addressed to the proposer.
func AcceptEffects(p *Proposal, baseURL string) []Effect {
	url := VideoCallURL(baseURL, p.ID)

	push := PushEffect{
		Username: p.Proposer.Username,
		Payload: NotificationPayload{
			Type:       "video_call_invitation",
			ProposalID: p.ID,
			Message:    fmt.Sprintf("%s has accepted your proposal. Join the video call now!", p.Responder.Username),
			URL:        url,
		},
	}

	email := EmailEffect{
		To:      p.Proposer.Email,
		Subject: "Your Swap Proposal Has Been Accepted!",
		Body: fmt.Sprintf(`Hello %s,

Your swap proposal for %s has been accepted by %s.

You can now join the video call to discuss the details.

Click here to join: %s

Best regards,
The SkillSwap Team
`, p.Proposer.Username, p.ProposerOffer.Skill.Name, p.Responder.Username, url),
	}

	return []Effect{push, email}
}
