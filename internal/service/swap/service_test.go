package swap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/service/catalog"
	"skillswap/internal/service/profile"
	"skillswap/pkg/id"
	"skillswap/pkg/logger"
)

// fakeProfileRepo backs the profile service with in-memory state. Only the
// lookups the proposal lifecycle touches are populated.
type fakeProfileRepo struct {
	profilesByUser map[string]*profile.Profile
	offers         map[string]*profile.Offer
}

func (f *fakeProfileRepo) CreateProfile(context.Context, *profile.Profile) error { return nil }

func (f *fakeProfileRepo) GetProfileByID(_ context.Context, profileID string) (*profile.Profile, error) {
	for _, p := range f.profilesByUser {
		if p.ID == profileID {
			return p, nil
		}
	}
	return nil, profile.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetProfileByUserID(_ context.Context, userID string) (*profile.Profile, error) {
	if p, ok := f.profilesByUser[userID]; ok {
		return p, nil
	}
	return nil, profile.ErrProfileNotFound
}

func (f *fakeProfileRepo) GetProfileByUsername(_ context.Context, username string) (*profile.Profile, error) {
	for _, p := range f.profilesByUser {
		if p.Username == username {
			return p, nil
		}
	}
	return nil, profile.ErrProfileNotFound
}

func (f *fakeProfileRepo) UpdateProfile(context.Context, *profile.Profile) error { return nil }

func (f *fakeProfileRepo) CreateOffer(context.Context, *profile.Offer) error { return nil }

func (f *fakeProfileRepo) GetOfferByID(_ context.Context, offerID string) (*profile.Offer, error) {
	if o, ok := f.offers[offerID]; ok {
		return o, nil
	}
	return nil, profile.ErrOfferNotFound
}

func (f *fakeProfileRepo) DeleteOffer(context.Context, string) error { return nil }

func (f *fakeProfileRepo) ListOffersByProfile(context.Context, string) ([]*profile.Offer, error) {
	return nil, nil
}

func (f *fakeProfileRepo) ListRecentOffers(context.Context, int) ([]*profile.Offer, error) {
	return nil, nil
}

func (f *fakeProfileRepo) SearchOffersBySkillName(context.Context, string) ([]*profile.Offer, error) {
	return nil, nil
}

func (f *fakeProfileRepo) CreateRequest(context.Context, *profile.Request) error { return nil }

func (f *fakeProfileRepo) GetRequestByID(context.Context, string) (*profile.Request, error) {
	return nil, profile.ErrRequestNotFound
}

func (f *fakeProfileRepo) DeleteRequest(context.Context, string) error { return nil }

func (f *fakeProfileRepo) ListRequestsByProfile(context.Context, string) ([]*profile.Request, error) {
	return nil, nil
}

// fakeSwapRepo holds a single proposal and mimics the guarded transition.
type fakeSwapRepo struct {
	proposal     *Proposal
	pendingCount int
	created      []*Proposal
	messages     []*Message
	reviews      []*Review
	// transitionWins forces the UpdateStatusIf outcome, simulating a
	// concurrent transition having already fired when false.
	transitionWins bool
}

func (f *fakeSwapRepo) CreateProposal(_ context.Context, p *Proposal) error {
	f.created = append(f.created, p)
	return nil
}

func (f *fakeSwapRepo) GetProposalByID(_ context.Context, proposalID int64) (*Proposal, error) {
	if f.proposal != nil && f.proposal.ID == proposalID {
		return f.proposal, nil
	}
	return nil, ErrProposalNotFound
}

func (f *fakeSwapRepo) ListProposalsByProfile(context.Context, string) ([]*Proposal, []*Proposal, error) {
	return nil, nil, nil
}

func (f *fakeSwapRepo) UpdateStatusIf(_ context.Context, _ int64, expected, next Status) (bool, error) {
	if !f.transitionWins {
		return false, nil
	}
	if f.proposal.Status != expected {
		return false, nil
	}
	f.proposal.Status = next
	return true, nil
}

func (f *fakeSwapRepo) CountPendingByOffers(context.Context, string, string) (int, error) {
	return f.pendingCount, nil
}

func (f *fakeSwapRepo) CreateMessage(_ context.Context, m *Message) error {
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeSwapRepo) ListMessages(context.Context, int64) ([]*Message, error) {
	return f.messages, nil
}

func (f *fakeSwapRepo) CreateReview(_ context.Context, r *Review) error {
	for _, existing := range f.reviews {
		if existing.ProposalID == r.ProposalID {
			return ErrReviewExists
		}
	}
	f.reviews = append(f.reviews, r)
	return nil
}

func (f *fakeSwapRepo) GetReviewByProposal(_ context.Context, proposalID int64) (*Review, error) {
	for _, r := range f.reviews {
		if r.ProposalID == proposalID {
			return r, nil
		}
	}
	return nil, nil
}

// chanDispatcher captures dispatched effects; Accept dispatches from a
// goroutine, so tests receive through the channel.
type chanDispatcher struct {
	ch chan []Effect
}

func newChanDispatcher() *chanDispatcher {
	return &chanDispatcher{ch: make(chan []Effect, 1)}
}

func (d *chanDispatcher) Dispatch(_ context.Context, effects []Effect) {
	d.ch <- effects
}

func (d *chanDispatcher) wait(t *testing.T) []Effect {
	t.Helper()
	select {
	case effects := <-d.ch:
		return effects
	case <-time.After(2 * time.Second):
		t.Fatal("no effects dispatched")
		return nil
	}
}

func (d *chanDispatcher) assertNone(t *testing.T) {
	t.Helper()
	select {
	case effects := <-d.ch:
		t.Fatalf("unexpected effects dispatched: %v", effects)
	case <-time.After(50 * time.Millisecond):
	}
}

type fixture struct {
	service    *Service
	repo       *fakeSwapRepo
	dispatcher *chanDispatcher

	alice *profile.Profile // proposer, user u1
	bob   *profile.Profile // responder, user u2
	carol *profile.Profile // bystander, user u3
}

func newFixture(t *testing.T, status Status) *fixture {
	t.Helper()

	alice := &profile.Profile{ID: "prof-alice", UserID: "u1", Username: "alice", Email: "alice@example.com"}
	bob := &profile.Profile{ID: "prof-bob", UserID: "u2", Username: "bob", Email: "bob@example.com"}
	carol := &profile.Profile{ID: "prof-carol", UserID: "u3", Username: "carol"}

	aliceOffer := &profile.Offer{ID: "offer-alice", ProfileID: alice.ID, Skill: catalog.Skill{ID: "s1", Name: "Guitar"}}
	bobOffer := &profile.Offer{ID: "offer-bob", ProfileID: bob.ID, Skill: catalog.Skill{ID: "s2", Name: "Spanish"}}

	profileRepo := &fakeProfileRepo{
		profilesByUser: map[string]*profile.Profile{
			"u1": alice, "u2": bob, "u3": carol,
		},
		offers: map[string]*profile.Offer{
			aliceOffer.ID: aliceOffer,
			bobOffer.ID:   bobOffer,
		},
	}
	profiles := profile.NewService(profileRepo, nil, nil, logger.Nop())

	swapRepo := &fakeSwapRepo{
		transitionWins: true,
		proposal: &Proposal{
			ID:               100,
			ProposerID:       alice.ID,
			ResponderID:      bob.ID,
			ProposerOfferID:  aliceOffer.ID,
			ResponderOfferID: bobOffer.ID,
			Status:           status,
			Proposer:         alice,
			Responder:        bob,
			ProposerOffer:    aliceOffer,
			ResponderOffer:   bobOffer,
		},
	}

	ids, err := id.NewGenerator(1)
	require.NoError(t, err)

	dispatcher := newChanDispatcher()
	service := NewService(swapRepo, profiles, dispatcher, ids, "http://localhost:8080", logger.Nop())

	return &fixture{
		service:    service,
		repo:       swapRepo,
		dispatcher: dispatcher,
		alice:      alice,
		bob:        bob,
		carol:      carol,
	}
}

func TestCreate_Succeeds(t *testing.T) {
	f := newFixture(t, StatusPending)
	f.repo.proposal = nil // no prior proposal in the way

	p, err := f.service.Create(context.Background(), "u1", CreateProposalRequest{
		TargetOfferID: "offer-bob",
		MyOfferID:     "offer-alice",
		Message:       "let's swap",
	})
	require.NoError(t, err)

	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, f.alice.ID, p.ProposerID)
	assert.Equal(t, f.bob.ID, p.ResponderID)
	assert.NotZero(t, p.ID)
	require.Len(t, f.repo.created, 1)
}

func TestCreate_RejectsUnownedOffer(t *testing.T) {
	f := newFixture(t, StatusPending)

	// Alice claims bob's offer as her own side of the swap.
	_, err := f.service.Create(context.Background(), "u1", CreateProposalRequest{
		TargetOfferID: "offer-alice",
		MyOfferID:     "offer-bob",
	})
	assert.ErrorIs(t, err, ErrOfferNotOwned)
}

func TestCreate_RejectsSelfProposal(t *testing.T) {
	f := newFixture(t, StatusPending)

	_, err := f.service.Create(context.Background(), "u1", CreateProposalRequest{
		TargetOfferID: "offer-alice",
		MyOfferID:     "offer-alice",
	})
	assert.ErrorIs(t, err, ErrSelfProposal)
}

func TestCreate_RejectsDuplicatePending(t *testing.T) {
	f := newFixture(t, StatusPending)
	f.repo.pendingCount = 1

	_, err := f.service.Create(context.Background(), "u1", CreateProposalRequest{
		TargetOfferID: "offer-bob",
		MyOfferID:     "offer-alice",
	})
	assert.ErrorIs(t, err, ErrDuplicateProposal)
}

func TestAccept_ByResponderDispatchesEffects(t *testing.T) {
	f := newFixture(t, StatusPending)

	p, err := f.service.Accept(context.Background(), "u2", 100)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, p.Status)

	effects := f.dispatcher.wait(t)
	require.Len(t, effects, 2)

	push, ok := effects[0].(PushEffect)
	require.True(t, ok)
	assert.Equal(t, "alice", push.Username)

	email, ok := effects[1].(EmailEffect)
	require.True(t, ok)
	assert.Equal(t, "alice@example.com", email.To)
}

func TestAccept_ByProposerRejected(t *testing.T) {
	f := newFixture(t, StatusPending)

	_, err := f.service.Accept(context.Background(), "u1", 100)
	assert.ErrorIs(t, err, ErrNotResponder)
	assert.Equal(t, StatusPending, f.repo.proposal.Status)
	f.dispatcher.assertNone(t)
}

func TestAccept_RaceLoser(t *testing.T) {
	f := newFixture(t, StatusPending)
	f.repo.transitionWins = false

	_, err := f.service.Accept(context.Background(), "u2", 100)
	assert.ErrorIs(t, err, ErrNotPending)
	f.dispatcher.assertNone(t)
}

func TestDecline_NoEffects(t *testing.T) {
	f := newFixture(t, StatusPending)

	p, err := f.service.Decline(context.Background(), "u2", 100)
	require.NoError(t, err)
	assert.Equal(t, StatusDeclined, p.Status)
	f.dispatcher.assertNone(t)
}

func TestDecline_AlreadyDecided(t *testing.T) {
	f := newFixture(t, StatusAccepted)

	_, err := f.service.Decline(context.Background(), "u2", 100)
	assert.ErrorIs(t, err, ErrNotPending)
}

func TestComplete_FromAccepted(t *testing.T) {
	f := newFixture(t, StatusAccepted)

	// Either participant may complete; the proposer does here.
	p, err := f.service.Complete(context.Background(), "u1", 100)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, p.Status)
}

func TestComplete_FromPendingRejected(t *testing.T) {
	f := newFixture(t, StatusPending)

	_, err := f.service.Complete(context.Background(), "u2", 100)
	assert.ErrorIs(t, err, ErrNotAccepted)
}

func TestComplete_ByBystanderRejected(t *testing.T) {
	f := newFixture(t, StatusAccepted)

	_, err := f.service.Complete(context.Background(), "u3", 100)
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestPostMessage_ParticipantOnly(t *testing.T) {
	f := newFixture(t, StatusPending)

	m, err := f.service.PostMessage(context.Background(), "u1", 100, "hello")
	require.NoError(t, err)
	assert.Equal(t, f.alice.ID, m.SenderID)
	assert.Equal(t, "alice", m.SenderUsername)

	_, err = f.service.PostMessage(context.Background(), "u3", 100, "hi")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestPostMessage_AnyStatus(t *testing.T) {
	f := newFixture(t, StatusDeclined)

	// The thread stays open even after a decline.
	_, err := f.service.PostMessage(context.Background(), "u2", 100, "maybe another time")
	assert.NoError(t, err)
}

func TestCreateReview_Validation(t *testing.T) {
	f := newFixture(t, StatusCompleted)

	_, err := f.service.CreateReview(context.Background(), "u1", 100, CreateReviewRequest{Rating: 0})
	assert.ErrorIs(t, err, ErrInvalidRating)

	_, err = f.service.CreateReview(context.Background(), "u1", 100, CreateReviewRequest{Rating: 6})
	assert.ErrorIs(t, err, ErrInvalidRating)

	review, err := f.service.CreateReview(context.Background(), "u1", 100, CreateReviewRequest{Rating: 5, Text: "great swap"})
	require.NoError(t, err)
	assert.Equal(t, 5, review.Rating)

	// The one-review-per-proposal constraint surfaces on the second write.
	_, err = f.service.CreateReview(context.Background(), "u2", 100, CreateReviewRequest{Rating: 4})
	assert.ErrorIs(t, err, ErrReviewExists)
}

func TestCreateReview_RequiresCompleted(t *testing.T) {
	f := newFixture(t, StatusAccepted)

	_, err := f.service.CreateReview(context.Background(), "u1", 100, CreateReviewRequest{Rating: 5})
	assert.ErrorIs(t, err, ErrNotCompleted)
}

func TestGet_CompletedIncludesReview(t *testing.T) {
	f := newFixture(t, StatusCompleted)

	_, err := f.service.CreateReview(context.Background(), "u1", 100, CreateReviewRequest{Rating: 4, Text: "solid swap"})
	require.NoError(t, err)

	p, err := f.service.Get(context.Background(), "u2", 100)
	require.NoError(t, err)
	require.NotNil(t, p.Review)
	assert.Equal(t, 4, p.Review.Rating)
	assert.Equal(t, f.alice.ID, p.Review.ReviewerID)
}

func TestGet_PendingHasNoReview(t *testing.T) {
	f := newFixture(t, StatusPending)

	p, err := f.service.Get(context.Background(), "u1", 100)
	require.NoError(t, err)
	assert.Nil(t, p.Review)
}
