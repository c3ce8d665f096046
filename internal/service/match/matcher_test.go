package match

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skillswap/internal/service/catalog"
	"skillswap/internal/service/profile"
)

type fakeRepo struct {
	offerSkills   []string
	requestSkills []string
	candidates    []Candidate
}

func (f *fakeRepo) ListOfferSkillIDs(context.Context, string) ([]string, error) {
	return f.offerSkills, nil
}

func (f *fakeRepo) ListRequestSkillIDs(context.Context, string) ([]string, error) {
	return f.requestSkills, nil
}

func (f *fakeRepo) ListCandidates(context.Context, string, []string) ([]Candidate, error) {
	return f.candidates, nil
}

func candidate(username, skillID, location string, online bool, ownerRequests []string) Candidate {
	return Candidate{
		Offer: &profile.Offer{
			ID:              "offer-" + username,
			ProfileID:       "profile-" + username,
			Skill:           catalog.Skill{ID: skillID},
			AvailableOnline: online,
		},
		Owner: &profile.Profile{
			ID:       "profile-" + username,
			Username: username,
			Location: location,
		},
		OwnerRequestSkill: ownerRequests,
	}
}

func TestFindMatches_NoRequests(t *testing.T) {
	m := NewSwapMatcher(&fakeRepo{
		offerSkills:   []string{"guitar"},
		requestSkills: nil,
		candidates: []Candidate{
			candidate("bob", "guitar", "", true, nil),
		},
	})

	matches, err := m.FindMatches(context.Background(), &profile.Profile{ID: "me"})
	require.NoError(t, err)
	require.NotNil(t, matches)
	assert.Empty(t, matches)
}

func TestFindMatches_Scoring(t *testing.T) {
	me := &profile.Profile{ID: "me", Location: "Berlin"}

	// Bob offers what I request, requests what I offer, is online and
	// shares my location: every score component fires.
	bob := candidate("bob", "spanish", "Berlin", true, []string{"guitar"})
	// Carol matches the request but nothing else.
	carol := candidate("carol", "spanish", "Madrid", false, []string{"piano"})

	m := NewSwapMatcher(&fakeRepo{
		offerSkills:   []string{"guitar"},
		requestSkills: []string{"spanish"},
		candidates:    []Candidate{carol, bob},
	})

	matches, err := m.FindMatches(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, matches, 2)

	assert.Equal(t, "bob", matches[0].Profile.Username)
	assert.Equal(t, 4, matches[0].Score)
	assert.Equal(t, "carol", matches[1].Profile.Username)
	assert.Equal(t, 0, matches[1].Score)
}

func TestFindMatches_PartialScores(t *testing.T) {
	me := &profile.Profile{ID: "me", Location: "Berlin"}

	reciprocalOnly := candidate("dora", "spanish", "Madrid", false, []string{"guitar"})
	onlineOnly := candidate("eve", "spanish", "Madrid", true, nil)
	locationOnly := candidate("finn", "spanish", "Berlin", false, nil)

	m := NewSwapMatcher(&fakeRepo{
		offerSkills:   []string{"guitar"},
		requestSkills: []string{"spanish"},
		candidates:    []Candidate{onlineOnly, locationOnly, reciprocalOnly},
	})

	matches, err := m.FindMatches(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// Reciprocity outweighs the single-point components.
	assert.Equal(t, "dora", matches[0].Profile.Username)
	assert.Equal(t, 2, matches[0].Score)
	assert.Equal(t, 1, matches[1].Score)
	assert.Equal(t, 1, matches[2].Score)
}

func TestFindMatches_StableOrderOnTies(t *testing.T) {
	me := &profile.Profile{ID: "me"}

	first := candidate("first", "spanish", "", false, nil)
	second := candidate("second", "spanish", "", false, nil)
	third := candidate("third", "spanish", "", false, nil)

	m := NewSwapMatcher(&fakeRepo{
		requestSkills: []string{"spanish"},
		candidates:    []Candidate{first, second, third},
	})

	matches, err := m.FindMatches(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	// All scores tie; the candidate pool's order must survive the sort.
	assert.Equal(t, "first", matches[0].Profile.Username)
	assert.Equal(t, "second", matches[1].Profile.Username)
	assert.Equal(t, "third", matches[2].Profile.Username)
}

func TestFindMatches_NeverMatchesOwnOffer(t *testing.T) {
	me := &profile.Profile{ID: "profile-me", Location: "Berlin"}

	mine := candidate("me", "spanish", "Berlin", true, nil)
	other := candidate("bob", "spanish", "Madrid", false, nil)

	m := NewSwapMatcher(&fakeRepo{
		requestSkills: []string{"spanish"},
		candidates:    []Candidate{mine, other},
	})

	matches, err := m.FindMatches(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "bob", matches[0].Profile.Username)
}

func TestFindMatches_BlankLocationNeverScores(t *testing.T) {
	me := &profile.Profile{ID: "me", Location: ""}

	// Both locations are empty; that must not count as a shared location.
	cand := candidate("gina", "spanish", "", false, nil)

	m := NewSwapMatcher(&fakeRepo{
		requestSkills: []string{"spanish"},
		candidates:    []Candidate{cand},
	})

	matches, err := m.FindMatches(context.Background(), me)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].Score)
}
