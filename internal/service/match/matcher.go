package match

import (
	"context"
	"sort"

	"skillswap/internal/service/profile"
)

// Score contributions. A candidate earns reciprocity when its owner
// requests something the matching profile offers.
const (
	scoreReciprocity = 2
	scoreOnline      = 1
	scoreLocation    = 1
)

// Matcher defines the interface for finding swap candidates for a profile.
type Matcher interface {
	FindMatches(ctx context.Context, p *profile.Profile) ([]Match, error)
}

// SwapMatcher implements Matcher over the repository's materialized
// candidate pool. Results are recomputed fresh on every call; scores are
// never persisted or cached.
type SwapMatcher struct {
	repo Repository
}

func NewSwapMatcher(repo Repository) *SwapMatcher {
	return &SwapMatcher{repo: repo}
}

// FindMatches scans all offers for skills the profile requests, scores
// each candidate and returns the full ranked sequence.
func (m *SwapMatcher) FindMatches(ctx context.Context, p *profile.Profile) ([]Match, error) {
	myOffers, err := m.repo.ListOfferSkillIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	myRequests, err := m.repo.ListRequestSkillIDs(ctx, p.ID)
	if err != nil {
		return nil, err
	}

	// Nothing requested means nothing to match against.
	if len(myRequests) == 0 {
		return []Match{}, nil
	}

	candidates, err := m.repo.ListCandidates(ctx, p.ID, myRequests)
	if err != nil {
		return nil, err
	}

	offered := toSet(myOffers)

	matches := make([]Match, 0, len(candidates))
	for _, cand := range candidates {
		// The repository already filters the caller's own offers out of
		// the pool; guard here as well so no repository can reintroduce
		// self-matches.
		if cand.Offer.ProfileID == p.ID {
			continue
		}

		score := 0
		if intersects(offered, cand.OwnerRequestSkill) {
			score += scoreReciprocity
		}
		if cand.Offer.AvailableOnline {
			score += scoreOnline
		}
		if p.Location != "" && p.Location == cand.Owner.Location {
			score += scoreLocation
		}
		matches = append(matches, Match{
			Profile: cand.Owner,
			Score:   score,
			Offer:   cand.Offer,
		})
	}

	// Stable sort: equal scores keep the candidate pool's relative order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches, nil
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[item] = true
	}
	return set
}

// intersects reports whether any item of b is in set a.
func intersects(a map[string]bool, b []string) bool {
	for _, item := range b {
		if a[item] {
			return true
		}
	}
	return false
}
