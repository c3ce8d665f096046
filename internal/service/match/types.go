package match

import "skillswap/internal/service/profile"

// Candidate is one offer from the candidate pool together with the
// materialized requested-skill set of its owner, as fetched by the repository.
type Candidate struct {
	Offer             *profile.Offer
	Owner             *profile.Profile
	OwnerRequestSkill []string
}

// Match is a ranked swap suggestion.
type Match struct {
	Profile *profile.Profile `json:"profile"`
	Score   int              `json:"score"`
	Offer   *profile.Offer   `json:"offer"`
}

type MatchesResponse struct {
	Matches []Match `json:"matches"`
	Total   int     `json:"total"`
}
