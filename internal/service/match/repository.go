package match

import (
	"context"
	"fmt"

	"github.com/lib/pq"

	"skillswap/internal/service/profile"
	"skillswap/pkg/db"
)

type Repository interface {
	ListOfferSkillIDs(ctx context.Context, profileID string) ([]string, error)
	ListRequestSkillIDs(ctx context.Context, profileID string) ([]string, error)
	// ListCandidates returns all offers whose skill is in skillIDs,
	// excluding offers owned by profileID, each with its owner and the
	// owner's requested skill id set.
	ListCandidates(ctx context.Context, profileID string, skillIDs []string) ([]Candidate, error)
}

type repository struct {
	db db.SQLExecutor
}

func NewRepository(database db.SQLExecutor) Repository {
	return &repository{db: database}
}

func (r *repository) listSkillIDs(ctx context.Context, query, profileID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, fmt.Errorf("query skill ids: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan skill id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *repository) ListOfferSkillIDs(ctx context.Context, profileID string) ([]string, error) {
	return r.listSkillIDs(ctx, `SELECT skill_id FROM offers WHERE profile_id = $1`, profileID)
}

func (r *repository) ListRequestSkillIDs(ctx context.Context, profileID string) ([]string, error) {
	return r.listSkillIDs(ctx, `SELECT skill_id FROM requests WHERE profile_id = $1`, profileID)
}

// ListCandidates materializes the candidate pool in one round-trip. The
// owner skill sets come back as arrays so scoring stays in memory.
func (r *repository) ListCandidates(ctx context.Context, profileID string, skillIDs []string) ([]Candidate, error) {
	query := `
		SELECT o.id, o.profile_id, o.description, o.level, o.available_online, o.created_at,
		       s.id, s.name, s.created_at,
		       p.id, p.user_id, u.username, p.bio, p.location, p.photo_url, p.created_at,
		       COALESCE((SELECT array_agg(rr.skill_id) FROM requests rr WHERE rr.profile_id = p.id), '{}')
		FROM offers o
		INNER JOIN skills s ON s.id = o.skill_id
		INNER JOIN profiles p ON p.id = o.profile_id
		INNER JOIN users u ON u.id = p.user_id
		WHERE o.skill_id = ANY($2)
		  AND o.profile_id <> $1
		ORDER BY o.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, profileID, pq.Array(skillIDs))
	if err != nil {
		return nil, fmt.Errorf("query candidates: %w", err)
	}
	defer rows.Close()

	candidates := make([]Candidate, 0)
	for rows.Next() {
		var (
			offer profile.Offer
			owner profile.Profile
		)
		var requestSkills pq.StringArray

		err := rows.Scan(
			&offer.ID, &offer.ProfileID, &offer.Description, &offer.Level, &offer.AvailableOnline, &offer.CreatedAt,
			&offer.Skill.ID, &offer.Skill.Name, &offer.Skill.CreatedAt,
			&owner.ID, &owner.UserID, &owner.Username, &owner.Bio, &owner.Location, &owner.PhotoURL, &owner.CreatedAt,
			&requestSkills,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}

		candidates = append(candidates, Candidate{
			Offer:             &offer,
			Owner:             &owner,
			OwnerRequestSkill: requestSkills,
		})
	}

	return candidates, nil
}
