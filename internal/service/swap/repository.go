package swap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"skillswap/internal/service/profile"
	"skillswap/pkg/db"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

type Repository interface {
	// Proposal operations
	CreateProposal(ctx context.Context, p *Proposal) error
	GetProposalByID(ctx context.Context, proposalID int64) (*Proposal, error)
	ListProposalsByProfile(ctx context.Context, profileID string) (sent, received []*Proposal, err error)
	// UpdateStatusIf transitions the proposal's status only when its
	// current status equals expected, refreshing updated_at. Returns
	// false when another transition won the race.
	UpdateStatusIf(ctx context.Context, proposalID int64, expected, next Status) (bool, error)
	CountPendingByOffers(ctx context.Context, proposerOfferID, responderOfferID string) (int, error)

	// Message operations
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, proposalID int64) ([]*Message, error)

	// Review operations
	CreateReview(ctx context.Context, r *Review) error
	GetReviewByProposal(ctx context.Context, proposalID int64) (*Review, error)
}

type repository struct {
	db db.SQLExecutor
}

func NewRepository(database db.SQLExecutor) Repository {
	return &repository{db: database}
}

// CreateProposal creates a new proposal in pending state
func (r *repository) CreateProposal(ctx context.Context, p *Proposal) error {
	query := `
		INSERT INTO proposals (id, proposer_id, responder_id, proposer_offer_id, responder_offer_id, message, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.db.QueryRowContext(ctx, query,
		p.ID, p.ProposerID, p.ResponderID, p.ProposerOfferID, p.ResponderOfferID, p.Message, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("insert proposal: %w", err)
	}

	return nil
}

const proposalSelect = `
	SELECT pr.id, pr.proposer_id, pr.responder_id, pr.proposer_offer_id, pr.responder_offer_id,
	       pr.message, pr.status, pr.created_at, pr.updated_at,
	       pp.id, pp.user_id, pu.username, pu.email, pp.bio, pp.location, pp.photo_url, pp.created_at,
	       rp.id, rp.user_id, ru.username, ru.email, rp.bio, rp.location, rp.photo_url, rp.created_at,
	       po.id, po.profile_id, po.description, po.level, po.available_online, po.created_at,
	       ps.id, ps.name, ps.created_at,
	       ro.id, ro.profile_id, ro.description, ro.level, ro.available_online, ro.created_at,
	       rs.id, rs.name, rs.created_at
	FROM proposals pr
	INNER JOIN profiles pp ON pp.id = pr.proposer_id
	INNER JOIN users pu ON pu.id = pp.user_id
	INNER JOIN profiles rp ON rp.id = pr.responder_id
	INNER JOIN users ru ON ru.id = rp.user_id
	INNER JOIN offers po ON po.id = pr.proposer_offer_id
	INNER JOIN skills ps ON ps.id = po.skill_id
	INNER JOIN offers ro ON ro.id = pr.responder_offer_id
	INNER JOIN skills rs ON rs.id = ro.skill_id
`

func scanProposal(scan func(dest ...any) error) (*Proposal, error) {
	var (
		p              Proposal
		proposer       profile.Profile
		responder      profile.Profile
		proposerOffer  profile.Offer
		responderOffer profile.Offer
	)

	err := scan(
		&p.ID, &p.ProposerID, &p.ResponderID, &p.ProposerOfferID, &p.ResponderOfferID,
		&p.Message, &p.Status, &p.CreatedAt, &p.UpdatedAt,
		&proposer.ID, &proposer.UserID, &proposer.Username, &proposer.Email,
		&proposer.Bio, &proposer.Location, &proposer.PhotoURL, &proposer.CreatedAt,
		&responder.ID, &responder.UserID, &responder.Username, &responder.Email,
		&responder.Bio, &responder.Location, &responder.PhotoURL, &responder.CreatedAt,
		&proposerOffer.ID, &proposerOffer.ProfileID, &proposerOffer.Description,
		&proposerOffer.Level, &proposerOffer.AvailableOnline, &proposerOffer.CreatedAt,
		&proposerOffer.Skill.ID, &proposerOffer.Skill.Name, &proposerOffer.Skill.CreatedAt,
		&responderOffer.ID, &responderOffer.ProfileID, &responderOffer.Description,
		&responderOffer.Level, &responderOffer.AvailableOnline, &responderOffer.CreatedAt,
		&responderOffer.Skill.ID, &responderOffer.Skill.Name, &responderOffer.Skill.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.Proposer = &proposer
	p.Responder = &responder
	p.ProposerOffer = &proposerOffer
	p.ResponderOffer = &responderOffer
	return &p, nil
}

// GetProposalByID retrieves a proposal with both participants and offers hydrated
func (r *repository) GetProposalByID(ctx context.Context, proposalID int64) (*Proposal, error) {
	query := proposalSelect + ` WHERE pr.id = $1`

	p, err := scanProposal(r.db.QueryRowContext(ctx, query, proposalID).Scan)
	if err == sql.ErrNoRows {
		return nil, ErrProposalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query proposal: %w", err)
	}

	return p, nil
}

// ListProposalsByProfile retrieves all proposals where the profile is a participant
func (r *repository) ListProposalsByProfile(ctx context.Context, profileID string) ([]*Proposal, []*Proposal, error) {
	query := proposalSelect + `
		WHERE pr.proposer_id = $1 OR pr.responder_id = $1
		ORDER BY pr.created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, profileID)
	if err != nil {
		return nil, nil, fmt.Errorf("query proposals: %w", err)
	}
	defer rows.Close()

	sent := make([]*Proposal, 0)
	received := make([]*Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows.Scan)
		if err != nil {
			return nil, nil, fmt.Errorf("scan proposal: %w", err)
		}
		if p.ProposerID == profileID {
			sent = append(sent, p)
		} else {
			received = append(received, p)
		}
	}

	return sent, received, nil
}

// UpdateStatusIf performs the guarded transition. The status check and the
// write happen in a single statement, so concurrent accept/decline calls
// produce exactly one winner.
func (r *repository) UpdateStatusIf(ctx context.Context, proposalID int64, expected, next Status) (bool, error) {
	query := `
		UPDATE proposals
		SET status = $3, updated_at = now()
		WHERE id = $1 AND status = $2
	`

	result, err := r.db.ExecContext(ctx, query, proposalID, expected, next)
	if err != nil {
		return false, fmt.Errorf("update proposal status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}

	return rows > 0, nil
}

// CountPendingByOffers counts pending proposals over the same offer pair
func (r *repository) CountPendingByOffers(ctx context.Context, proposerOfferID, responderOfferID string) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM proposals
		WHERE proposer_offer_id = $1 AND responder_offer_id = $2 AND status = 'pending'
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, proposerOfferID, responderOfferID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending proposals: %w", err)
	}

	return count, nil
}

// CreateMessage appends a message to a proposal thread
func (r *repository) CreateMessage(ctx context.Context, m *Message) error {
	query := `
		INSERT INTO messages (id, proposal_id, sender_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query, m.ID, m.ProposalID, m.SenderID, m.Content).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// ListMessages retrieves a proposal's messages in creation order
func (r *repository) ListMessages(ctx context.Context, proposalID int64) ([]*Message, error) {
	query := `
		SELECT m.id, m.proposal_id, m.sender_id, u.username, m.content, m.created_at
		FROM messages m
		INNER JOIN profiles p ON p.id = m.sender_id
		INNER JOIN users u ON u.id = p.user_id
		WHERE m.proposal_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, proposalID)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*Message, 0)
	for rows.Next() {
		var m Message
		err := rows.Scan(&m.ID, &m.ProposalID, &m.SenderID, &m.SenderUsername, &m.Content, &m.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, &m)
	}

	return messages, nil
}

// CreateReview stores the one-to-one review for a completed swap
func (r *repository) CreateReview(ctx context.Context, rev *Review) error {
	query := `
		INSERT INTO reviews (id, proposal_id, reviewer_id, rating, text)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		uuid.New().String(), rev.ProposalID, rev.ReviewerID, rev.Rating, rev.Text,
	).Scan(&rev.CreatedAt)

	if isUniqueViolation(err) {
		return ErrReviewExists
	}
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}

	return nil
}

// GetReviewByProposal retrieves the review for a proposal, if any
func (r *repository) GetReviewByProposal(ctx context.Context, proposalID int64) (*Review, error) {
	query := `
		SELECT proposal_id, reviewer_id, rating, text, created_at
		FROM reviews
		WHERE proposal_id = $1
	`

	var rev Review
	err := r.db.QueryRowContext(ctx, query, proposalID).Scan(
		&rev.ProposalID, &rev.ReviewerID, &rev.Rating, &rev.Text, &rev.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query review: %w", err)
	}

	return &rev, nil
}
