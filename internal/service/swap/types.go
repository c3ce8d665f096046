package swap

import (
	"time"

	"skillswap/internal/service/profile"
)

// Proposal status. Closed set, validated via ParseStatus. A proposal is
// created pending; only the responder moves it to accepted or declined;
// completed is reached from accepted.
type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a raw status value.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusPending, StatusAccepted, StatusDeclined, StatusCompleted:
		return Status(raw), nil
	}
	return "", ErrInvalidStatus
}

// Domain Models
type Proposal struct {
	ID               int64     `json:"id"`
	ProposerID       string    `json:"proposer_id"`
	ResponderID      string    `json:"responder_id"`
	ProposerOfferID  string    `json:"proposer_offer_id"`
	ResponderOfferID string    `json:"responder_offer_id"`
	Message          string    `json:"message"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Hydrated for API responses and notification content
	Proposer       *profile.Profile `json:"proposer,omitempty"`
	Responder      *profile.Profile `json:"responder,omitempty"`
	ProposerOffer  *profile.Offer   `json:"proposer_offer,omitempty"`
	ResponderOffer *profile.Offer   `json:"responder_offer,omitempty"`
	Review         *Review          `json:"review,omitempty"`
}

type Message struct {
	ID             int64     `json:"id"`
	ProposalID     int64     `json:"proposal_id"`
	SenderID       string    `json:"sender_id"`
	SenderUsername string    `json:"sender_username,omitempty"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"created_at"`
}

type Review struct {
	ProposalID int64     `json:"proposal_id"`
	ReviewerID string    `json:"reviewer_id"`
	Rating     int       `json:"rating"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// IsParticipant reports whether the profile is one of the proposal's two sides.
func (p *Proposal) IsParticipant(profileID string) bool {
	return p.ProposerID == profileID || p.ResponderID == profileID
}

// DTOs
type CreateProposalRequest struct {
	TargetOfferID string `json:"target_offer_id" binding:"required,uuid"`
	MyOfferID     string `json:"my_offer_id" binding:"required,uuid"`
	Message       string `json:"message" binding:"omitempty,max=2000"`
}

type PostMessageRequest struct {
	Content string `json:"content" binding:"required,max=4000"`
}

type CreateReviewRequest struct {
	Rating int    `json:"rating" binding:"required"`
	Text   string `json:"text" binding:"omitempty,max=4000"`
}

type ProposalListResponse struct {
	Sent     []*Proposal `json:"sent"`
	Received []*Proposal `json:"received"`
}
