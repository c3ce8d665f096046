package swap

import "errors"

var (
	// Proposal errors
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrSelfProposal      = errors.New("cannot propose a swap to yourself")
	ErrOfferNotOwned     = errors.New("offer does not belong to proposer")
	ErrDuplicateProposal = errors.New("a pending proposal for these offers already exists")
	ErrNotPending        = errors.New("proposal is no longer pending")
	ErrNotAccepted       = errors.New("proposal is not accepted")

	// Authorization errors
	ErrNotResponder   = errors.New("only the responder may decide this proposal")
	ErrNotParticipant = errors.New("not a participant of this proposal")

	// Review errors
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrReviewExists  = errors.New("review already submitted for this swap")
	ErrNotCompleted  = errors.New("swap is not completed")

	ErrInvalidStatus = errors.New("invalid proposal status")
)
