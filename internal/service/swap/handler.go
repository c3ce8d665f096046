package swap

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap/internal/service/profile"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func proposalID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid proposal id"})
		return 0, false
	}
	return id, true
}

// CreateProposal handles POST /api/v1/proposals
func (h *Handler) CreateProposal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	proposal, err := h.service.Create(c.Request.Context(), userID.(string), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, proposal)
}

// ListProposals handles GET /api/v1/proposals
func (h *Handler) ListProposals(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sent, received, err := h.service.ListMine(c.Request.Context(), userID.(string))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProposalListResponse{Sent: sent, Received: received})
}

// GetProposal handles GET /api/v1/proposals/:id
func (h *Handler) GetProposal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := proposalID(c)
	if !ok {
		return
	}

	proposal, err := h.service.Get(c.Request.Context(), userID.(string), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// AcceptProposal handles POST /api/v1/proposals/:id/accept. On success the
// accepting client is sent straight to the call room.
func (h *Handler) AcceptProposal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := proposalID(c)
	if !ok {
		return
	}

	proposal, err := h.service.Accept(c.Request.Context(), userID.(string), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"proposal": proposal,
		"call_url": h.service.CallURL(proposal.ID),
	})
}

// DeclineProposal handles POST /api/v1/proposals/:id/decline
func (h *Handler) DeclineProposal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := proposalID(c)
	if !ok {
		return
	}

	proposal, err := h.service.Decline(c.Request.Context(), userID.(string), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// CompleteProposal handles POST /api/v1/proposals/:id/complete
func (h *Handler) CompleteProposal(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := proposalID(c)
	if !ok {
		return
	}

	proposal, err := h.service.Complete(c.Request.Context(), userID.(string), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposal)
}

// PostMessage handles POST /api/v1/proposals/:id/messages
func (h *Handler) PostMessage(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := proposalID(c)
	if !ok {
		return
	}

	var req PostMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	m, err := h.service.PostMessage(c.Request.Context(), userID.(string), id, req.Content)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, m)
}

// ListMessages handles GET /api/v1/proposals/:id/messages
func (h *Handler) ListMessages(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := proposalID(c)
	if !ok {
		return
	}

	messages, err := h.service.ListMessages(c.Request.Context(), userID.(string), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// CreateReview handles POST /api/v1/proposals/:id/review
func (h *Handler) CreateReview(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	id, ok := proposalID(c)
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	review, err := h.service.CreateReview(c.Request.Context(), userID.(string), id, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// handleError maps domain errors to HTTP status codes. Authorization
// failures on participant-scoped resources degrade to a redirect back to
// the proposal list rather than an error page.
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotResponder),
		errors.Is(err, ErrNotParticipant):
		c.Redirect(http.StatusSeeOther, "/api/v1/proposals")
	case errors.Is(err, ErrProposalNotFound),
		errors.Is(err, profile.ErrOfferNotFound),
		errors.Is(err, profile.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrOfferNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrSelfProposal),
		errors.Is(err, ErrInvalidRating),
		errors.Is(err, ErrNotCompleted),
		errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicateProposal),
		errors.Is(err, ErrReviewExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotPending),
		errors.Is(err, ErrNotAccepted):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
