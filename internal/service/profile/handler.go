package profile

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"skillswap/internal/service/catalog"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetProfile handles GET /api/v1/profile
func (h *Handler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	p, err := h.service.GetByUserID(c.Request.Context(), userID.(string))
	if err != nil {
		h.handleError(c, err)
		return
	}

	offers, err := h.service.ListOffers(c.Request.Context(), p.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	requests, err := h.service.ListRequests(c.Request.Context(), p.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Profile: p, Offers: offers, Requests: requests})
}

// GetProfileByUsername handles GET /api/v1/profiles/:username
func (h *Handler) GetProfileByUsername(c *gin.Context) {
	username := c.Param("username")

	p, err := h.service.GetByUsername(c.Request.Context(), username)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// Public view: no email
	p.Email = ""

	offers, err := h.service.ListOffers(c.Request.Context(), p.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	requests, err := h.service.ListRequests(c.Request.Context(), p.ID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ProfileResponse{Profile: p, Offers: offers, Requests: requests})
}

// UpdateProfile handles PUT /api/v1/profile
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Update(c.Request.Context(), userID.(string), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

// CreateOffer handles POST /api/v1/offers
func (h *Handler) CreateOffer(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	offer, err := h.service.CreateOffer(c.Request.Context(), userID.(string), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, offer)
}

// DeleteOffer handles DELETE /api/v1/offers/:id
func (h *Handler) DeleteOffer(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.DeleteOffer(c.Request.Context(), userID.(string), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "offer deleted"})
}

// BrowseOffers handles GET /api/v1/offers
func (h *Handler) BrowseOffers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	offers, err := h.service.BrowseOffers(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"offers": offers, "total": len(offers)})
}

// GetOffer handles GET /api/v1/offers/:id
func (h *Handler) GetOffer(c *gin.Context) {
	offer, owner, err := h.service.GetOfferDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, OfferDetailResponse{Offer: offer, Owner: owner})
}

// CreateRequest handles POST /api/v1/requests
func (h *Handler) CreateRequest(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, err := h.service.CreateRequest(c.Request.Context(), userID.(string), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, request)
}

// DeleteRequest handles DELETE /api/v1/requests/:id
func (h *Handler) DeleteRequest(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.service.DeleteRequest(c.Request.Context(), userID.(string), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "request deleted"})
}

// handleError maps domain errors to HTTP status codes
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrProfileNotFound),
		errors.Is(err, ErrOfferNotFound),
		errors.Is(err, ErrRequestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrDuplicateOffer),
		errors.Is(err, ErrDuplicateRequest),
		errors.Is(err, ErrProfileExists):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotOfferOwner),
		errors.Is(err, ErrNotRequestOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidLevel),
		errors.Is(err, catalog.ErrEmptySkillName):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
