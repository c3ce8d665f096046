package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"skillswap/pkg/oauth2"
)

const sessionCookie = "session"

type Handler struct {
	service *Service
	oauth   *oauth2.Manager
}

func NewHandler(service *Service, oauth *oauth2.Manager) *Handler {
	return &Handler{service: service, oauth: oauth}
}

// Login handles GET /api/v1/auth/login. It stores the CSRF state in a
// cookie and redirects the browser to the identity provider.
func (h *Handler) Login(c *gin.Context) {
	url, state, err := h.oauth.AuthURL()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.SetCookie("oauth_state", state, 600, "/", "", false, true)
	c.Redirect(http.StatusSeeOther, url)
}

// Logout handles POST /api/v1/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err == nil && token != "" {
		_ = h.service.Logout(c.Request.Context(), token)
	}

	c.SetCookie(sessionCookie, "", -1, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

// Middleware resolves the session cookie and stores the caller's identity
// in the request context for downstream handlers.
func (h *Handler) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		sess, err := h.service.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("user_id", sess.UserID)
		c.Set("username", sess.Username)
		c.Next()
	}
}
