package app

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "skillswap/docs"
	"skillswap/internal/service/auth"
	"skillswap/internal/service/match"
	"skillswap/internal/service/profile"
	"skillswap/internal/service/swap"
	"skillswap/internal/signaling"
	"skillswap/pkg/logger"
	"skillswap/pkg/oauth2"
)

type Routes struct {
	r *gin.Engine
}

func NewRoutes(r *gin.Engine) *Routes {
	return &Routes{
		r: r,
	}
}

func (o *Routes) setupInfraRoutes() {
	o.r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	o.r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (o *Routes) setupAuthRoutes(handler *auth.Handler, oauth2mgr *oauth2.Manager) {
	authGroup := o.r.Group("/api/v1/auth")
	{
		authGroup.GET("/login", handler.Login)
		authGroup.POST("/logout", handler.Logout)
		authGroup.GET("/callback/google", oauth2.GoogleCallbackHandler(oauth2mgr))
	}
}

// setupProfileRoutes registers profile, offer and request endpoints
func (o *Routes) setupProfileRoutes(auth *auth.Handler, pv *profile.Service) {
	profileHandler := profile.NewHandler(pv)

	o.r.GET("/api/v1/profiles/:username", profileHandler.GetProfileByUsername)
	o.r.GET("/api/v1/offers", profileHandler.BrowseOffers)
	o.r.GET("/api/v1/offers/:id", profileHandler.GetOffer)

	authorized := o.r.Group("/api/v1", auth.Middleware())
	{
		authorized.GET("/profiles/me", profileHandler.GetProfile)
		authorized.PUT("/profiles/me", profileHandler.UpdateProfile)
		authorized.POST("/offers", profileHandler.CreateOffer)
		authorized.DELETE("/offers/:id", profileHandler.DeleteOffer)
		authorized.POST("/requests", profileHandler.CreateRequest)
		authorized.DELETE("/requests/:id", profileHandler.DeleteRequest)
	}
}

// setupMatchRoutes registers the match discovery endpoint
func (o *Routes) setupMatchRoutes(auth *auth.Handler, mv *match.Service) {
	matchHandler := match.NewHandler(mv)

	authorized := o.r.Group("/api/v1", auth.Middleware())
	{
		authorized.GET("/matches", matchHandler.FindMatches)
	}
}

// setupSwapRoutes registers the proposal lifecycle endpoints
func (o *Routes) setupSwapRoutes(auth *auth.Handler, sv *swap.Service) {
	swapHandler := swap.NewHandler(sv)

	authorized := o.r.Group("/api/v1", auth.Middleware())
	{
		authorized.POST("/proposals", swapHandler.CreateProposal)
		authorized.GET("/proposals", swapHandler.ListProposals)
		authorized.GET("/proposals/:id", swapHandler.GetProposal)
		authorized.POST("/proposals/:id/accept", swapHandler.AcceptProposal)
		authorized.POST("/proposals/:id/decline", swapHandler.DeclineProposal)
		authorized.POST("/proposals/:id/complete", swapHandler.CompleteProposal)
		authorized.POST("/proposals/:id/messages", swapHandler.PostMessage)
		authorized.GET("/proposals/:id/messages", swapHandler.ListMessages)
		authorized.POST("/proposals/:id/review", swapHandler.CreateReview)
	}
}

// setupSignalingRoutes registers the websocket endpoints
func (o *Routes) setupSignalingRoutes(auth *auth.Handler, hub *signaling.Hub, log logger.Logger) {
	wsHandler := signaling.NewHandler(hub, log)

	ws := o.r.Group("/ws", auth.Middleware())
	{
		ws.GET("/video_call/:room_name", wsHandler.VideoCall)
		ws.GET("/notifications/:username", wsHandler.Notifications)
	}
}
