package app

import (
	"context"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"skillswap/cfg"
	"skillswap/internal/notify"
	"skillswap/internal/service/auth"
	"skillswap/internal/service/catalog"
	"skillswap/internal/service/match"
	"skillswap/internal/service/profile"
	"skillswap/internal/service/swap"
	"skillswap/internal/signaling"
	"skillswap/pkg/cache"
	"skillswap/pkg/db"
	"skillswap/pkg/id"
	"skillswap/pkg/logger"
	"skillswap/pkg/oauth2"
	"skillswap/pkg/session"
)

// Server holds all application dependencies
type Server struct {
	config        *cfg.Config
	router        *gin.Engine
	logger        *logger.AppLogger
	db            *db.SQLClient
	cache         cache.Cache
	sessionStore  session.Store
	oauth2Manager *oauth2.Manager
	ids           *id.Generator
	hub           *signaling.Hub
	shutdown      func(context.Context) error

	// internal service
	catalogService *catalog.Service
	profileService *profile.Service
	matchService   *match.Service
	swapService    *swap.Service
	authService    *auth.Service
}

// NewServer creates and initializes a new server instance
func NewServer(ctx context.Context, config *cfg.Config) (*Server, error) {
	s := &Server{
		config: config,
	}

	shutdown, err := setupObservability(ctx, &config.Observability)
	if err != nil {
		return nil, fmt.Errorf("observability setup: %w", err)
	}
	s.shutdown = shutdown

	s.logger = logger.NewLogger(config.AppEnv)
	s.logger.Info(ctx, "Initializing server...")

	if err := s.initDatabase(); err != nil {
		return nil, fmt.Errorf("database init: %w", err)
	}

	if err := s.initCache(); err != nil {
		return nil, fmt.Errorf("cache init: %w", err)
	}

	s.sessionStore = session.NewRedisStore(s.config.Redis.Host + ":" + s.config.Redis.Port)

	ids, err := id.NewGenerator(config.NodeID)
	if err != nil {
		return nil, fmt.Errorf("id generator init: %w", err)
	}
	s.ids = ids

	if err := s.initOAuth2(ctx); err != nil {
		return nil, fmt.Errorf("oauth2 init: %w", err)
	}

	s.initServicesAndRoutes()

	s.logger.Info(ctx, "Server initialized successfully")
	return s, nil
}

func (s *Server) initDatabase() error {
	pg := s.config.Postgres
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		pg.User, pg.Password, pg.Host, pg.Port, pg.DBName, pg.SSLMode,
	)

	dbClient, err := db.NewSQLClient("postgres", dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	s.db = dbClient

	if err := runMigrations(dsn); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	return nil
}

func (s *Server) initCache() error {
	addr := s.config.Redis.Host + ":" + s.config.Redis.Port
	s.cache = cache.NewRedisCache(addr)
	return nil
}

func (s *Server) initOAuth2(ctx context.Context) error {
	mgr, err := oauth2.NewManager(ctx, &s.config.OAuth2)
	if err != nil {
		return err
	}
	s.oauth2Manager = mgr
	return nil
}

func (s *Server) initServicesAndRoutes() {
	catalogRepo := catalog.NewRepository(s.db)
	s.catalogService = catalog.NewService(catalogRepo, s.logger)

	profileRepo := profile.NewRepository(s.db)
	s.profileService = profile.NewService(profileRepo, s.catalogService, s.cache, s.logger)

	matchRepo := match.NewRepository(s.db)
	matcher := match.NewSwapMatcher(matchRepo)
	s.matchService = match.NewService(matcher, s.profileService, s.logger)

	s.hub = signaling.NewHub(s.logger)

	var notifier notify.Notifier
	if s.config.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(s.config.SMTP)
	} else {
		notifier = notify.NewLogNotifier(s.logger)
	}
	dispatcher := swap.NewDispatcher(s.hub, notifier, s.logger)

	swapRepo := swap.NewRepository(s.db)
	s.swapService = swap.NewService(swapRepo, s.profileService, dispatcher, s.ids, s.config.BaseURL, s.logger)

	authRepo := auth.NewRepository(s.db)
	s.authService = auth.NewService(authRepo, s.profileService, s.sessionStore, s.logger)

	// Wire up OAuth2 callback
	s.oauth2Manager.CallbackHandler = func(
		ctx context.Context,
		provider string,
		userInfo *oauth2.UserInfo,
		tokenSet *oauth2.TokenSet,
	) (*oauth2.CallbackInfo, error) {
		return s.authService.HandleCallback(ctx, provider, userInfo, tokenSet)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	routes := NewRoutes(r)
	routes.setupInfraRoutes()
	// Business logic endpoints
	authHandler := auth.NewHandler(s.authService, s.oauth2Manager)
	routes.setupAuthRoutes(authHandler, s.oauth2Manager)
	routes.setupProfileRoutes(authHandler, s.profileService)
	routes.setupMatchRoutes(authHandler, s.matchService)
	routes.setupSwapRoutes(authHandler, s.swapService)
	routes.setupSignalingRoutes(authHandler, s.hub, s.logger)

	s.router = r
}

// Run starts the HTTP server
func (s *Server) Run(addr string) error {
	log.Printf("Server listening on %s", addr)
	return s.router.Run(addr)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.hub != nil {
		s.hub.Shutdown()
	}
	if s.shutdown != nil {
		if err := s.shutdown(ctx); err != nil {
			return fmt.Errorf("observability shutdown: %w", err)
		}
	}
	return nil
}
