package server

import (
	"net/http"

	"replydesk/internal/config"
	"replydesk/internal/crypto"
	"replydesk/internal/google_client"
	"replydesk/internal/handler"
	"replydesk/internal/identity_client"
	"replydesk/internal/middleware"
	"replydesk/internal/openai_client"
	"replydesk/internal/repository"
	"replydesk/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
)

type Server struct {
	router *gin.Engine
	db     *sqlx.DB
	cfg    *config.Config
	sealer *crypto.Sealer
	log    *logrus.Logger
	zap    *zap.Logger

	cycle service.CycleService
}

func NewServer(db *sqlx.DB, cfg *config.Config, sealer *crypto.Sealer, log *logrus.Logger, zapLog *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		db:     db,
		cfg:    cfg,
		sealer: sealer,
		log:    log,
		zap:    zapLog,
	}

	s.setupRoutes()

	return s
}

// CycleService exposes the wired pipeline for the background runner.
func (s *Server) CycleService() service.CycleService {
	return s.cycle
}

func (s *Server) setupRoutes() {
	// External clients
	googleClient := google_client.NewClient(s.cfg, s.zap)
	openaiClient := openai_client.NewClient(s.cfg.OpenAI.BaseURL, s.cfg.OpenAI.Model, s.zap)
	identityClient := identity_client.NewClient(s.cfg.Auth.IntrospectionURL, s.zap)

	// Repositories
	settingsRepo := repository.NewSettingsRepository(s.db, s.zap)
	locationRepo := repository.NewLocationRepository(s.db, s.zap)
	reviewRepo := repository.NewReviewRepository(s.db, s.zap)
	replyRepo := repository.NewReplyRepository(s.db, s.zap)

	// Services
	settingsService := service.NewSettingsService(settingsRepo, s.sealer, s.zap)
	oauthService := service.NewOAuthService(settingsRepo, s.sealer, googleClient, s.zap)
	locationService := service.NewLocationService(locationRepo, oauthService, googleClient, s.zap)
	reviewService := service.NewReviewService(reviewRepo, locationRepo, oauthService, googleClient, s.zap)
	replyService := service.NewReplyService(replyRepo, reviewRepo, locationRepo, settingsService, oauthService, openaiClient, googleClient, s.zap)
	s.cycle = service.NewCycleService(reviewService, replyService, reviewRepo, replyRepo, s.zap)

	// Handlers
	settingsHandler := handler.NewSettingsHandler(settingsService, s.log)
	oauthHandler := handler.NewOAuthHandler(oauthService, s.log)
	locationHandler := handler.NewLocationHandler(locationService, s.log)
	reviewHandler := handler.NewReviewHandler(reviewService, s.log)
	replyHandler := handler.NewReplyHandler(replyService, s.log)
	cycleHandler := handler.NewCycleHandler(s.cycle, s.log)

	// Ping route for health check
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// Authenticated routes
	api := s.router.Group("/api")
	api.Use(middleware.AuthMiddleware(identityClient, s.cfg.Auth.DevUserID, s.zap))
	{
		api.GET("/settings", settingsHandler.GetSettings)
		api.PUT("/settings", settingsHandler.UpdateSettings)

		api.POST("/oauth/google/initiate", oauthHandler.Initiate)
		api.POST("/oauth/google/callback", oauthHandler.Callback)
		api.POST("/oauth/google/disconnect", oauthHandler.Disconnect)

		api.GET("/locations", locationHandler.ListLocations)
		api.POST("/locations/connect", locationHandler.ConnectLocations)
		api.PUT("/locations/:id/policy", locationHandler.UpdatePolicy)

		api.GET("/reviews", reviewHandler.ListReviews)
		api.POST("/reviews/fetch", reviewHandler.FetchReviews)

		api.POST("/replies/generate", replyHandler.GenerateReply)
		api.POST("/replies/regenerate", replyHandler.RegenerateReply)
		api.POST("/replies/:id/approve", replyHandler.ApproveReply)
		api.POST("/replies/:id/reject", replyHandler.RejectReply)
		api.POST("/replies/:id/send", replyHandler.SendReply)

		api.POST("/cycle/run", cycleHandler.RunCycle)
	}
}

func (s *Server) Run(addr string) {
	s.log.Infof("Server starting on port %s...", addr)
	if err := s.router.Run(addr); err != nil {
		s.log.Fatalf("Server failed to start: %v", err)
	}
}
