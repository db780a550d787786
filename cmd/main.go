package main

import (
	"checksuite-service/internal/handler"
	"checksuite-service/internal/middleware"
	"checksuite-service/internal/service"
	"checksuite-service/pkg/config"
	"checksuite-service/pkg/database"
	"checksuite-service/pkg/jwtutil"
	"checksuite-service/pkg/logger"
	"checksuite-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting checksuite service...", zap.String("environment", cfg.Server.Env))

	// Initialize database
	if err := database.InitDB(cfg); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established")

	// Initialize JWT utility
	jwtutil.Initialize(&cfg.JWT)
	log.Info("JWT utility initialized")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Wire up the service layer
	db := database.GetDB()
	audit := service.NewAuditRecorder(db, log)
	templates := service.NewTemplateService(db, log, audit)
	processes := service.NewProcessService(db, log, templates, audit)
	boards := service.NewBoardService(db, log)
	cards := service.NewCardService(db, log, audit)
	team := service.NewTeamService(db, log)
	invites := service.NewInviteService(db, log, cfg.Invite.TTL)
	shares := service.NewShareService(db, log)
	analytics := service.NewAnalyticsService(db, log)

	templateHandler := handler.NewTemplateHandler(templates, processes)
	boardHandler := handler.NewBoardHandler(boards)
	cardHandler := handler.NewCardHandler(cards)
	teamHandler := handler.NewTeamHandler(team)
	inviteHandler := handler.NewInviteHandler(invites)
	shareHandler := handler.NewShareHandler(shares)
	analyticsHandler := handler.NewAnalyticsHandler(analytics)
	auditHandler := handler.NewAuditHandler(audit)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", handler.MetricsHandler)
	e.GET("/share/:token", shareHandler.Resolve)

	// Authentication routes - these don't belong under /api since they're for getting access to the API
	auth := e.Group("/auth")
	auth.POST("/login", handler.Login)
	auth.POST("/register", handler.Register)

	// API routes - all require authentication
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Workspace selection - after login but before workspace-scoped resources
	api.GET("/workspaces", handler.ListMyWorkspaces)
	api.POST("/workspaces/switch", handler.SwitchWorkspace)

	// Template catalog and version lifecycle
	tpl := api.Group("/templates")
	tpl.GET("", templateHandler.List)
	tpl.POST("", templateHandler.Create)
	tpl.GET("/:id", templateHandler.Get)
	tpl.DELETE("/:id", templateHandler.Deactivate)
	tpl.PUT("/:id/favorite", templateHandler.ToggleFavorite)
	tpl.POST("/:id/drafts", templateHandler.CreateDraft)
	tpl.GET("/:id/versions/:versionId", templateHandler.GetVersion)
	tpl.POST("/:id/versions/:versionId/publish", templateHandler.Publish)
	tpl.POST("/:id/versions/:versionId/start", templateHandler.StartProcess)
	tpl.POST("/:id/versions/:versionId/steps", templateHandler.AddStep)
	tpl.PATCH("/steps/:stepId", templateHandler.UpdateStep)
	tpl.DELETE("/steps/:stepId", templateHandler.DeleteStep)
	tpl.POST("/steps/:stepId/items", templateHandler.AddStepItem)
	tpl.PATCH("/items/:itemId", templateHandler.UpdateStepItem)
	tpl.DELETE("/items/:itemId", templateHandler.DeleteStepItem)

	// Boards and columns
	boardsGroup := api.Group("/boards")
	boardsGroup.GET("", boardHandler.List)
	boardsGroup.POST("", boardHandler.Create)
	boardsGroup.GET("/:id", boardHandler.Get)
	boardsGroup.DELETE("/:id", boardHandler.Delete)
	boardsGroup.POST("/:id/columns", boardHandler.CreateColumn)
	boardsGroup.PATCH("/columns/:columnId", boardHandler.RenameColumn)
	boardsGroup.DELETE("/columns/:columnId", boardHandler.DeleteColumn)
	boardsGroup.POST("/:id/shares", shareHandler.Create)
	boardsGroup.GET("/:id/shares", shareHandler.List)
	boardsGroup.DELETE("/shares/:shareId", shareHandler.Revoke)

	// Cards and checklists
	cardsGroup := api.Group("/cards")
	cardsGroup.POST("", cardHandler.Create)
	cardsGroup.PATCH("/:id", cardHandler.Update)
	cardsGroup.DELETE("/:id", cardHandler.Delete)
	cardsGroup.PUT("/:id/move", cardHandler.Move)
	cardsGroup.POST("/:id/participants", cardHandler.AddParticipant)
	cardsGroup.DELETE("/:id/participants/:userId", cardHandler.RemoveParticipant)
	cardsGroup.POST("/:id/checklist", cardHandler.AddChecklistItem)
	cardsGroup.PUT("/checklist/:itemId/toggle", cardHandler.ToggleChecklistItem)
	cardsGroup.PATCH("/checklist/:itemId", cardHandler.UpdateChecklistItem)
	cardsGroup.PUT("/checklist/:itemId/mandatory", cardHandler.ToggleChecklistMandatory)
	cardsGroup.DELETE("/checklist/:itemId", cardHandler.DeleteChecklistItem)

	// Team and functional roles
	teamGroup := api.Group("/team")
	teamGroup.GET("/members", teamHandler.ListMembers)
	teamGroup.GET("/roles", teamHandler.ListRoles)
	teamGroup.POST("/roles", teamHandler.CreateRole)
	teamGroup.DELETE("/roles/:roleId", teamHandler.DeleteRole)
	teamGroup.PUT("/members/:userId/role", teamHandler.AssignRole)

	// Invites
	invitesGroup := api.Group("/invites")
	invitesGroup.GET("", inviteHandler.List)
	invitesGroup.POST("", inviteHandler.Create)
	invitesGroup.DELETE("/:id", inviteHandler.Revoke)
	invitesGroup.POST("/accept", inviteHandler.Accept)

	// Analytics
	api.GET("/analytics", analyticsHandler.Workspace)
	api.GET("/analytics/my-day", analyticsHandler.MyDay)

	// Audit trail
	api.GET("/audit", auditHandler.List)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
