package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"civitas/api_governance/internal/handlers"
	"civitas/api_governance/pkg/auth"
	"civitas/api_governance/pkg/config"
	"civitas/api_governance/pkg/database"
	"civitas/api_governance/pkg/logging"
	"civitas/api_governance/pkg/monitoring"
	"civitas/api_governance/pkg/server"
	"civitas/api_governance/pkg/version"
)

func main() {
	// Setup logger
	logger := logging.NewLoggerWithService("tribune")

	// Load environment variables
	config.LoadEnv(logger)

	logger.Info("Starting Tribune (Governance API)")

	// Optional file config; env vars win over file values
	fileCfg, err := config.LoadServiceConfig(config.GetEnv("CONFIG_FILE", "tribune.yaml"))
	if err != nil {
		logger.WithError(err).Fatal("Failed to load config file")
	}

	// Connect to database
	dbConfig := database.DefaultConfig()
	dbConfig.URL = config.Resolve("DATABASE_URL", fileCfg.Database.URL, "")
	if fileCfg.Database.MaxOpenConns > 0 {
		dbConfig.MaxOpenConns = fileCfg.Database.MaxOpenConns
	}
	if fileCfg.Database.MaxIdleConns > 0 {
		dbConfig.MaxIdleConns = fileCfg.Database.MaxIdleConns
	}
	db := database.MustConnect(dbConfig, logger)
	defer db.Close()

	// Setup monitoring
	healthChecker := monitoring.NewHealthChecker("tribune", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("tribune", version.Version, version.GitCommit)

	// Add health checks
	healthChecker.AddCheck("database", monitoring.DatabaseHealthCheck(db))
	healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
		"DATABASE_URL": dbConfig.URL,
		"JWT_SECRET":   config.Resolve("JWT_SECRET", fileCfg.Auth.JWTSecret, ""),
	}))

	// Governance operation metrics
	_, operations, _ := metricsCollector.CreateBusinessMetrics()

	// Initialize handlers
	handlers.Init(db, logger)
	handlers.WireMetrics(operations)

	// Setup router with unified monitoring
	router := server.SetupServiceRouter(logger, "tribune", healthChecker, metricsCollector)

	jwtSecret := []byte(config.Resolve("JWT_SECRET", fileCfg.Auth.JWTSecret, "default-jwt-secret"))

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, version.GetInfo())
	})

	// Public routes: effective configuration reads
	public := router.Group("/api/governance")
	{
		public.GET("/parameters/vote", handlers.GetVoteParameters)
		public.GET("/parameters/credibility", handlers.GetCredibilityRules)
		public.GET("/parameters/roles", handlers.GetRolePermissions)
		public.GET("/evolutions/active", handlers.GetActiveEvolutions)
	}

	// Protected routes (require user authentication)
	protected := router.Group("/api/governance")
	protected.Use(auth.JWTAuthMiddleware(jwtSecret))
	{
		protected.POST("/evolutions", handlers.ProposeEvolution)
		protected.GET("/evolutions", handlers.GetAllEvolutions)
		protected.POST("/evolutions/:id/approve", handlers.ApproveEvolution)
		protected.POST("/evolutions/:id/reject", handlers.RejectEvolution)
	}

	// Cohort matching over decision records
	events := router.Group("/api/special-events")
	events.Use(auth.JWTAuthMiddleware(jwtSecret))
	{
		events.GET("", handlers.GetSpecialEvents)
		events.POST("/preview", handlers.PreviewMatchingDecisions)
		events.GET("/:id/decisions", handlers.GetSpecialEventDecisions)
		events.GET("/:id/decisions/:decisionId/matches", handlers.MatchesSpecialEvent)
	}

	// Start server with graceful shutdown
	serverConfig := server.DefaultConfig("tribune", config.Resolve("PORT", fileCfg.Port, "18010"))
	if err := server.Start(serverConfig, router, logger); err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}
}
