package server

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/mansoorceksport/ironrank/internal/config"
	"github.com/mansoorceksport/ironrank/internal/handler"
	"github.com/mansoorceksport/ironrank/internal/middleware"
	"github.com/mansoorceksport/ironrank/internal/repository"
	"github.com/mansoorceksport/ironrank/internal/service"
	"github.com/mansoorceksport/ironrank/internal/telemetry"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

// AppDependencies holds the dependencies required to start the application
type AppDependencies struct {
	Config      *config.Config
	MongoDB     *mongo.Database
	RedisClient *redis.Client
}

// App bundles the fiber app with the background workers it owns.
type App struct {
	Fiber   *fiber.App
	Catalog *repository.RefCatalog
	Sweeper *service.AuditSweeper
}

// NewApp creates and configures the Fiber application with the given dependencies
func NewApp(deps AppDependencies) *App {
	// Initialize repositories
	redisRepo := repository.NewRedisCacheRepository(deps.RedisClient)
	referenceRepo := repository.NewMongoReferenceRepository(deps.MongoDB)
	userRepo := repository.NewMongoUserRepository(deps.MongoDB)
	bwRepo := repository.NewMongoBodyweightRepository(deps.MongoDB)
	sessionRepo := repository.NewMongoWorkoutSessionRepository(deps.MongoDB)
	rankRepo := repository.NewMongoUserRankRepository(deps.MongoDB)
	prRepo := repository.NewMongoPersonalRecordRepository(deps.MongoDB)
	auditRepo := repository.NewMongoCalculationAuditRepository(deps.MongoDB)

	catalog := repository.NewRefCatalog(referenceRepo, redisRepo, deps.Config.Catalog.TTL)

	// Initialize services
	scorer := service.NewScorer()
	prEvaluator := service.NewPREvaluator(prRepo)
	aggregator := service.NewRankAggregator(catalog, scorer)
	orchestrator := service.NewCalculatorOrchestrator(
		userRepo,
		bwRepo,
		sessionRepo,
		rankRepo,
		auditRepo,
		catalog,
		scorer,
		prEvaluator,
		aggregator,
	)
	sweeper := service.NewAuditSweeper(auditRepo, deps.Config.Sweeper.Interval, deps.Config.Sweeper.MaxAge)

	// Initialize handlers
	calculatorHandler := handler.NewCalculatorHandler(orchestrator, auditRepo)
	rankHandler := handler.NewRankHandler(rankRepo, prRepo)
	referenceHandler := handler.NewReferenceHandler(catalog)

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "IronRank API",
		ErrorHandler: customErrorHandler,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(telemetry.FiberMiddleware())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-Correlation-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))

	// Health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "ironrank",
		})
	})

	// API v1 routes
	v1 := app.Group("/v1")

	// Public reference reads
	v1.Get("/exercises", referenceHandler.ListExercises)
	v1.Get("/ranks", referenceHandler.ListRanks)

	// ===========================================
	// MEMBER API - /v1/me/*
	// ===========================================
	me := v1.Group("/me")
	me.Use(middleware.VerifyIronRankToken(deps.Config.JWT.Secret))
	me.Use(middleware.IdempotencyMiddleware(deps.RedisClient, 10*time.Minute))

	me.Post("/calculator", calculatorHandler.Calculate)
	me.Get("/calculator/audits", calculatorHandler.ListAudits)
	me.Post("/sessions/:id/finalize", calculatorHandler.FinalizeSession)

	me.Get("/ranks", rankHandler.GetMyRanks)
	me.Get("/prs", rankHandler.GetMyPRs)
	me.Get("/prs/:exerciseKey/history", rankHandler.GetPRHistory)

	// ===========================================
	// ADMIN API - /v1/admin/*
	// ===========================================
	admin := v1.Group("/admin")
	admin.Use(middleware.VerifyIronRankToken(deps.Config.JWT.Secret))
	admin.Use(middleware.RequireAdmin())

	admin.Post("/leaderboard/reset", rankHandler.ResetLeaderboard)
	admin.Post("/catalog/refresh/:key", referenceHandler.RefreshCatalog)

	return &App{
		Fiber:   app,
		Catalog: catalog,
		Sweeper: sweeper,
	}
}

// Start prewarms the catalog, launches the sweeper and listens. It
// blocks until the listener exits.
func (a *App) Start(ctx context.Context, port string) error {
	a.Catalog.Prewarm(ctx)
	go a.Sweeper.Run(ctx)
	return a.Fiber.Listen(":" + port)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("Error: %v", err)
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}
