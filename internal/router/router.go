package router

import (
	"time"

	"registras/internal/config"
	"registras/internal/handler"
	"registras/internal/middleware"
	"registras/internal/pricing"
	"registras/internal/repository"
	"registras/internal/service"
	"registras/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	posRepo := repository.NewPositionRepository(db)
	lineRepo := repository.NewPriceLineRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	// Worker dispatcher — injected into services that enqueue audit events
	dispatcher := worker.NewDispatcher(rdb)

	priceSvc := service.NewPriceService(lineRepo, posRepo, pricing.NewSystemClock(), rdb, dispatcher)
	positionSvc := service.NewPositionService(posRepo, priceSvc, dispatcher)
	importSvc := service.NewImportService(posRepo, priceSvc)
	backfillSvc := service.NewBackfillService(posRepo, lineRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	positionsH := handler.NewPositionHandler(positionSvc)
	pricesH := handler.NewPriceHandler(priceSvc)
	priceQueryH := handler.NewPriceQueryHandler(posRepo, rdb)
	auditH := handler.NewAuditHandler(auditRepo)
	importsH := handler.NewImportHandler(importSvc, backfillSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb))

	// Quick price lookup — read-only, cached
	r.GET("/v1/price/:code", priceQueryH.GetByCode)

	v1 := r.Group("/v1")
	{
		positions := v1.Group("/positions")
		{
			positions.POST("", positionsH.Create)
			positions.GET("", positionsH.List)
			positions.GET("/by-code/:code", positionsH.GetByCode)
			positions.GET("/:id", positionsH.Get)
			positions.PATCH("/:id", positionsH.Update)
			positions.DELETE("/:id", positionsH.Delete)

			positions.POST("/:id/prices", pricesH.Create)
			positions.GET("/:id/prices", pricesH.List)
			positions.GET("/:id/prices/resolve", pricesH.Resolve)
			positions.PUT("/:id/price", pricesH.SetBase)
		}

		prices := v1.Group("/prices")
		{
			prices.PUT("/:id", pricesH.Update)
			prices.DELETE("/:id", pricesH.Delete)
		}

		v1.GET("/audit/:id", auditH.History)

		imports := v1.Group("/imports")
		{
			imports.POST("/csv", importsH.ImportCSV)
			imports.POST("/backfill", importsH.Backfill)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
