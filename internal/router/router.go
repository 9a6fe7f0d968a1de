package router

import (
	"time"

	"branchpos/internal/config"
	"branchpos/internal/handler"
	"branchpos/internal/infra"
	"branchpos/internal/middleware"
	"branchpos/internal/repository"
	"branchpos/internal/service"
	"branchpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) *gin.Engine {
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
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	branchRepo := repository.NewBranchRepository(db)
	productRepo := repository.NewProductRepository(db)
	stockRepo := repository.NewBranchStockRepository(db)
	txRepo := repository.NewTransactionRepository(db)
	movRepo := repository.NewStockMovementRepository(db)

	// Worker dispatcher — injected into services that enqueue async jobs
	dispatcher := worker.NewDispatcher(rdb)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	categorySvc := service.NewCategoryService(categoryRepo)
	branchSvc := service.NewBranchService(branchRepo, stockRepo)
	productSvc := service.NewProductService(productRepo, categoryRepo, branchRepo, stockRepo, movRepo, cfg.MainBranchName)
	allocatorSvc := service.NewAllocatorService(stockRepo, productRepo, branchRepo, movRepo)
	transferSvc := service.NewTransferService(stockRepo, productRepo, branchRepo, movRepo, cfg.MainBranchName)
	settlementSvc := service.NewSettlementService(txRepo, stockRepo, productRepo, branchRepo, movRepo, dispatcher, cfg.MainBranchName)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	categoriesH := handler.NewCategoriesHandler(categorySvc)
	branchesH := handler.NewBranchesHandler(branchSvc)
	productsH := handler.NewProductsHandler(productSvc)
	stockH := handler.NewStockHandler(allocatorSvc, transferSvc)
	checkoutH := handler.NewCheckoutHandler(settlementSvc)
	transactionsH := handler.NewTransactionsHandler(settlementSvc)
	priceH := handler.NewPriceCheckHandler(productRepo, stockRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb, smtpCB))
	r.POST("/api/login", middleware.LoginRateLimiter(), authH.Login)

	// Price check — no auth required
	r.GET("/api/price/:sku", priceH.GetPriceBySKU)

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	api := r.Group("/api", jwtMW)
	{
		// Catalog — admin can write, all authenticated can read
		api.GET("/categories", middleware.RequireRole("admin", "user"), categoriesH.List)
		categories := api.Group("/categories", middleware.RequireRole("admin"))
		{
			categories.POST("", categoriesH.Create)
			categories.PUT("/:id", categoriesH.Update)
			categories.DELETE("/:id", categoriesH.Delete)
		}

		api.GET("/products", middleware.RequireRole("admin", "user"), productsH.List)
		api.GET("/product-details/:id", middleware.RequireRole("admin", "user"), productsH.GetDetails)
		api.GET("/prodcat/:id", middleware.RequireRole("admin", "user"), productsH.ListByCategory)
		products := api.Group("/products", middleware.RequireRole("admin"))
		{
			products.POST("", productsH.Create)
			products.PUT("/:id", productsH.Update)
			products.DELETE("/:id", productsH.Deactivate)
		}

		api.GET("/branches", middleware.RequireRole("admin", "user"), branchesH.List)
		api.GET("/branches/:id", middleware.RequireRole("admin", "user"), branchesH.Get)
		api.GET("/branches/:id/products", middleware.RequireRole("admin", "user"), stockH.ListBranchProducts)
		branches := api.Group("/branches", middleware.RequireRole("admin"))
		{
			branches.POST("", branchesH.Create)
			branches.PUT("/:id", branchesH.Update)
			branches.DELETE("/:id", branchesH.Delete)
		}

		// Stock — allocation and transfer are admin operations
		api.POST("/allocate-stock", middleware.RequireRole("admin"), stockH.Allocate)
		api.GET("/allocate-stock", middleware.RequireRole("admin", "user"), stockH.ListLedger)
		api.GET("/allocated-stocks", middleware.RequireRole("admin", "user"), stockH.ListAllocated)
		api.POST("/products/transfer", middleware.RequireRole("admin"), stockH.Transfer)

		// Checkout — any authenticated user can sell
		api.POST("/update-stock", middleware.RequireRole("admin", "user"), checkoutH.SettleSale)
		api.POST("/transactions", middleware.RequireRole("admin", "user"), transactionsH.Record)
		api.GET("/transactions", middleware.RequireRole("admin", "user"), transactionsH.List)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
