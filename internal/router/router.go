package router

import (
	"time"

	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/config"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/handler"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/middleware"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/model"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/repository"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/service"
	"github.com/farahelhasan/Invoice-Tracking-System-Backend/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// loginAttemptsPerMinute caps credential guesses per client IP.
const loginAttemptsPerMinute = 10

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: the catalog cache is skipped and rate limits are kept
// in process. A nil queue makes receipt requests fail as unavailable.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, queue service.ReceiptQueue) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	if cfg.RateLimitPerMinute > 0 {
		r.Use(middleware.RateLimit(middleware.NewLimiter(rdb, "global", cfg.RateLimitPerMinute, time.Minute)))
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	lineRepo := repository.NewInvoiceItemRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	itemRepo := repository.NewCachedItemRepository(repository.NewItemRepository(db), rdb, cfg.ItemCacheTTL())

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg)
	historySvc := service.NewHistoryService(historyRepo)
	invoiceSvc := service.NewInvoiceService(invoiceRepo, lineRepo, itemRepo, userRepo, historySvc)
	itemSvc := service.NewItemService(itemRepo, invoiceRepo, userRepo)
	userSvc := service.NewUserService(userRepo, roleRepo)
	if queue == nil {
		queue = worker.NewDispatcher(nil)
	}
	receiptSvc := service.NewReceiptService(invoiceRepo, userRepo, queue)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	invoicesH := handler.NewInvoicesHandler(invoiceSvc, receiptSvc)
	itemsH := handler.NewItemsHandler(itemSvc)
	usersH := handler.NewUsersHandler(userSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	loginLimiter := middleware.NewLimiter(rdb, "login", loginAttemptsPerMinute, time.Minute)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/signup", authH.Signup)
		auth.POST("/login", middleware.RateLimit(loginLimiter), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes. Role filters here are coarse; ownership and the
	// deleted flag are enforced per invoice by the services.
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	writers := middleware.RequireRole(model.RoleSuperuser, model.RoleUser)
	superuser := middleware.RequireRole(model.RoleSuperuser)

	inv := v1.Group("/invoices")
	{
		inv.GET("", middleware.RequireRole(model.RoleSuperuser, model.RoleAuditor), invoicesH.List)
		inv.GET("/user", invoicesH.Mine)
		inv.GET("/search", invoicesH.Search)
		inv.POST("", writers, invoicesH.Create)
		inv.POST("/superuser", superuser, invoicesH.CreateForUser)

		inv.PATCH("/items/:id", writers, invoicesH.EditQuantity)
		inv.DELETE("/items/:id", writers, invoicesH.DeleteItem)

		inv.GET("/:id", invoicesH.Get)
		inv.DELETE("/:id", writers, invoicesH.Delete)
		inv.POST("/:id/items", writers, invoicesH.AddItem)
		inv.GET("/:id/history", invoicesH.History)
		inv.GET("/:id/total", invoicesH.Total)
		inv.POST("/:id/receipt", invoicesH.Receipt)
	}

	items := v1.Group("/items", writers)
	{
		items.GET("", itemsH.List)
		items.GET("/not-in/:invoiceId", itemsH.NotInInvoice)
	}

	users := v1.Group("/users", superuser)
	{
		users.GET("/roles", usersH.ListRoles)
		users.PATCH("/roles", usersH.ChangeRole)
	}

	return r
}
