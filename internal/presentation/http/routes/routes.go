package routes

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/josemcv/tabsync/internal/config"
	"github.com/josemcv/tabsync/internal/presentation/http/handler"
	"github.com/josemcv/tabsync/internal/presentation/http/middleware"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Tab  *handler.TabHandler
	Sale *handler.SaleHandler
	Sync *handler.SyncHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	Cfg *config.Config
	Log *slog.Logger
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		v1.Use(rateLimiter.Middleware())

		registerTabRoutes(v1, h)
		registerSaleRoutes(v1, h)
		registerSyncRoutes(v1, h)
	}

	return router
}

func registerTabRoutes(v1 *gin.RouterGroup, h *Handlers) {
	tabs := v1.Group("/tabs")
	{
		tabs.GET("", h.Tab.List)
		tabs.POST("", h.Tab.Create)
		tabs.POST("/:id/items", h.Tab.AddItem)
		tabs.DELETE("/:id/items/:productId", h.Tab.RemoveItem)
		tabs.POST("/:id/close", h.Tab.Close)
		tabs.DELETE("/:id", h.Tab.Delete)
	}
}

func registerSaleRoutes(v1 *gin.RouterGroup, h *Handlers) {
	sales := v1.Group("/sales")
	{
		sales.POST("", h.Sale.Register)
	}
}

func registerSyncRoutes(v1 *gin.RouterGroup, h *Handlers) {
	sync := v1.Group("/sync")
	{
		sync.POST("/wake", h.Sync.Wake)
	}
}
