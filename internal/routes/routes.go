package routes

import (
	"net/http"
	"time"

	"github.com/01moynul/storefront-golang/internal/config"
	"github.com/01moynul/storefront-golang/internal/handlers"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// corsConfig lets the storefront and admin frontends send the auth cookie.
func corsConfig(origins []string) cors.Config {
	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter wires every API route.
// With cfg.AdminGuard set, catalog writes, category writes, order management
// and stats require a logged-in admin.
func SetupRouter(h *handlers.Handlers, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(middleware.RequestLogger(), gin.Recovery())

	// --- APPLY THE CORS GUARD ---
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	if cfg.Storage.Driver == "" || cfg.Storage.Driver == "local" {
		router.Static(storage.PublicPrefix, cfg.Storage.UploadDir)
	}

	// admin is the guard for write and management routes.
	admin := []gin.HandlerFunc{}
	if cfg.AdminGuard {
		admin = append(admin, middleware.AuthMiddleware(h.Tokens), middleware.AdminMiddleware(h.Store))
	}
	guarded := func(handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, admin...), handler)
	}

	api := router.Group("/api")
	{
		// --- Ping Route (Public) ---
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Catalog Routes (Products, Gifts, Groceries) ---
		for _, kind := range models.CatalogKinds {
			catalog := api.Group("/"+kind.Path(), handlers.WithKind(kind))
			{
				catalog.GET("", h.ListCatalogItems)
				catalog.GET("/:id", h.GetCatalogItem)
				catalog.POST("", guarded(h.CreateCatalogItem)...)
				catalog.PUT("/:id", guarded(h.UpdateCatalogItem)...)
				catalog.DELETE("/:id", guarded(h.DeleteCatalogItem)...)

				catalog.GET("/:id/comments", h.ListComments)
				catalog.POST("/:id/comments", h.CreateComment)
				catalog.GET("/:id/likes", h.GetItemLikes)
				catalog.POST("/:id/likes", h.ToggleItemLike)
			}
		}

		// --- Comment & Reply Routes ---
		api.GET("/comments/:id/replies", h.ListReplies)
		api.POST("/comments/:id/replies", h.CreateReply)
		api.POST("/comments/:id/likes", h.ToggleCommentLike)
		api.POST("/replies/:id/likes", h.ToggleReplyLike)

		// --- Category Routes ---
		categories := api.Group("/categories")
		{
			categories.GET("", h.ListCategories)
			categories.GET("/:id", h.GetCategory)
			categories.POST("", guarded(h.CreateCategory)...)
			categories.PUT("/:id", guarded(h.UpdateCategory)...)
			categories.DELETE("/:id", guarded(h.DeleteCategory)...)
		}

		// --- Order Routes ---
		orders := api.Group("/orders")
		{
			orders.POST("", h.CreateOrder)
			orders.GET("", guarded(h.ListOrders)...)
			orders.GET("/:id", guarded(h.GetOrder)...)
			orders.PUT("/:id", guarded(h.UpdateOrder)...)
			orders.DELETE("/:id", guarded(h.DeleteOrder)...)
		}

		// --- Auth Routes ---
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", h.Login)
			authGroup.POST("/register", h.Register)
			authGroup.POST("/logout", h.Logout)
			authGroup.GET("/me", middleware.AuthMiddleware(h.Tokens), h.Me)
		}

		// --- Upload Route ---
		api.POST("/upload", h.UploadFile)

		// --- Admin Dashboard ---
		api.GET("/admin/stats", guarded(h.GetDashboardStats)...)
	}

	return router
}
