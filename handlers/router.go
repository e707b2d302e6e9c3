package handlers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"little-lemon-go/config"
	"little-lemon-go/models"
)

// corsConfig returns nil when no cross-origin access should be granted.
func corsConfig(cfg *config.Config) *cors.Config {
	if cfg.Development() {
		return &cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		return nil
	}
	return &cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter builds the engine with every API route behind the auth and
// gate middlewares.
func SetupRouter(h *Handler, cfg *config.Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), h.Log.Middleware())

	if corsCfg := corsConfig(cfg); corsCfg != nil {
		router.Use(cors.New(*corsCfg))
	}

	router.Use(h.AuthMiddleware(), h.GateMiddleware())

	router.GET("/health", h.HealthHandler)

	api := router.Group("/api")
	{
		api.GET("/categories", h.ListCategoriesHandler)
		api.POST("/categories", h.CreateCategoryHandler)

		menuItemRoutes := api.Group("/menu-items")
		{
			menuItemRoutes.GET("", h.ListMenuItemsHandler)
			menuItemRoutes.POST("", h.CreateMenuItemHandler)
			menuItemRoutes.GET("/:id", h.GetMenuItemHandler)
			menuItemRoutes.PUT("/:id", h.UpdateMenuItemHandler)
			menuItemRoutes.PATCH("/:id", h.UpdateMenuItemHandler)
			menuItemRoutes.DELETE("/:id", h.DeleteMenuItemHandler)
		}

		rosters := map[string]string{
			"/groups/managers":      models.GroupManager,
			"/groups/delivery-crew": models.GroupDeliveryCrew,
		}
		for path, group := range rosters {
			api.GET(path, h.ListGroupMembersHandler(group))
			api.POST(path, h.AddGroupMemberHandler(group))
			api.DELETE(path+"/:userId", h.RemoveGroupMemberHandler(group))
		}

		cartRoutes := api.Group("/cart")
		{
			cartRoutes.GET("", h.ListCartHandler)
			cartRoutes.POST("", h.AddToCartHandler)
			cartRoutes.DELETE("", h.ClearCartHandler)
		}

		orderRoutes := api.Group("/orders")
		{
			orderRoutes.GET("", h.ListOrdersHandler)
			orderRoutes.POST("", h.PlaceOrderHandler)
			orderRoutes.GET("/:id", h.GetOrderHandler)
			orderRoutes.PUT("/:id", h.UpdateOrderHandler)
			orderRoutes.PATCH("/:id", h.UpdateOrderHandler)
			orderRoutes.DELETE("/:id", h.DeleteOrderHandler)
		}
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}
