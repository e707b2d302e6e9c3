package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"little-lemon-go/access"
	"little-lemon-go/database"
	"little-lemon-go/logger"
	"little-lemon-go/services"
	"little-lemon-go/utils"
)

// Handler holds the dependencies shared by every route.
type Handler struct {
	DB       *gorm.DB
	Log      *logger.Logger
	Tokens   *utils.TokenManager
	Resolver *access.Resolver
	Rules    access.Rules
	Carts    *services.CartService
	Orders   *services.OrderService
	Rosters  *services.RosterService
}

func New(db *gorm.DB, log *logger.Logger, tokens *utils.TokenManager) *Handler {
	return &Handler{
		DB:       db,
		Log:      log,
		Tokens:   tokens,
		Resolver: access.NewResolver(db),
		Rules:    access.DefaultRules(),
		Carts:    services.NewCartService(db),
		Orders:   services.NewOrderService(db),
		Rosters:  services.NewRosterService(db),
	}
}

func (h *Handler) HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := database.Ping(ctx, h.DB); err != nil {
		h.Log.Error("health_check_failed", logger.RequestID(c), "database unreachable", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// idParam parses a positive numeric path parameter. It writes a 404 and
// returns false when the value is not a valid id.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return 0, false
	}
	return uint(id), true
}
