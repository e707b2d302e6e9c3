package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"little-lemon-go/access"
	"little-lemon-go/logger"
	"little-lemon-go/utils"
)

const ActorHandlerKey = "actor"

// AuthMiddleware identifies the caller from the bearer token and resolves
// its role once for the whole request. Requests without a token continue as
// anonymous; the gate decides whether that is enough.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := utils.BearerToken(c.GetHeader("Authorization"))
		if tokenString == "" {
			c.Next()
			return
		}

		claims, err := h.Tokens.ValidateToken(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		actor, err := h.Resolver.Resolve(c.Request.Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, access.ErrUnknownUser) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not recognized"})
				return
			}
			h.Log.Error("resolve_actor_failed", logger.RequestID(c), "failed to resolve caller", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}

		c.Set(ActorHandlerKey, &actor)
		c.Next()
	}
}

// GateMiddleware applies the access rules before any route handler runs.
func (h *Handler) GateMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath()
		if path == "" {
			// Unmatched route, let gin answer 404.
			c.Next()
			return
		}

		switch h.Rules.Decide(c.Request.Method, path, currentActor(c)) {
		case access.Allow:
			c.Next()
		case access.Unauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
		default:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to perform this action"})
		}
	}
}

// currentActor returns the authenticated caller, or nil for anonymous requests.
func currentActor(c *gin.Context) *access.Actor {
	value, exists := c.Get(ActorHandlerKey)
	if !exists {
		return nil
	}
	actor, _ := value.(*access.Actor)
	return actor
}

// mustActor is used by handlers behind an authenticated rule.
func mustActor(c *gin.Context) (access.Actor, bool) {
	actor := currentActor(c)
	if actor == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User authentication details not found"})
		return access.Actor{}, false
	}
	return *actor, true
}
