package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"little-lemon-go/logger"
)

// RosterRequest names the user to add to a staff group. Sent as a form
// field, JSON is accepted as well.
type RosterRequest struct {
	Username string `form:"username" json:"username"`
}

func (h *Handler) ListGroupMembersHandler(group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := h.Rosters.Members(c.Request.Context(), group)
		if err != nil {
			h.respondError(c, "list_group_members_failed", err)
			return
		}
		c.JSON(http.StatusOK, users)
	}
}

func (h *Handler) AddGroupMemberHandler(group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request RosterRequest
		if err := c.ShouldBind(&request); err != nil || strings.TrimSpace(request.Username) == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"message": "error"})
			return
		}

		user, err := h.Rosters.Add(c.Request.Context(), group, strings.TrimSpace(request.Username))
		if err != nil {
			h.respondError(c, "add_group_member_failed", err)
			return
		}

		h.Log.Info("group_member_added", logger.RequestID(c), "user added to "+group)
		c.JSON(http.StatusCreated, gin.H{"message": "User " + user.Username + " added to " + group})
	}
}

func (h *Handler) RemoveGroupMemberHandler(group string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := idParam(c, "userId")
		if !ok {
			return
		}

		if err := h.Rosters.Remove(c.Request.Context(), group, userID); err != nil {
			h.respondError(c, "remove_group_member_failed", err)
			return
		}

		h.Log.Info("group_member_removed", logger.RequestID(c), "user removed from "+group)
		c.JSON(http.StatusOK, gin.H{"message": "User removed from " + group})
	}
}
