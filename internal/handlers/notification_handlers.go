package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/middleware"
	"github.com/remedyroot/remedyroot-golang/internal/notify"
)

//
// --- Notification Handlers ---
//

// GetMyNotifications is the handler for GET /v1/notifications. Draining is
// destructive: these are one-shot toasts, not an inbox.
func (h *Handlers) GetMyNotifications(c *gin.Context) {
	client := h.States.GetOrCreate(middleware.UserID(c))

	entries := client.Feed.Drain()
	if entries == nil {
		entries = []notify.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"notifications": entries})
}
