package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/middleware"
	"github.com/remedyroot/remedyroot-golang/internal/models"
)

//
// --- Like Handlers ---
//

// ToggleLike is the handler for POST /v1/likes/remedies/:id. The response
// reflects the optimistic local state immediately; if the gateway write later
// fails, the rollback lands in the notification feed and the entity reverts.
func (h *Handlers) ToggleLike(c *gin.Context) {
	remedyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid remedy id"})
		return
	}

	client := h.States.GetOrCreate(middleware.UserID(c))

	// Seed the entity on first touch so a toggle straight from a deep link
	// works without a prior listing render.
	if _, ok := client.Likes.Get(remedyID); !ok {
		rows, err := h.Gateway.Read(c.Request.Context(), "remedies", gateway.Filter{"id": remedyID}, nil)
		if err != nil || len(rows) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Remedy not found"})
			return
		}
		client.Likes.LoadFromRemedy(c.Request.Context(), models.RemedyFromRow(rows[0]))
	}

	started, err := client.Likes.Toggle(c.Request.Context(), remedyID)
	if err != nil {
		// The toggle was rolled back; return the restored entity alongside
		// the failure so the UI can re-render it.
		entity, _ := client.Likes.Get(remedyID)
		c.JSON(http.StatusBadGateway, gin.H{
			"error":  gateway.UserMessage(err),
			"remedy": entity,
		})
		return
	}

	entity, _ := client.Likes.Get(remedyID)
	c.JSON(http.StatusOK, gin.H{
		"remedy":  entity,
		"applied": started, // false: dropped by the pending guard, nothing changed
		"pending": client.Likes.Pending(remedyID),
	})
}

// GetLikeState is the handler for GET /v1/likes/remedies/:id
func (h *Handlers) GetLikeState(c *gin.Context) {
	remedyID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid remedy id"})
		return
	}

	client := h.States.GetOrCreate(middleware.UserID(c))
	entity, ok := client.Likes.Get(remedyID)
	if !ok {
		rows, err := h.Gateway.Read(c.Request.Context(), "remedies", gateway.Filter{"id": remedyID}, nil)
		if err != nil || len(rows) == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Remedy not found"})
			return
		}
		client.Likes.LoadFromRemedy(c.Request.Context(), models.RemedyFromRow(rows[0]))
		entity, _ = client.Likes.Get(remedyID)
	}

	c.JSON(http.StatusOK, gin.H{
		"remedy":  entity,
		"pending": client.Likes.Pending(remedyID),
	})
}
