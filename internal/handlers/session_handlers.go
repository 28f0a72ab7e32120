package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/middleware"
)

//
// --- Session Handlers ---
//

// Logout is the handler for POST /v1/logout. The session object is
// invalidated and the in-memory state (cart, pending mutations, checkout) is
// discarded; the persisted cart_items rows are untouched, so the cart comes
// back via /cart/restore on the next sign-in.
func (h *Handlers) Logout(c *gin.Context) {
	h.States.Drop(middleware.UserID(c))
	c.JSON(http.StatusOK, gin.H{"message": "Signed out"})
}
