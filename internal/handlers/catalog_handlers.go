package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/models"
)

//
// --- Catalog Handlers (Public) ---
//

// GetAilments is the handler for GET /v1/ailments
func (h *Handlers) GetAilments(c *gin.Context) {
	rows, err := h.Gateway.Read(c.Request.Context(), "ailments", nil,
		&gateway.ReadOptions{OrderBy: "name"})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	ailments := make([]models.Ailment, 0, len(rows))
	for _, row := range rows {
		ailments = append(ailments, models.AilmentFromRow(row))
	}
	c.JSON(http.StatusOK, gin.H{"ailments": ailments})
}

// GetRemedies is the handler for GET /v1/remedies?ailment_id=N
func (h *Handlers) GetRemedies(c *gin.Context) {
	var ailmentID int64
	if raw := c.Query("ailment_id"); raw != "" {
		var err error
		ailmentID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ailment_id"})
			return
		}
	}

	remedies, err := h.Catalog.ListRemedies(c.Request.Context(), ailmentID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"remedies": remedies})
}

// GetRemedyBySlug is the handler for GET /v1/remedies/:slug
func (h *Handlers) GetRemedyBySlug(c *gin.Context) {
	remedy, err := h.Catalog.GetRemedyBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		if gateway.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Remedy not found"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	products, err := h.Catalog.ListProducts(c.Request.Context(), remedy.ID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"remedy": remedy, "products": products})
}

// GetProducts is the handler for GET /v1/products?remedy_id=N
func (h *Handlers) GetProducts(c *gin.Context) {
	var remedyID int64
	if raw := c.Query("remedy_id"); raw != "" {
		var err error
		remedyID, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid remedy_id"})
			return
		}
	}

	products, err := h.Catalog.ListProducts(c.Request.Context(), remedyID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// CreateRemedyInput defines the JSON for creating a remedy.
type CreateRemedyInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	AilmentID   int64  `json:"ailment_id" binding:"required"`
}

// CreateRemedy is the handler for POST /v1/admin/remedies
func (h *Handlers) CreateRemedy(c *gin.Context) {
	var input CreateRemedyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	id, err := h.Catalog.CreateRemedy(c.Request.Context(), input.Name, input.Description, input.AilmentID)
	if err != nil {
		if gateway.IsPermissionDenied(err) {
			c.JSON(http.StatusForbidden, gin.H{"error": gateway.UserMessage(err)})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": id, "message": "Remedy created"})
}
