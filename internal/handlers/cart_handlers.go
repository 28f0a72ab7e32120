package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/cart"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/middleware"
)

//
// --- Cart Handlers ---
//
// The cart lives in memory per user; add/update/remove never touch the
// gateway. Persistence is the explicit /cart/sync step, so a burst of +/-
// clicks costs one reconciliation instead of one round-trip per click.

// CartItemResponse is one cart line as the frontend renders it.
type CartItemResponse struct {
	ProductID int64  `json:"productId"`
	Name      string `json:"name"`
	UnitPrice string `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
	LineTotal string `json:"lineTotal"`
}

func cartResponse(c *cart.Cart) gin.H {
	items := make([]CartItemResponse, 0, c.Len())
	totalItems := 0
	for _, item := range c.Items() {
		items = append(items, CartItemResponse{
			ProductID: item.ProductID,
			Name:      item.Name,
			UnitPrice: item.UnitPrice.StringFixed(2),
			Quantity:  item.Quantity,
			LineTotal: item.Subtotal().StringFixed(2),
		})
		totalItems += item.Quantity
	}
	return gin.H{
		"items":      items,
		"total":      c.Total().StringFixed(2),
		"totalItems": totalItems,
	}
}

// GetCart is the handler for GET /v1/cart
func (h *Handlers) GetCart(c *gin.Context) {
	client := h.States.GetOrCreate(middleware.UserID(c))
	c.JSON(http.StatusOK, cartResponse(client.Cart))
}

// AddToCartInput defines the JSON for adding an item to the cart.
type AddToCartInput struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

// AddToCart is the handler for POST /v1/cart/items
func (h *Handlers) AddToCart(c *gin.Context) {
	userID := middleware.UserID(c)

	// 1. --- Bind & Validate JSON ---
	var input AddToCartInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	// 2. --- Price the line from the catalog ---
	product, err := h.Catalog.GetProduct(c.Request.Context(), input.ProductID)
	if err != nil {
		if gateway.IsNotFound(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found or not active"})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	// 3. --- Merge into the local aggregate ---
	client := h.States.GetOrCreate(userID)
	client.Cart.AddItem(cart.Product{
		ID:    product.ID,
		Name:  product.Name,
		Price: product.Price,
	}, input.Quantity)

	c.JSON(http.StatusCreated, cartResponse(client.Cart))
}

// UpdateCartItemInput defines the JSON for updating an item's quantity.
type UpdateCartItemInput struct {
	Quantity *int `json:"quantity" binding:"required,gte=0"` // 0 removes the line
}

// UpdateCartItem is the handler for PUT /v1/cart/items/:product_id
func (h *Handlers) UpdateCartItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	var input UpdateCartItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	client := h.States.GetOrCreate(middleware.UserID(c))
	client.Cart.SetQuantity(productID, *input.Quantity)
	c.JSON(http.StatusOK, cartResponse(client.Cart))
}

// DeleteCartItem is the handler for DELETE /v1/cart/items/:product_id
func (h *Handlers) DeleteCartItem(c *gin.Context) {
	productID, err := strconv.ParseInt(c.Param("product_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	client := h.States.GetOrCreate(middleware.UserID(c))
	client.Cart.RemoveItem(productID)
	c.JSON(http.StatusOK, cartResponse(client.Cart))
}

// SyncCart is the handler for POST /v1/cart/sync. It reconciles the local
// aggregate against the remote cart_items rows.
func (h *Handlers) SyncCart(c *gin.Context) {
	userID := middleware.UserID(c)
	client := h.States.GetOrCreate(userID)

	if err := h.Syncer.Flush(c.Request.Context(), userID, client.Cart); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cart synchronized"})
}

// RestoreCart is the handler for POST /v1/cart/restore. It rebuilds the local
// cart from the persisted rows, e.g. after a fresh login on a new device.
func (h *Handlers) RestoreCart(c *gin.Context) {
	userID := middleware.UserID(c)
	client := h.States.GetOrCreate(userID)

	client.Cart.Clear()
	if err := h.Syncer.Restore(c.Request.Context(), userID, client.Cart); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, cartResponse(client.Cart))
}
