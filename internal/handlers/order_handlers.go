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
// --- Order Handlers ---
//

// OrderResponse is one order as the account history renders it.
type OrderResponse struct {
	ID          int64  `json:"id"`
	Status      string `json:"status"`
	TotalAmount string `json:"totalAmount"`
	CreatedAt   string `json:"createdAt"`
}

func orderFromRow(row gateway.Row) OrderResponse {
	order := models.OrderFromRow(row)
	return OrderResponse{
		ID:          order.ID,
		Status:      order.Status,
		TotalAmount: order.Total.StringFixed(2),
		CreatedAt:   models.RowString(row, "created_at"),
	}
}

// GetMyOrders is the handler for GET /v1/orders
func (h *Handlers) GetMyOrders(c *gin.Context) {
	userID := middleware.UserID(c)

	rows, err := h.Gateway.Read(c.Request.Context(), "orders",
		gateway.Filter{"user_id": userID},
		&gateway.ReadOptions{OrderBy: "created_at", Descending: true})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	orders := make([]OrderResponse, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, orderFromRow(row))
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// OrderItemResponse is one purchased line, priced as it was at checkout.
type OrderItemResponse struct {
	ProductID   int64  `json:"productId"`
	ProductName string `json:"productName"`
	UnitPrice   string `json:"unitPrice"`
	Quantity    int    `json:"quantity"`
}

// GetOrderDetails is the handler for GET /v1/orders/:id
func (h *Handlers) GetOrderDetails(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}
	userID := middleware.UserID(c)

	// Filtering by user_id as well makes the ownership check part of the
	// query: someone else's order simply does not exist for this caller.
	rows, err := h.Gateway.Read(c.Request.Context(), "orders",
		gateway.Filter{"id": orderID, "user_id": userID}, nil)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}
	if len(rows) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	itemRows, err := h.Gateway.Read(c.Request.Context(), "order_items",
		gateway.Filter{"order_id": orderID}, nil)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	items := make([]OrderItemResponse, 0, len(itemRows))
	for _, row := range itemRows {
		item := models.OrderItemFromRow(row)
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			Quantity:    item.Quantity,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"order": orderFromRow(rows[0]),
		"items": items,
	})
}
