package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/handlers"
	"github.com/remedyroot/remedyroot-golang/internal/middleware"
)

// CORSMiddleware tells the browser the storefront frontend may call us,
// including the Authorization header carrying the bearer token.
func CORSMiddleware(allowedOrigin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		// Preflight requests get an empty 204 before any auth runs.
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func SetupRouter(h *handlers.Handlers, jwtSecret []byte, allowedOrigin string) *gin.Engine {
	router := gin.Default()

	router.Use(CORSMiddleware(allowedOrigin))

	v1 := router.Group("/v1")
	{
		// --- Ping Route (Public) ---
		v1.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "pong!"})
		})

		// --- Public Catalog Routes ---
		v1.GET("/ailments", h.GetAilments)
		v1.GET("/remedies", h.GetRemedies)
		v1.GET("/remedies/:slug", h.GetRemedyBySlug)
		v1.GET("/products", h.GetProducts)

		// --- Protected Routes (Login Required) ---
		auth := v1.Group("/")
		auth.Use(middleware.AuthMiddleware(jwtSecret))
		{
			// --- Cart Routes ---
			auth.GET("/cart", h.GetCart)
			auth.POST("/cart/items", h.AddToCart)
			auth.PUT("/cart/items/:product_id", h.UpdateCartItem)
			auth.DELETE("/cart/items/:product_id", h.DeleteCartItem)
			auth.POST("/cart/sync", h.SyncCart)
			auth.POST("/cart/restore", h.RestoreCart)

			// --- Checkout Routes ---
			auth.POST("/checkout", h.BeginCheckout)
			auth.POST("/checkout/payment", h.SubmitPayment)
			auth.GET("/checkout", h.GetCheckout)

			// --- Like Routes ---
			auth.POST("/likes/remedies/:id", h.ToggleLike)
			auth.GET("/likes/remedies/:id", h.GetLikeState)

			// --- Notification Routes ---
			auth.GET("/notifications", h.GetMyNotifications)

			// --- Session Routes ---
			auth.POST("/logout", h.Logout)

			// --- Order Routes ---
			auth.GET("/orders", h.GetMyOrders)
			auth.GET("/orders/:id", h.GetOrderDetails)

			// --- Dashboard Stats ---
			auth.GET("/dashboard-stats", h.GetDashboardStats)
		}

		// --- Admin-Only Routes ---
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthMiddleware(jwtSecret))
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("/remedies", h.CreateRemedy)
			admin.GET("/dashboard-stats", h.GetAdminStats)
		}
	}

	return router
}
