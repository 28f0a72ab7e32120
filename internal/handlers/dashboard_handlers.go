package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/remedyroot/remedyroot-golang/internal/gateway"
	"github.com/remedyroot/remedyroot-golang/internal/middleware"
	"golang.org/x/sync/errgroup"
)

//
// --- Dashboard Handlers ---
//

// DashboardStats is the account dashboard summary.
type DashboardStats struct {
	OrderCount    int64 `json:"orderCount"`
	CartLineCount int64 `json:"cartLineCount"`
	LikedRemedies int64 `json:"likedRemedies"`
}

// GetDashboardStats is the handler for GET /v1/dashboard-stats. The three
// counts fan out concurrently; the per-user loader tracks the dependency's
// loading/failed state and collapses concurrent requests onto one fan-out.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	userID := middleware.UserID(c)
	client := h.States.GetOrCreate(userID)

	v, err := client.Loader.Load(c.Request.Context(), "dashboard-stats",
		"user="+strconv.FormatInt(userID, 10),
		func(ctx context.Context) (any, error) {
			return h.fetchDashboardStats(ctx, userID)
		})
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}

	c.JSON(http.StatusOK, v)
}

func (h *Handlers) fetchDashboardStats(ctx context.Context, userID int64) (DashboardStats, error) {
	var stats DashboardStats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := h.Gateway.Count(ctx, "orders", gateway.Filter{"user_id": userID})
		stats.OrderCount = n
		return err
	})
	g.Go(func() error {
		n, err := h.Gateway.Count(ctx, "cart_items", gateway.Filter{"user_id": userID})
		stats.CartLineCount = n
		return err
	})
	g.Go(func() error {
		n, err := h.Gateway.Count(ctx, "remedy_likes", gateway.Filter{"user_id": userID})
		stats.LikedRemedies = n
		return err
	})

	if err := g.Wait(); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

// AdminStats is the admin dashboard summary over the whole catalog.
type AdminStats struct {
	RemedyCount  int64 `json:"remedyCount"`
	ProductCount int64 `json:"productCount"`
	OrderCount   int64 `json:"orderCount"`
	LikeCount    int64 `json:"likeCount"`
}

// GetAdminStats is the handler for GET /v1/admin/dashboard-stats
func (h *Handlers) GetAdminStats(c *gin.Context) {
	var stats AdminStats
	g, ctx := errgroup.WithContext(c.Request.Context())

	count := func(table string, dst *int64) func() error {
		return func() error {
			n, err := h.Gateway.Count(ctx, table, nil)
			*dst = n
			return err
		}
	}
	g.Go(count("remedies", &stats.RemedyCount))
	g.Go(count("products", &stats.ProductCount))
	g.Go(count("orders", &stats.OrderCount))
	g.Go(count("remedy_likes", &stats.LikeCount))

	if err := g.Wait(); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": gateway.UserMessage(err)})
		return
	}
	c.JSON(http.StatusOK, stats)
}
