// internal/app/router.go
package app

import (
	"net/http"

	campaignHandler "gongu-service/internal/handlers/campaign"
	inventoryHandler "gongu-service/internal/handlers/inventory"
	wsHandler "gongu-service/internal/handlers/websocket"
	"gongu-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	CampaignHandler  *campaignHandler.CampaignHandler
	InventoryHandler *inventoryHandler.InventoryHandler
	WSHandler        *wsHandler.WebSocketHandler
	AuthMiddleware   *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	r.GET("/api/v1/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "gongu-service"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// WebSocket endpoint for seller campaign notifications
	r.GET("/ws", h.AuthMiddleware.Auth(), h.WSHandler.HandleConnection)

	// ========== Public Campaign Routes ==========
	public := r.Group("/api/v1")
	{
		public.GET("/campaigns/:id", h.CampaignHandler.GetCampaign)
	}

	// ========== Seller Campaign Routes (auth required) ==========
	seller := r.Group("/api/v1")
	seller.Use(h.AuthMiddleware.Auth())
	{
		seller.POST("/campaigns", h.CampaignHandler.CreateCampaign)
		seller.POST("/campaigns/:id/open", h.CampaignHandler.OpenCampaign)
		seller.GET("/sellers/me/campaigns", h.CampaignHandler.ListMyCampaigns)
	}

	// ========== Internal Service Routes ==========
	// Called by the order service inside the cluster; not exposed on the
	// public gateway.
	internal := r.Group("/internal/v1")
	{
		internal.POST("/stock/reserve", h.InventoryHandler.ReserveStock)
		internal.POST("/stock/restore", h.InventoryHandler.RestoreStock)
	}
}
