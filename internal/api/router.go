package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"netops-backend/config"
	"netops-backend/internal/mw"
	"netops-backend/internal/store"
)

// NewRouter wires the HTTP surface.
func NewRouter(cfg *config.Config, s store.Store, refresher Refresher, webpushOptions *webpush.Options, log *zap.Logger) *gin.Engine {
	h := NewHandler(s, refresher, webpushOptions)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(mw.RequestLogger(log))

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	countsCache := cache.New(cacheTTL, 2*cacheTTL)

	api := r.Group("/api")
	api.Use(mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst))

	api.GET("/vapid_public_key", h.GetVAPIDPublicKey)

	network := api.Group("/network")
	network.Use(mw.AuthRequired(cfg.Auth.JWTSecret))
	network.Use(mw.RequireRoles(mw.RoleAdmin, mw.RoleTechnician))
	{
		network.GET("/pops", h.GetPOPs)
		network.POST("/pops", h.CreatePOP)
		network.PUT("/pops/:id", h.UpdatePOP)
		network.DELETE("/pops/:id", h.DeletePOP)

		network.GET("/aps", h.GetAPs)
		network.POST("/aps", h.CreateAP)
		network.PUT("/aps/:id", h.UpdateAP)
		network.DELETE("/aps/:id", h.DeleteAP)

		network.GET("/stations", h.GetStations)
		network.POST("/stations", h.CreateStation)
		network.PUT("/stations/:id", h.UpdateStation)
		network.DELETE("/stations/:id", h.DeleteStation)

		network.GET("/backbones", h.GetBackbones)
		network.POST("/backbones", h.CreateBackbone)
		network.PUT("/backbones/:id", h.UpdateBackbone)
		network.DELETE("/backbones/:id", h.DeleteBackbone)

		network.POST("/refresh", h.TriggerRefresh)
	}

	// Role checks live in the handlers here; the payload shapes differ
	// from the network group.
	inventory := api.Group("/inventory")
	inventory.Use(mw.AuthRequired(cfg.Auth.JWTSecret))
	{
		inventory.POST("", h.CreateInventory)
		inventory.GET("", h.GetInventory)
		inventory.GET("/counts", mw.Cache(countsCache, cacheTTL), h.GetInventoryCounts)
		inventory.GET("/:id", h.GetInventoryByID)
		inventory.PUT("/:id", h.UpdateInventory)
		inventory.DELETE("/:id", h.DeleteInventory)
	}

	subscriptions := api.Group("/subscriptions")
	subscriptions.Use(mw.AuthRequired(cfg.Auth.JWTSecret))
	{
		subscriptions.PUT("", h.UpsertSubscription)
		subscriptions.GET("", h.GetSubscription)
		subscriptions.DELETE("", h.DeleteSubscription)
	}

	return r
}
