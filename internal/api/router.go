package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"machine-maintenance-backend/config"
	"machine-maintenance-backend/internal/auth"
	"machine-maintenance-backend/internal/intake"
	"machine-maintenance-backend/internal/mw"
	"machine-maintenance-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, gateway *intake.Gateway, authSvc *auth.Service, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(s, gateway, authSvc, cfg)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), cfg.Server.RateLimitBurst)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	// PIN attempts are throttled per asset tag and client IP, independently
	// of the general API limit.
	pinLimiter := mw.NewKeyedLimiter(rate.Limit(cfg.QR.AttemptsPerMinute/60), cfg.QR.AttemptBurst)
	pinKey := func(c *gin.Context) string {
		return c.Param("assetTag") + "|" + c.ClientIP()
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/login", handler.Login)
		api.POST("/logout", handler.Logout)

		// Intake surfaces used by the console index and the QR form.
		api.GET("/machines", handler.ListMachines)
		api.GET("/problems", handler.GetProblems)
		api.POST("/tickets", handler.CreateTicket)

		admin := api.Group("", handler.RequireAdmin)
		{
			admin.POST("/machines", handler.CreateMachine)
			admin.PUT("/machines/:id", handler.UpdateMachine)
			admin.GET("/sectors", handler.GetSectors)
			admin.GET("/tickets", handler.ListTickets)
			admin.POST("/tickets/:id/status", handler.UpdateTicketStatus)
			admin.GET("/stats", caching, handler.GetStats)
			admin.GET("/qrcodes", handler.GetQRCodes)
		}
	}

	export := r.Group("/export", handler.RequireAdmin)
	{
		export.GET("/machines.csv", handler.ExportMachinesCSV)
		export.GET("/tickets.csv", handler.ExportTicketsCSV)
	}

	qrForm := r.Group("/qr")
	{
		qrForm.GET("/:assetTag", handler.GetQRForm)
		qrForm.POST("/:assetTag", mw.RateLimitByKey(pinLimiter, pinKey), handler.PostQRForm)
	}

	r.POST("/admin/reset-machines", handler.RequireAdmin, handler.ResetMachines)

	return r
}
