// Package main provides the course assistant server entry point.
package main

import (
	"net/http"

	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/cache"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/catalog"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/config"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/session"
	"github.com/Sayansh2004/IAA-WhatsappChatbot-SC/internal/webhook"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// routeState exposes the live components the probe endpoints report on.
type routeState struct {
	catalogLen func() int
	sessions   *session.Store
	dirCache   *cache.Cache
	course     *cache.Cache
}

// setupRoutes configures all HTTP routes
func setupRoutes(router *gin.Engine, webhookHandler *webhook.Handler, registry *prometheus.Registry, cfg *config.Config, state routeState) {
	// Root endpoint - redirect to the project page
	rootHandler := func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "https://github.com/Sayansh2004/IAA-WhatsappChatbot-SC")
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - only checks that the process is serving
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - the catalog is the only hard dependency; everything
	// else degrades gracefully
	readyHandler := func(c *gin.Context) {
		records := state.catalogLen()
		if records == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "course catalog is empty",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":  "ready",
			"catalog": records,
			"domains": catalog.DomainCount,
			"cache": gin.H{
				"directory": state.dirCache.Len(),
				"course":    state.course.Len(),
			},
			"sessions": state.sessions.Len(),
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	// WhatsApp Cloud API webhook endpoints
	router.GET("/webhook", webhookHandler.HandleVerify)
	router.POST("/webhook", webhookHandler.Handle)

	// Prometheus metrics endpoint, behind Basic Auth when a password is set
	router.GET("/metrics",
		metricsAuthMiddleware(cfg.MetricsPassword != "", cfg.MetricsUsername, cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
}
