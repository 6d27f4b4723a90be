package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"store-bot.backend/internal/interfaces/http/handlers"
	"store-bot.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	webhookHandler *handlers.WebhookHandler
	webhookSecret  string
	metricsReg     *prometheus.Registry
}

func registerRoutes(r *gin.Engine, d routeDeps) {
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.metricsReg, promhttp.HandlerOpts{})))

	r.POST("/webhook/telegram",
		middleware.WebhookAuthMiddleware(d.webhookSecret),
		d.webhookHandler.Handle,
	)
}
