package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

func (h HandlerSet) Home(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", gin.H{
		"Title": "Hospital Management System",
	})
}

func (h HandlerSet) Unauthorized(c *gin.Context) {
	h.render(c, http.StatusForbidden, "unauthorized.html", gin.H{
		"Title": "Access Denied",
	})
}

func (h HandlerSet) NotFound(c *gin.Context) {
	h.render(c, http.StatusNotFound, "not_found.html", gin.H{
		"Title": "404 - Page Not Found",
	})
}

type healthResponse struct {
	Status      string `json:"status"`
	Cache       string `json:"cache"`
	Environment string `json:"environment"`
}

func (h HandlerSet) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	cacheStatus := "ok"
	if err := h.cache.Ping(ctx).Err(); err != nil {
		cacheStatus = "error"
		h.log.Error().Err(err).Msg("redis ping failed")
	}

	c.JSON(http.StatusOK, healthResponse{
		Status:      "ok",
		Cache:       cacheStatus,
		Environment: h.cfg.Environment,
	})
}
