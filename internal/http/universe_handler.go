package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-feed/internal/service"
)

// UniverseHandler mantiene dependencias para el onboarding de colecciones.
type UniverseHandler struct {
	logger      *zap.Logger
	universeSvc *service.UniverseService
}

func NewUniverseHandler(logger *zap.Logger, universeSvc *service.UniverseService) *UniverseHandler {
	return &UniverseHandler{
		logger:      logger,
		universeSvc: universeSvc,
	}
}

// Onboard maneja POST /internal/universes.
func (h *UniverseHandler) Onboard(c *gin.Context) {
	var req service.UniverseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid universe request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	universe, err := h.universeSvc.Onboard(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("universe onboard failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"universe": universe})
}

// ClearCache maneja DELETE /internal/universes/:contract/cache.
func (h *UniverseHandler) ClearCache(c *gin.Context) {
	if err := h.universeSvc.ClearCache(c.Request.Context(), c.Param("contract")); err != nil {
		h.logger.Error("universe cache clear failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not clear cache"})
		return
	}
	c.Status(http.StatusNoContent)
}
