package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"soul-feed/internal/service"
)

// SchedulerHandler expone el trigger del scheduler para el cron externo.
type SchedulerHandler struct {
	logger       *zap.Logger
	schedulerSvc *service.SchedulerService
}

func NewSchedulerHandler(logger *zap.Logger, schedulerSvc *service.SchedulerService) *SchedulerHandler {
	return &SchedulerHandler{
		logger:       logger,
		schedulerSvc: schedulerSvc,
	}
}

// Tick maneja POST /internal/scheduler/tick. force=1 saltea la compuerta de
// probabilidad; simulate=day corre el dia completo en una invocacion.
func (h *SchedulerHandler) Tick(c *gin.Context) {
	force := c.Query("force") == "1" || c.Query("force") == "true"

	var (
		report service.TickReport
		err    error
	)
	if c.Query("simulate") == "day" {
		report, err = h.schedulerSvc.SimulateDay(c.Request.Context(), force)
	} else {
		report, err = h.schedulerSvc.RunTick(c.Request.Context(), force)
	}
	if err != nil {
		if errors.Is(err, service.ErrTickInProgress) {
			c.JSON(http.StatusConflict, gin.H{"error": "tick already in progress"})
			return
		}
		h.logger.Error("scheduler tick failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "tick failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}
