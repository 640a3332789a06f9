package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetSchedule returns when the next checkup is due
func (h *WellnessHandler) GetSchedule(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, toScheduleResponse(h.service.Schedule(c.Request.Context(), userID)))
}

// GetScheduleStream pushes a "schedule" server-sent event on every tick until the client leaves
func (h *WellnessHandler) GetScheduleStream(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	sent := 0
	for plan := range h.service.WatchSchedule(c.Request.Context(), userID) {
		c.SSEvent("schedule", toScheduleResponse(plan))
		c.Writer.Flush()
		sent++
	}

	h.logger.Debug("schedule stream closed",
		zap.String("user_id", userID),
		zap.Int("events", sent),
	)
}
