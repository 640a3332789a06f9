package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/service"
)

// WellnessHandler implements the per-user profile, checkup, history and schedule endpoints
type WellnessHandler struct {
	service *service.WellnessService
	logger  *zap.Logger
	now     func() time.Time
}

// NewWellnessHandler creates a new WellnessHandler
func NewWellnessHandler(service *service.WellnessService, logger *zap.Logger) *WellnessHandler {
	return &WellnessHandler{
		service: service,
		logger:  logger,
		now:     time.Now,
	}
}

// RegisterRoutes mounts every endpoint on r
func RegisterRoutes(r gin.IRouter, wellness *WellnessHandler, health *HealthHandler) {
	r.GET("/health", health.GetHealth)

	users := r.Group("/api/v1/users/:userId")
	{
		users.PUT("/profile", wellness.PutProfile)
		users.GET("/profile", wellness.GetProfile)
		users.GET("/risk", wellness.GetRisk)
		users.POST("/risk/assess", wellness.PostRiskAssess)

		users.POST("/checkups", wellness.PostCheckup)
		users.POST("/analyses", wellness.PostAnalysis)

		users.GET("/history", wellness.GetHistory)
		users.DELETE("/history", wellness.DeleteHistory)
		users.GET("/history/stats", wellness.GetHistoryStats)
		users.GET("/history/trends", wellness.GetHistoryTrends)
		users.GET("/history/export.csv", wellness.GetHistoryCSV)
		users.GET("/history/report.pdf", wellness.GetHistoryReport)

		users.GET("/schedule", wellness.GetSchedule)
		users.GET("/schedule/stream", wellness.GetScheduleStream)
	}
}
