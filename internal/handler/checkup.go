package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/pkg/api"
	"github.com/ayni-health/backend/pkg/model"
)

// PostCheckup analyses a checkup and records it in the history
func (h *WellnessHandler) PostCheckup(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var checkup model.Checkup
	if err := c.ShouldBindJSON(&checkup); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	entry, err := h.service.SubmitCheckup(c.Request.Context(), userID, checkup)
	if err != nil {
		respondError(c, h.logger, err, "Failed to submit checkup")
		return
	}

	h.logger.Info("checkup recorded",
		zap.String("user_id", userID),
		zap.String("entry_id", entry.ID),
		zap.String("risk_level", string(entry.Result.RiskLevel)),
	)

	c.JSON(http.StatusCreated, entry)
}

// PostAnalysis records an analysis produced outside the server
func (h *WellnessHandler) PostAnalysis(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var req api.AddAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	entry, err := h.service.AddAnalysis(c.Request.Context(), userID, req.Checkup, req.Result)
	if err != nil {
		respondError(c, h.logger, err, "Failed to add analysis")
		return
	}

	c.JSON(http.StatusCreated, entry)
}
