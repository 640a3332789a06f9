package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/pkg/model"
)

// PutProfile stores the user's profile and returns its risk assessment
func (h *WellnessHandler) PutProfile(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var profile model.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	assessment, err := h.service.SetProfile(c.Request.Context(), userID, profile)
	if err != nil {
		respondError(c, h.logger, err, "Failed to save profile")
		return
	}

	stored, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to save profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"profile":    stored,
		"assessment": assessment,
	})
}

// GetProfile returns the stored profile
func (h *WellnessHandler) GetProfile(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	profile, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetRisk scores the stored profile
func (h *WellnessHandler) GetRisk(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	assessment, err := h.service.Assess(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to assess risk")
		return
	}

	c.JSON(http.StatusOK, assessment)
}

// PostRiskAssess scores the profile in the body without storing it
func (h *WellnessHandler) PostRiskAssess(c *gin.Context) {
	if _, ok := userIDParam(c); !ok {
		return
	}

	var profile model.UserProfile
	if err := c.ShouldBindJSON(&profile); err != nil {
		invalidBody(c, h.logger, err)
		return
	}

	assessment, err := risk.Assess(&profile, h.now())
	if err != nil {
		respondError(c, h.logger, err, "Failed to assess risk")
		return
	}

	h.logger.Debug("stateless risk assessment",
		zap.Int("risk_score", assessment.RiskScore),
		zap.String("risk_level", string(assessment.RiskLevel)),
	)

	c.JSON(http.StatusOK, assessment)
}
