package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/service"
	"github.com/ayni-health/backend/pkg/model"
)

const defaultTrendLimit = 10

// GetHistory lists history entries, newest first.
// Query parameters: risk_level, q, offset, limit.
func (h *WellnessHandler) GetHistory(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get history")
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get history")
		return
	}

	page, err := h.service.History(c.Request.Context(), userID, service.HistoryQuery{
		RiskLevel: model.RiskLevel(c.Query("risk_level")),
		Search:    c.Query("q"),
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		respondError(c, h.logger, err, "Failed to get history")
		return
	}

	c.JSON(http.StatusOK, page)
}

// DeleteHistory clears the user's history
func (h *WellnessHandler) DeleteHistory(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	if err := h.service.ClearHistory(c.Request.Context(), userID); err != nil {
		respondError(c, h.logger, err, "Failed to clear history")
		return
	}

	c.Status(http.StatusNoContent)
}

// GetHistoryStats summarises the user's history
func (h *WellnessHandler) GetHistoryStats(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, h.service.Stats(c.Request.Context(), userID))
}

// GetHistoryTrends returns the latest analyses in chronological order
func (h *WellnessHandler) GetHistoryTrends(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	limit, err := queryInt(c, "limit", defaultTrendLimit)
	if err != nil {
		respondError(c, h.logger, err, "Failed to get trends")
		return
	}
	if limit < 1 {
		respondError(c, h.logger, &model.ValidationError{Field: "limit", Reason: "must be at least 1"}, "Failed to get trends")
		return
	}

	c.JSON(http.StatusOK, h.service.Trends(c.Request.Context(), userID, limit))
}

// GetHistoryCSV downloads the history as CSV
func (h *WellnessHandler) GetHistoryCSV(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.ExportCSV(c.Request.Context(), userID, &buf); err != nil {
		respondError(c, h.logger, err, "Failed to export history")
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="checkup-history-%s.csv"`, h.now().Format("2006-01-02")))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// GetHistoryReport downloads the PDF report
func (h *WellnessHandler) GetHistoryReport(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}

	report, err := h.service.Report(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err, "Failed to generate report")
		return
	}

	h.logger.Info("report generated",
		zap.String("user_id", userID),
		zap.Int("size_bytes", len(report)),
	)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="checkup-report-%s.pdf"`, h.now().Format("2006-01-02")))
	c.Data(http.StatusOK, "application/pdf", report)
}
