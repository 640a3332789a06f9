package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/internal/schedule"
	"github.com/ayni-health/backend/internal/service"
	"github.com/ayni-health/backend/pkg/api"
	"github.com/ayni-health/backend/pkg/model"
)

// stringPtr creates a pointer to a string
func stringPtr(s string) *string {
	return &s
}

// userIDParam reads the userId path parameter, answering 400 when it is blank
func userIDParam(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    api.CodeValidationError,
			Message: "userId is required",
		})
		return "", false
	}
	return userID, true
}

// queryInt parses an optional integer query parameter
func queryInt(c *gin.Context, name string, def int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &model.ValidationError{Field: name, Reason: "must be an integer"}
	}
	return v, nil
}

// invalidBody answers a JSON binding failure
func invalidBody(c *gin.Context, logger *zap.Logger, err error) {
	logger.Warn("invalid request body", zap.Error(err), zap.String("path", c.FullPath()))
	c.JSON(http.StatusBadRequest, api.ErrorResponse{
		Code:    api.CodeValidationError,
		Message: "Invalid request body",
		Details: stringPtr(err.Error()),
	})
}

// respondError maps service errors onto the error body.
// Validation errors become 400, a missing profile 404 and everything else 500.
func respondError(c *gin.Context, logger *zap.Logger, err error, message string) {
	var vErr *model.ValidationError
	switch {
	case errors.As(err, &vErr):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Code:    api.CodeValidationError,
			Message: err.Error(),
			Details: stringPtr(vErr.Field),
		})
	case errors.Is(err, service.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{
			Code:    api.CodeNotFound,
			Message: "Profile not found",
		})
	default:
		logger.Error(strings.ToLower(message),
			zap.Error(err),
			zap.String("user_id", c.Param("userId")),
		)
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{
			Code:    api.CodeInternalError,
			Message: message,
			Details: stringPtr(err.Error()),
		})
	}
}

// toScheduleResponse converts a plan into its API shape
func toScheduleResponse(plan schedule.Plan) api.ScheduleResponse {
	resp := api.ScheduleResponse{
		NextAnalysisDate: plan.NextDue,
		FrequencyDays:    plan.FrequencyDays,
		FrequencyLabel:   risk.FrequencyLabel(plan.FrequencyDays),
		Source:           string(plan.Source),
		ShouldRecommend:  plan.Due,
		Streak:           plan.Streak,
	}
	if plan.Remaining != nil {
		resp.TimeUntil = &api.CountdownResponse{
			Days:    plan.Remaining.Days,
			Hours:   plan.Remaining.Hours,
			Minutes: plan.Remaining.Minutes,
		}
	}
	if plan.ProfileError != "" {
		resp.ProfileError = stringPtr(plan.ProfileError)
	}
	return resp
}
