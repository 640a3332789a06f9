// Package api holds the request and response bodies of the HTTP API.
package api

import (
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// Error codes carried in ErrorResponse.Code
const (
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Code    string  `json:"code"`
	Message string  `json:"message"`
	Details *string `json:"details,omitempty"`
}

// AddAnalysisRequest records an analysis produced outside the server
type AddAnalysisRequest struct {
	Checkup model.Checkup        `json:"checkup"`
	Result  model.AnalysisResult `json:"result"`
}

// CountdownResponse is the time left until the next checkup
type CountdownResponse struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// ScheduleResponse describes when the next checkup is due
type ScheduleResponse struct {
	NextAnalysisDate time.Time          `json:"nextAnalysisDate"`
	FrequencyDays    int                `json:"frequencyDays"`
	FrequencyLabel   string             `json:"frequencyLabel"`
	Source           string             `json:"source"`
	TimeUntil        *CountdownResponse `json:"timeUntil,omitempty"`
	ShouldRecommend  bool               `json:"shouldRecommendAnalysis"`
	Streak           int                `json:"streak"`
	ProfileError     *string            `json:"profileError,omitempty"`
}

// HealthResponse reports the state of the server and its dependencies
type HealthResponse struct {
	Status       string            `json:"status"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies,omitempty"`
}
