package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/ayni-health/backend/internal/audit"
	"github.com/ayni-health/backend/internal/pdf"
	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/internal/schedule"
	"github.com/ayni-health/backend/pkg/model"
)

// HistoryQuery filters and pages the history listing
type HistoryQuery struct {
	RiskLevel model.RiskLevel
	Search    string
	Offset    int
	Limit     int
}

// HistoryPage is one page of history, newest first
type HistoryPage struct {
	Entries []model.HistoryEntry `json:"entries"`
	Total   int                  `json:"total"`
	HasMore bool                 `json:"hasMore"`
}

// History returns the user's entries matching q
func (s *WellnessService) History(ctx context.Context, userID string, q HistoryQuery) (*HistoryPage, error) {
	if q.RiskLevel != "" && !q.RiskLevel.Valid() {
		return nil, &model.ValidationError{Field: "riskLevel", Reason: "must be normal, warning or alert"}
	}
	if q.Offset < 0 {
		return nil, &model.ValidationError{Field: "offset", Reason: "must not be negative"}
	}

	_, entries := s.snapshot(ctx, userID)
	if q.RiskLevel != "" {
		entries = schedule.FilterByRiskLevel(entries, q.RiskLevel)
	}
	if strings.TrimSpace(q.Search) != "" {
		entries = schedule.Search(entries, q.Search)
	}

	page, more := schedule.Paginate(entries, q.Offset, q.Limit)
	return &HistoryPage{
		Entries: append([]model.HistoryEntry{}, page...),
		Total:   len(entries),
		HasMore: more,
	}, nil
}

// Schedule returns the current checkup plan of the user
func (s *WellnessService) Schedule(ctx context.Context, userID string) schedule.Plan {
	profile, history := s.snapshot(ctx, userID)
	return schedule.Build(history, profile, s.now())
}

// WatchSchedule streams a recomputed plan on every schedule tick until ctx is done
func (s *WellnessService) WatchSchedule(ctx context.Context, userID string) <-chan schedule.Plan {
	return schedule.Watch(ctx, s.cfg.ScheduleTick, func() schedule.Plan {
		return s.Schedule(ctx, userID)
	})
}

// Stats summarises the user's history
func (s *WellnessService) Stats(ctx context.Context, userID string) schedule.Stats {
	_, history := s.snapshot(ctx, userID)
	return schedule.ComputeStats(history, s.now())
}

// Trends returns up to limit of the latest analyses in chronological order
func (s *WellnessService) Trends(ctx context.Context, userID string, limit int) []schedule.TrendPoint {
	_, history := s.snapshot(ctx, userID)
	return schedule.Trends(history, limit)
}

// ExportCSV writes the user's history as CSV to w
func (s *WellnessService) ExportCSV(ctx context.Context, userID string, w io.Writer) error {
	_, history := s.snapshot(ctx, userID)

	if err := schedule.WriteCSV(w, history); err != nil {
		s.logger.Error("failed to export history", zap.String("user_id", userID), zap.Error(err))
		return fmt.Errorf("failed to export history: %w", err)
	}

	s.record(ctx, audit.AuditLog{
		UserID:         userID,
		OperationType:  audit.OperationExport,
		ResourceType:   audit.ResourceHistory,
		AdditionalData: map[string]interface{}{"format": "csv", "entries": len(history)},
	})
	return nil
}

// Report renders the PDF report of the user and archives a copy when an archive is configured
func (s *WellnessService) Report(ctx context.Context, userID string) ([]byte, error) {
	profile, history := s.snapshot(ctx, userID)
	now := s.now()

	data := &pdf.ReportData{
		GeneratedAt: now,
		Plan:        schedule.Build(history, profile, now),
		Stats:       schedule.ComputeStats(history, now),
		Entries:     history,
	}
	if profile != nil {
		data.UserName = profile.Name
		if assessment, err := risk.Assess(profile, now); err == nil {
			data.Assessment = assessment
		}
	}

	report, err := s.reports.Generate(data)
	if err != nil {
		s.logger.Error("failed to generate report", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	if s.archive != nil {
		name := fmt.Sprintf("reports/%s/%s.pdf", userID, now.UTC().Format("20060102T150405Z"))
		if err := s.archive.Upload(ctx, name, report, "application/pdf"); err != nil {
			s.logger.Warn("failed to archive report", zap.String("blob_name", name), zap.Error(err))
		}
	}

	s.record(ctx, audit.AuditLog{
		UserID:         userID,
		OperationType:  audit.OperationExport,
		ResourceType:   audit.ResourceReport,
		AdditionalData: map[string]interface{}{"format": "pdf"},
	})
	return report, nil
}
