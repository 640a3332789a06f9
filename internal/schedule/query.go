package schedule

import (
	"strings"
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// Stats summarises a user's analysis history
type Stats struct {
	Total          int        `json:"total"`
	Normal         int        `json:"normal"`
	Warning        int        `json:"warning"`
	Alert          int        `json:"alert"`
	LastDate       *time.Time `json:"lastDate,omitempty"`
	AverageFeeling float64    `json:"averageFeeling"`
	Streak         int        `json:"streak"`
}

// TrendPoint is one analysis in chronological order
type TrendPoint struct {
	Date      time.Time       `json:"date"`
	RiskLevel model.RiskLevel `json:"riskLevel"`
	RiskValue int             `json:"riskValue"`
	Feeling   *int            `json:"feeling,omitempty"`
}

var riskValues = map[model.RiskLevel]int{
	model.RiskLevelNormal:  1,
	model.RiskLevelWarning: 2,
	model.RiskLevelAlert:   3,
}

// ComputeStats counts entries per risk level and averages the reported feeling
func ComputeStats(entries []model.HistoryEntry, now time.Time) Stats {
	s := Stats{Total: len(entries)}

	feelingSum, feelingCount := 0, 0
	for _, e := range entries {
		switch e.Result.RiskLevel {
		case model.RiskLevelNormal:
			s.Normal++
		case model.RiskLevelWarning:
			s.Warning++
		case model.RiskLevelAlert:
			s.Alert++
		}
		if e.GeneralFeeling != nil && e.GeneralFeeling.Scale > 0 {
			feelingSum += e.GeneralFeeling.Scale
			feelingCount++
		}
	}

	if latest := Latest(entries); latest != nil {
		last := latest.Timestamp
		s.LastDate = &last
	}
	if feelingCount > 0 {
		s.AverageFeeling = float64(feelingSum) / float64(feelingCount)
	}
	s.Streak = CalculateStreak(entries, now)
	return s
}

// FilterByRiskLevel keeps the entries whose analysis has the given level. An empty level keeps everything.
func FilterByRiskLevel(entries []model.HistoryEntry, level model.RiskLevel) []model.HistoryEntry {
	if level == "" {
		return entries
	}
	out := []model.HistoryEntry{}
	for _, e := range entries {
		if e.Result.RiskLevel == level {
			out = append(out, e)
		}
	}
	return out
}

// Search keeps entries whose explanation, key findings or recommendations contain term, ignoring case
func Search(entries []model.HistoryEntry, term string) []model.HistoryEntry {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return entries
	}

	out := []model.HistoryEntry{}
	for _, e := range entries {
		if matches(e, term) {
			out = append(out, e)
		}
	}
	return out
}

func matches(e model.HistoryEntry, term string) bool {
	if strings.Contains(strings.ToLower(e.Result.Explanation), term) {
		return true
	}
	for _, f := range e.Result.KeyFindings {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	for _, r := range e.Result.Recommendations {
		if strings.Contains(strings.ToLower(r), term) {
			return true
		}
	}
	return false
}

// Trends returns up to limit of the most recent entries as a chronological series
func Trends(entries []model.HistoryEntry, limit int) []TrendPoint {
	sorted := sortedDesc(entries)
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	points := make([]TrendPoint, 0, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		e := sorted[i]
		p := TrendPoint{
			Date:      e.Timestamp,
			RiskLevel: e.Result.RiskLevel,
			RiskValue: riskValues[e.Result.RiskLevel],
		}
		if e.GeneralFeeling != nil {
			scale := e.GeneralFeeling.Scale
			p.Feeling = &scale
		}
		points = append(points, p)
	}
	return points
}

// Paginate returns the page starting at offset and whether more entries follow it
func Paginate(entries []model.HistoryEntry, offset, size int) ([]model.HistoryEntry, bool) {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(entries) {
		return []model.HistoryEntry{}, false
	}
	if size <= 0 {
		return entries[offset:], false
	}
	end := min(offset+size, len(entries))
	return entries[offset:end], end < len(entries)
}
