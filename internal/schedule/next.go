// Package schedule computes when the next checkup is due from the analysis history
// and the user profile, and derives history statistics such as the checkup streak.
package schedule

import (
	"time"

	"github.com/ayni-health/backend/internal/risk"
	"github.com/ayni-health/backend/pkg/model"
)

// DefaultFrequencyDays is used when neither the history nor the profile yields an interval
const DefaultFrequencyDays = 7

// Source tells which input decided the next analysis date
type Source string

const (
	SourceHistory Source = "history"
	SourceProfile Source = "profile"
	SourceDefault Source = "default"
)

// Countdown is the time left until the next checkup, floor-divided into units
type Countdown struct {
	Days    int `json:"days"`
	Hours   int `json:"hours"`
	Minutes int `json:"minutes"`
}

// Latest returns the entry with the greatest timestamp, or nil for an empty history
func Latest(history []model.HistoryEntry) *model.HistoryEntry {
	var latest *model.HistoryEntry
	for i := range history {
		if latest == nil || history[i].Timestamp.After(latest.Timestamp) {
			latest = &history[i]
		}
	}
	return latest
}

// NextAnalysisDate picks the next checkup date.
// A stored analysis wins over the profile, and the profile wins over the default.
// When the profile is invalid the default date is returned together with the validation error.
func NextAnalysisDate(history []model.HistoryEntry, profile *model.UserProfile, now time.Time) (time.Time, Source, error) {
	next, _, source, err := nextAnalysis(history, profile, now)
	return next, source, err
}

func nextAnalysis(history []model.HistoryEntry, profile *model.UserProfile, now time.Time) (time.Time, int, Source, error) {
	if latest := Latest(history); latest != nil {
		days := DefaultFrequencyDays
		if f := latest.Result.RecommendedFrequencyDays; f != nil && *f >= 1 {
			days = *f
		}
		return latest.Timestamp.AddDate(0, 0, days), days, SourceHistory, nil
	}

	if profile != nil {
		assessment, err := risk.Assess(profile, now)
		if err != nil {
			return now.AddDate(0, 0, DefaultFrequencyDays), DefaultFrequencyDays, SourceDefault, err
		}
		days := assessment.RecommendedAnalysisFrequency
		return now.AddDate(0, 0, days), days, SourceProfile, nil
	}

	return now.AddDate(0, 0, DefaultFrequencyDays), DefaultFrequencyDays, SourceDefault, nil
}

// TimeUntil returns the remaining time until next. The boolean is false once next has been reached.
func TimeUntil(next, now time.Time) (Countdown, bool) {
	diff := next.Sub(now)
	if diff <= 0 {
		return Countdown{}, false
	}

	days := int(diff / (24 * time.Hour))
	diff -= time.Duration(days) * 24 * time.Hour
	hours := int(diff / time.Hour)
	diff -= time.Duration(hours) * time.Hour
	minutes := int(diff / time.Minute)

	return Countdown{Days: days, Hours: hours, Minutes: minutes}, true
}

// ShouldRecommendAnalysis reports whether the checkup is due
func ShouldRecommendAnalysis(next, now time.Time) bool {
	return !now.Before(next)
}
