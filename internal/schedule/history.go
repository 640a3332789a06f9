package schedule

import (
	"sort"
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// DefaultHistoryLimit is the maximum number of entries kept per user
const DefaultHistoryLimit = 50

// NewEntry snapshots a checkup together with its analysis
func NewEntry(id string, checkup model.Checkup, result model.AnalysisResult, now time.Time) model.HistoryEntry {
	feeling := checkup.GeneralFeeling
	feeling.Tags = append([]string(nil), checkup.GeneralFeeling.Tags...)
	vitals := checkup.Vitals

	entry := model.HistoryEntry{
		ID:             id,
		Timestamp:      now,
		Result:         result,
		GeneralFeeling: &feeling,
		HasSymptoms:    checkup.HasSymptoms,
		Vitals:         &vitals,
	}
	if checkup.HasSymptoms && len(checkup.Symptoms) > 0 {
		entry.Symptoms = append([]model.Symptom(nil), checkup.Symptoms...)
	}
	return entry
}

// Append puts entry at the front of history and keeps the limit most recent entries.
// The input slice is not modified.
func Append(history []model.HistoryEntry, entry model.HistoryEntry, limit int) []model.HistoryEntry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	size := min(len(history)+1, limit)
	out := make([]model.HistoryEntry, 0, size)
	out = append(out, entry)
	for _, e := range history {
		if len(out) == size {
			break
		}
		out = append(out, e)
	}
	return out
}

// Normalize returns a copy sorted newest first and truncated to limit.
// It is applied to histories read back from storage.
func Normalize(history []model.HistoryEntry, limit int) []model.HistoryEntry {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	out := sortedDesc(history)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedDesc(entries []model.HistoryEntry) []model.HistoryEntry {
	out := append([]model.HistoryEntry(nil), entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out
}
