package schedule

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/ayni-health/backend/pkg/model"
)

// Property: history is capped and newest-first no matter how many appends happen
func TestProperty_AppendKeepsCapAndOrder(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("length is min(n, limit) and entries are newest first", prop.ForAll(
		func(n, limit int) bool {
			var history []model.HistoryEntry
			for i := 0; i < n; i++ {
				e := entryAt(fmt.Sprint(i), now.Add(time.Duration(i)*time.Minute), model.RiskLevelNormal, nil)
				history = Append(history, e, limit)
			}

			if len(history) != min(n, limit) {
				t.Logf("expected %d entries, got %d", min(n, limit), len(history))
				return false
			}
			for i := 1; i < len(history); i++ {
				if !history[i-1].Timestamp.After(history[i].Timestamp) {
					return false
				}
			}
			return n == 0 || history[0].ID == fmt.Sprint(n-1)
		},
		gen.IntRange(0, 120),
		gen.IntRange(1, 60),
	))

	properties.TestingRun(t)
}

// Property: a streak never exceeds the number of entries and daily checkups count fully
func TestProperty_StreakBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("consecutive daily entries form a full streak", prop.ForAll(
		func(days int) bool {
			var entries []model.HistoryEntry
			for i := 0; i < days; i++ {
				entries = append(entries, entryAt(fmt.Sprint(i), now.AddDate(0, 0, -i), model.RiskLevelNormal, nil))
			}
			return CalculateStreak(entries, now) == days
		},
		gen.IntRange(0, 60),
	))

	properties.Property("streak is bounded by entry count", prop.ForAll(
		func(offsets []int) bool {
			var entries []model.HistoryEntry
			for i, off := range offsets {
				entries = append(entries, entryAt(fmt.Sprint(i), now.AddDate(0, 0, -off), model.RiskLevelNormal, nil))
			}
			s := CalculateStreak(entries, now)
			return s >= 0 && s <= len(entries)
		},
		gen.SliceOf(gen.IntRange(-2, 30)),
	))

	properties.TestingRun(t)
}
