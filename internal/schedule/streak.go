package schedule

import (
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// CalculateStreak counts the entries that form an unbroken run of calendar days ending today or yesterday.
// Several entries on the same day all count. A gap of more than one day, or an entry dated after
// the current cursor day, ends the run.
func CalculateStreak(entries []model.HistoryEntry, now time.Time) int {
	if len(entries) == 0 {
		return 0
	}

	loc := now.Location()
	cursor := dayOf(now, loc)
	streak := 0

	for _, e := range sortedDesc(entries) {
		day := dayOf(e.Timestamp, loc)
		diff := daysBetween(day, cursor)
		if diff < 0 || diff > 1 {
			break
		}
		streak++
		cursor = day
	}
	return streak
}

// dayOf truncates t to midnight of its calendar day in loc
func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// daysBetween counts calendar days from a to b, ignoring DST shifts
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua) / (24 * time.Hour))
}
