package schedule

import (
	"context"
	"time"

	"github.com/ayni-health/backend/pkg/model"
)

// Plan is the scheduling view shown to the user
type Plan struct {
	NextDue       time.Time  `json:"nextDue"`
	FrequencyDays int        `json:"frequencyDays"`
	Source        Source     `json:"source"`
	Remaining     *Countdown `json:"remaining,omitempty"`
	Due           bool       `json:"due"`
	Streak        int        `json:"streak"`
	ProfileError  string     `json:"profileError,omitempty"`
}

// Build computes the full plan as of now
func Build(history []model.HistoryEntry, profile *model.UserProfile, now time.Time) Plan {
	next, days, source, err := nextAnalysis(history, profile, now)

	plan := Plan{
		NextDue:       next,
		FrequencyDays: days,
		Source:        source,
		Due:           ShouldRecommendAnalysis(next, now),
		Streak:        CalculateStreak(history, now),
	}
	if err != nil {
		plan.ProfileError = err.Error()
	}
	if remaining, ok := TimeUntil(next, now); ok {
		plan.Remaining = &remaining
	}
	return plan
}

// Watch emits a freshly computed plan right away and then once per interval.
// The channel is closed when ctx is done.
func Watch(ctx context.Context, interval time.Duration, compute func() Plan) <-chan Plan {
	if interval <= 0 {
		interval = time.Minute
	}
	out := make(chan Plan, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case out <- compute():
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
