// Package aggregate turns parsed feed rows into the alerts-per-day series
// backing the dashboard chart.
package aggregate

import (
	"sort"

	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/daykey"
	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/feed"
)

// Series groups rows by canonical day key and counts them.
//
// Rows without a normalizable timestamp are skipped (logged, never fatal).
// An empty rows slice yields an empty series and no error — zero alerts is
// a fine answer. Rows present but none with a parseable date yields
// domain.ErrNoValidDates so the UI can say "bad data" instead of "no data".
// The result is sorted ascending by day; lexicographic order is
// chronological for YYYY-MM-DD. Day boundaries follow the literal date
// substring — the export already writes its canonical zone, so no timezone
// math here.
func Series(rows []feed.Row, log *zap.Logger) ([]domain.DayBucket, error) {
	if len(rows) == 0 {
		return []domain.DayBucket{}, nil
	}

	counts := make(map[string]int)
	skipped := 0
	for _, row := range rows {
		ts := row.Lookup(feed.TimestampKeys...)
		day, ok := daykey.Normalize(ts)
		if !ok {
			skipped++
			continue
		}
		counts[day]++
	}
	if skipped > 0 {
		log.Warn("aggregate_rows_skipped", zap.Int("skipped", skipped))
	}
	if len(counts) == 0 {
		return nil, domain.ErrNoValidDates
	}

	out := make([]domain.DayBucket, 0, len(counts))
	for day, n := range counts {
		out = append(out, domain.DayBucket{Day: day, Count: n, Label: day[5:]})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Day < out[j].Day })
	return out, nil
}
