// Package incident builds and filters the in-memory incident list shown on
// the dashboard.
package incident

import (
	"strconv"

	"github.com/hamed0406/drownwatch/internal/daykey"
	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/feed"
)

// Status filter values. StatusAll passes everything; the other two compare
// the tri-state is_drowning field by exact string equality.
const (
	StatusAll      = "All"
	StatusDrowning = domain.DrowningTrue
	StatusFalse    = domain.DrowningFalse
)

// Filter returns the subsequence of list matching both predicates (AND).
// status one of StatusAll/StatusDrowning/StatusFalse; day an exact canonical
// day key or "" for no date filter. Pure and re-entrant: callers re-invoke
// it whenever a predicate or the base list changes.
func Filter(list []domain.AlertRecord, status, day string) []domain.AlertRecord {
	if status == StatusAll && day == "" {
		return list
	}
	out := make([]domain.AlertRecord, 0, len(list))
	for _, rec := range list {
		if status != StatusAll && rec.IsDrowning != status {
			continue
		}
		if day != "" && rec.DayKey != day {
			continue
		}
		out = append(out, rec)
	}
	return out
}

// FromFeedRows builds the list view from parsed feed rows. defaultVideoURL
// backs playback for rows that somehow lost their locator after validation.
func FromFeedRows(rows []feed.Row, defaultVideoURL string) []domain.AlertRecord {
	out := make([]domain.AlertRecord, 0, len(rows))
	for _, row := range rows {
		ts := row.Lookup(feed.TimestampKeys...)
		day, _ := daykey.Normalize(ts)
		rec := domain.AlertRecord{
			Timestamp:  ts,
			DayKey:     day,
			VideoID:    row.String("video_id"),
			VideoURL:   row.String("video_url"),
			IsDrowning: row.String("is_drowning"),
		}
		if rec.VideoID == "" {
			rec.VideoID = domain.UnknownVideoID
		}
		if rec.VideoURL == "" {
			rec.VideoURL = defaultVideoURL
		}
		if v, ok := row["frame_id"].(int64); ok {
			rec.FrameID = strconv.FormatInt(v, 10)
		}
		out = append(out, rec)
	}
	return out
}

// FromFeedback builds the list view from stored feedback documents. The
// store returns them newest-first already; order is preserved.
func FromFeedback(docs []domain.FeedbackRecord) []domain.AlertRecord {
	out := make([]domain.AlertRecord, 0, len(docs))
	for _, d := range docs {
		day, _ := daykey.Normalize(d.Timestamp)
		out = append(out, domain.AlertRecord{
			Timestamp:  d.Timestamp,
			DayKey:     day,
			VideoID:    d.VideoID,
			VideoURL:   d.VideoURL,
			IsDrowning: d.IsDrowning,
		})
	}
	return out
}
