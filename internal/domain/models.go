package domain

import "time"

// Tri-state drowning classification. The feed and the feedback store both
// carry it as a string, so we keep it as one instead of a bool pointer.
const (
	DrowningTrue    = "true"
	DrowningFalse   = "false"
	DrowningPending = ""
)

// UnknownVideoID is stored when an alert arrives without a video_id.
const UnknownVideoID = "unknown"

// AlertRecord is one drowning-detection event, built from a CSV feed row or
// a feedback document.
type AlertRecord struct {
	Timestamp  string `json:"timestamp"`
	DayKey     string `json:"day_key,omitempty"`
	VideoID    string `json:"video_id"`
	VideoURL   string `json:"video_url"`
	IsDrowning string `json:"is_drowning"`
	FrameID    string `json:"frame_id,omitempty"`
}

// DayBucket is one bar of the alerts-per-day chart. Label is the MM-DD
// suffix of Day, used for the X axis.
type DayBucket struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
	Label string `json:"label"`
}

// FeedbackRecord is written when a user confirms or rejects an incident.
// Append-only; CreatedAt is assigned by the store.
type FeedbackRecord struct {
	ID         string    `json:"id"`
	VideoID    string    `json:"video_id"`
	VideoURL   string    `json:"video_url"`
	Timestamp  string    `json:"timestamp"`
	IsDrowning string    `json:"is_drowning"`
	CreatedAt  time.Time `json:"created_at"`
}

// NotificationIntent is the navigation payload extracted from a push
// message. Transient: produced per message, consumed by one navigation
// action, never persisted.
type NotificationIntent struct {
	VideoURL  string
	VideoID   string
	Timestamp string
}
