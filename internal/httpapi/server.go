package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/daykey"
	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/feed"
	"github.com/hamed0406/drownwatch/internal/httpapi/middleware"
	"github.com/hamed0406/drownwatch/internal/incident"
	"github.com/hamed0406/drownwatch/internal/poller"
	"github.com/hamed0406/drownwatch/internal/repo"
)

type Server struct {
	Logger          *zap.Logger
	Store           repo.FeedbackStore
	Poller          *poller.Poller
	Fetcher         *feed.Fetcher
	FeedURL         string
	DefaultVideoURL string
}

func NewServer(l *zap.Logger, store repo.FeedbackStore, p *poller.Poller, f *feed.Fetcher, feedURL, defaultVideoURL string) *Server {
	return &Server{
		Logger:          l,
		Store:           store,
		Poller:          p,
		Fetcher:         f,
		FeedURL:         feedURL,
		DefaultVideoURL: defaultVideoURL,
	}
}

func (s *Server) Router(keys middleware.Keys, reqPerMin, burst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(middleware.RateLimit(reqPerMin, burst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAny(keys))
		r.Get("/api/series", s.handleSeries)
		r.Get("/api/incidents", s.handleIncidents)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin(keys))
		r.Post("/api/feedback", s.handleFeedback)
	})

	return r
}

type seriesResponse struct {
	Series []domain.DayBucket `json:"series"`
	Reason string             `json:"reason,omitempty"`
}

// handleSeries serves the alerts-per-day chart data. Non-transport outcomes
// (empty feed, no usable rows, no valid dates) are 200s with an empty
// series and a reason the UI turns into its "no data" wording; only a
// transport failure is an error response.
func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.Poller.Latest()
	if !ok || r.URL.Query().Get("refresh") == "1" {
		snap = s.Poller.Refresh(r.Context())
	}

	if snap.Err != nil {
		if domain.IsTransport(snap.Err) {
			s.Logger.Warn("series_feed_unavailable", zap.Error(snap.Err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "feed unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, seriesResponse{Series: []domain.DayBucket{}, Reason: reasonFor(snap.Err)})
		return
	}
	writeJSON(w, http.StatusOK, seriesResponse{Series: snap.Series})
}

// handleIncidents serves the filterable incident list. source=feed reads
// the CSV export; the default reads the feedback store (the dashboard's
// view of confirmed/rejected incidents).
func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	status := q.Get("status")
	if status == "" {
		status = incident.StatusAll
	}
	if status != incident.StatusAll && status != incident.StatusDrowning && status != incident.StatusFalse {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "status must be All, true or false"})
		return
	}
	day := q.Get("date")
	if day != "" && !daykey.Valid(day) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "date must be YYYY-MM-DD"})
		return
	}

	var list []domain.AlertRecord
	if q.Get("source") == "feed" {
		text, err := s.Fetcher.Fetch(r.Context(), s.FeedURL)
		if err != nil && !errors.Is(err, domain.ErrEmptyFeed) {
			s.Logger.Warn("incidents_feed_unavailable", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "feed unavailable"})
			return
		}
		rows, err := feed.Parse(text, feed.ListSchema(), s.Logger)
		if err != nil && !errors.Is(err, domain.ErrNoUsableRows) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "feed unavailable"})
			return
		}
		list = incident.FromFeedRows(rows, s.DefaultVideoURL)
	} else {
		docs, err := s.Store.List(r.Context())
		if err != nil {
			s.Logger.Warn("incidents_store_unavailable", zap.Error(err))
			writeJSON(w, http.StatusBadGateway, map[string]string{"error": "store unavailable"})
			return
		}
		list = incident.FromFeedback(docs)
	}

	filtered := incident.Filter(list, status, day)
	writeJSON(w, http.StatusOK, map[string]any{
		"incidents": filtered,
		"total":     len(filtered),
	})
}

type feedbackPayload struct {
	VideoID    string `json:"video_id"`
	VideoURL   string `json:"video_url"`
	Timestamp  string `json:"timestamp"`
	IsDrowning string `json:"is_drowning"`
}

// handleFeedback appends one confirm/reject record. A write failure is a
// retriable 502 — the client keeps its confirmation dialog open.
func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var p feedbackPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad payload"})
		return
	}
	if p.IsDrowning != domain.DrowningTrue && p.IsDrowning != domain.DrowningFalse {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "is_drowning must be \"true\" or \"false\""})
		return
	}
	if p.VideoURL == "" {
		p.VideoURL = s.DefaultVideoURL
	}

	rec := &domain.FeedbackRecord{
		VideoID:    p.VideoID,
		VideoURL:   p.VideoURL,
		Timestamp:  p.Timestamp,
		IsDrowning: p.IsDrowning,
	}
	if err := s.Store.Append(r.Context(), rec); err != nil {
		s.Logger.Warn("feedback_write_failed", zap.Error(err))
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error":     "feedback write failed",
			"retriable": true,
		})
		return
	}

	s.Logger.Info("feedback_saved",
		zap.String("video_id", rec.VideoID),
		zap.String("is_drowning", rec.IsDrowning),
	)
	writeJSON(w, http.StatusCreated, rec)
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyFeed):
		return "empty_feed"
	case errors.Is(err, domain.ErrNoUsableRows):
		return "no_usable_rows"
	case errors.Is(err, domain.ErrNoValidDates):
		return "no_valid_dates"
	default:
		return "unknown"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
