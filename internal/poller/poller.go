// Package poller keeps the alerts-per-day series warm by refetching the
// feed on an interval, so the dashboard chart does not pay a remote fetch
// on every view.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/aggregate"
	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/feed"
)

// Snapshot is the latest aggregation outcome. When Err is non-nil the
// series is empty and Err carries the classified outcome (transport
// failure, empty feed, no usable rows, no valid dates).
type Snapshot struct {
	Series    []domain.DayBucket
	Err       error
	FetchedAt time.Time
}

type Poller struct {
	Log      *zap.Logger
	Fetcher  *feed.Fetcher
	FeedURL  string
	Interval time.Duration

	mu   sync.RWMutex
	snap Snapshot
	has  bool
}

func New(log *zap.Logger, fetcher *feed.Fetcher, feedURL string, interval time.Duration) *Poller {
	return &Poller{Log: log, Fetcher: fetcher, FeedURL: feedURL, Interval: interval}
}

// Run starts the loop: an immediate pass, then one per tick. Interval 0
// disables the loop (on-demand refresh still works). Stops when ctx is
// cancelled.
func (p *Poller) Run(ctx context.Context) {
	if p.Interval == 0 {
		p.Log.Info("poller_disabled")
		return
	}
	t := time.NewTicker(p.Interval)
	defer t.Stop()

	p.Refresh(ctx)

	for {
		select {
		case <-ctx.Done():
			p.Log.Info("poller_stopped")
			return
		case <-t.C:
			p.Refresh(ctx)
		}
	}
}

// Refresh performs one fetch→parse→aggregate pass and caches the outcome.
func (p *Poller) Refresh(ctx context.Context) Snapshot {
	snap := Snapshot{FetchedAt: time.Now().UTC()}

	text, err := p.Fetcher.Fetch(ctx, p.FeedURL)
	if err != nil {
		snap.Err = err
		p.Log.Warn("poller_fetch_failed", zap.Error(err))
		return p.store(snap)
	}

	rows, err := feed.Parse(text, feed.ChartSchema(), p.Log)
	if err != nil {
		snap.Err = err
		return p.store(snap)
	}

	series, err := aggregate.Series(rows, p.Log)
	if err != nil {
		snap.Err = err
		return p.store(snap)
	}

	snap.Series = series
	p.Log.Debug("poller_refreshed", zap.Int("days", len(series)))
	return p.store(snap)
}

// Latest returns the cached snapshot; ok is false before the first pass.
func (p *Poller) Latest() (Snapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snap, p.has
}

func (p *Poller) store(s Snapshot) Snapshot {
	p.mu.Lock()
	p.snap = s
	p.has = true
	p.mu.Unlock()
	return s
}
