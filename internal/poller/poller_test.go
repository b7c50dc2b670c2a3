package poller

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/domain"
	"github.com/hamed0406/drownwatch/internal/feed"
)

func feedServer(t *testing.T, body string, status int) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s, &hits
}

func TestRefresh_CachesSeries(t *testing.T) {
	body := "timestamp\n2025-05-10T08:00:00Z\n2025-05-10T09:30:00Z\n2025-05-11T07:00:00Z\n"
	s, _ := feedServer(t, body, 200)

	p := New(zap.NewNop(), feed.NewFetcher(2*time.Second), s.URL, 0)

	if _, ok := p.Latest(); ok {
		t.Fatal("no snapshot expected before the first pass")
	}

	snap := p.Refresh(context.Background())
	if snap.Err != nil {
		t.Fatalf("Refresh: %v", snap.Err)
	}
	if len(snap.Series) != 2 || snap.Series[0].Count != 2 {
		t.Fatalf("unexpected series: %+v", snap.Series)
	}

	cached, ok := p.Latest()
	if !ok || len(cached.Series) != 2 {
		t.Fatalf("snapshot not cached: %+v ok=%v", cached, ok)
	}
}

func TestRefresh_CapitalizedTimestampHeader(t *testing.T) {
	body := "Timestamp,frame_id,video_url\n" +
		"2025-05-10T08:00:00Z,101,https://x/a.mp4\n" +
		"2025-05-11T07:00:00Z,102,https://x/b.mp4\n"
	s, _ := feedServer(t, body, 200)

	p := New(zap.NewNop(), feed.NewFetcher(2*time.Second), s.URL, 0)
	snap := p.Refresh(context.Background())
	if snap.Err != nil {
		t.Fatalf("capitalized header must still chart: %v", snap.Err)
	}
	if len(snap.Series) != 2 {
		t.Fatalf("want a 2-day series, got %+v", snap.Series)
	}
}

func TestRefresh_ClassifiedOutcomes(t *testing.T) {
	s, _ := feedServer(t, "   \n", 200)
	p := New(zap.NewNop(), feed.NewFetcher(2*time.Second), s.URL, 0)
	snap := p.Refresh(context.Background())
	if !errors.Is(snap.Err, domain.ErrEmptyFeed) {
		t.Fatalf("want ErrEmptyFeed, got %v", snap.Err)
	}

	s2, _ := feedServer(t, "x", 503)
	p2 := New(zap.NewNop(), feed.NewFetcher(2*time.Second), s2.URL, 0)
	snap = p2.Refresh(context.Background())
	if !domain.IsTransport(snap.Err) {
		t.Fatalf("want transport failure, got %v", snap.Err)
	}

	s3, _ := feedServer(t, "timestamp\ngarbage\n", 200)
	p3 := New(zap.NewNop(), feed.NewFetcher(2*time.Second), s3.URL, 0)
	snap = p3.Refresh(context.Background())
	if !errors.Is(snap.Err, domain.ErrNoValidDates) {
		t.Fatalf("want ErrNoValidDates, got %v", snap.Err)
	}
}

func TestRun_TicksAndStops(t *testing.T) {
	body := "timestamp\n2025-05-10T08:00:00Z\n"
	s, hits := feedServer(t, body, 200)

	p := New(zap.NewNop(), feed.NewFetcher(2*time.Second), s.URL, 20*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for hits.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("poller never ticked")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("poller did not stop on cancel")
	}
}

func TestRun_ZeroIntervalDisabled(t *testing.T) {
	p := New(zap.NewNop(), feed.NewFetcher(time.Second), "http://unused", 0)
	done := make(chan struct{})
	go func() {
		p.Run(context.Background())
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled poller should return immediately")
	}
}
