package feed

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/drownwatch/internal/domain"
)

// Fetcher pulls the raw CSV alert export. It classifies failures but never
// retries them; a stalled or flaky export surface is the transport's
// problem, not ours.
type Fetcher struct {
	Client *http.Client
}

func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client: &http.Client{Timeout: timeout},
	}
}

// Fetch GETs the export and returns its body as text.
// Outcomes: network error or non-2xx status -> *domain.TransportError;
// whitespace-only body -> domain.ErrEmptyFeed (a valid "zero alerts" state).
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &domain.TransportError{Op: "feed_fetch", Err: err}
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return "", &domain.TransportError{Op: "feed_fetch", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &domain.TransportError{Op: "feed_fetch", Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.TransportError{Op: "feed_fetch", Err: err}
	}

	text := string(body)
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyFeed
	}
	return text, nil
}
