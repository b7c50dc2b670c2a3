package memory

import (
	"context"
	"testing"

	"github.com/hamed0406/drownwatch/internal/domain"
)

func TestMemoryStore_AppendAssignsServerFields(t *testing.T) {
	ctx := context.Background()
	s := New()

	rec := &domain.FeedbackRecord{
		VideoURL:   "https://x/a.mp4",
		Timestamp:  "2025-05-10T08:00:00Z",
		IsDrowning: "true",
	}
	if err := s.Append(ctx, rec); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if rec.ID == "" {
		t.Fatal("expected ID to be assigned")
	}
	if rec.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be assigned")
	}
	if rec.VideoID != domain.UnknownVideoID {
		t.Fatalf("missing video_id should default, got %q", rec.VideoID)
	}
}

func TestMemoryStore_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	for _, ts := range []string{"2025-05-10T08:00:00Z", "2025-05-12T08:00:00Z", "2025-05-11T08:00:00Z"} {
		if err := s.Append(ctx, &domain.FeedbackRecord{VideoID: "v", VideoURL: "u", Timestamp: ts, IsDrowning: "false"}); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	all, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("want 3 docs, got %d", len(all))
	}
	if all[0].Timestamp != "2025-05-12T08:00:00Z" || all[2].Timestamp != "2025-05-10T08:00:00Z" {
		t.Fatalf("not ordered newest first: %+v", all)
	}
}
