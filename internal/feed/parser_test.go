package feed

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/domain"
)

const sampleCSV = "timestamp,frame_id,video_id,video_url\n" +
	"2025-05-10T08:00:00Z,101,42,https://x/a.mp4\n" +
	"2025-05-10T09:30:00Z,102,42,https://x/a.mp4\n" +
	"2025-05-11T07:00:00Z,103,43,https://x/b.mp4\n"

func TestParse_EmptyInputIsNotAnError(t *testing.T) {
	for _, in := range []string{"", "   \n \t "} {
		rows, err := Parse(in, ChartSchema(), zap.NewNop())
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if len(rows) != 0 {
			t.Fatalf("want empty sequence, got %d rows", len(rows))
		}
	}
}

func TestParse_HeaderOnlyIsZeroAlerts(t *testing.T) {
	rows, err := Parse("timestamp,frame_id,video_url\n", ListSchema(), zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("want 0 rows, got %d", len(rows))
	}
}

func TestParse_ValidRows(t *testing.T) {
	rows, err := Parse(sampleCSV, ListSchema(), zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("want 3 rows, got %d", len(rows))
	}
	if rows[0].String("video_url") != "https://x/a.mp4" {
		t.Fatalf("unexpected video_url: %v", rows[0]["video_url"])
	}
	// frame_id is declared int and must arrive coerced
	if n, ok := rows[0]["frame_id"].(int64); !ok || n != 101 {
		t.Fatalf("want frame_id int64(101), got %T %v", rows[0]["frame_id"], rows[0]["frame_id"])
	}
}

func TestParse_DropsRowsMissingRequiredFields(t *testing.T) {
	csv := "timestamp,frame_id,video_url\n" +
		"2025-05-10T08:00:00Z,101,https://x/a.mp4\n" +
		",102,https://x/b.mp4\n" + // empty timestamp
		"2025-05-11T07:00:00Z,,https://x/c.mp4\n" + // missing frame_id
		"2025-05-12T07:00:00Z,104,\n" // missing video_url
	rows, err := Parse(csv, ListSchema(), zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("want 1 surviving row, got %d", len(rows))
	}
}

func TestParse_BadIntFailsTheRow(t *testing.T) {
	csv := "timestamp,frame_id,video_url\n" +
		"2025-05-10T08:00:00Z,abc,https://x/a.mp4\n" +
		"2025-05-10T09:00:00Z,7,https://x/a.mp4\n"
	rows, err := Parse(csv, ListSchema(), zap.NewNop())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("malformed numeric should drop the row: got %d rows", len(rows))
	}
}

func TestParse_AllRowsDroppedIsNoUsableRows(t *testing.T) {
	csv := "timestamp,frame_id,video_url\n" +
		",1,\n" +
		",2,\n"
	_, err := Parse(csv, ListSchema(), zap.NewNop())
	if !errors.Is(err, domain.ErrNoUsableRows) {
		t.Fatalf("want ErrNoUsableRows, got %v", err)
	}
}

func TestParse_TimestampHeaderCasingVariants(t *testing.T) {
	for _, header := range []string{"timestamp", "Timestamp", "TIMESTAMP"} {
		csv := header + ",frame_id,video_url\n" +
			"2025-05-10T08:00:00Z,101,https://x/a.mp4\n"

		rows, err := Parse(csv, ChartSchema(), zap.NewNop())
		if err != nil {
			t.Fatalf("ChartSchema with %q header: %v", header, err)
		}
		if len(rows) != 1 {
			t.Fatalf("ChartSchema with %q header: want 1 row, got %d", header, len(rows))
		}

		rows, err = Parse(csv, ListSchema(), zap.NewNop())
		if err != nil {
			t.Fatalf("ListSchema with %q header: %v", header, err)
		}
		if len(rows) != 1 {
			t.Fatalf("ListSchema with %q header: want 1 row, got %d", header, len(rows))
		}
		if rows[0].Lookup(TimestampKeys...) != "2025-05-10T08:00:00Z" {
			t.Fatalf("%q header: timestamp value lost: %v", header, rows[0])
		}
	}
}

func TestRow_LookupPriorityOrder(t *testing.T) {
	r := Row{"Timestamp": "2025-05-10T08:00:00Z", "TIMESTAMP": "other"}
	got := r.Lookup("timestamp", "Timestamp", "TIMESTAMP")
	if got != "2025-05-10T08:00:00Z" {
		t.Fatalf("want Timestamp variant to win, got %q", got)
	}
	if (Row{}).Lookup("timestamp") != "" {
		t.Fatal("missing keys should yield empty string")
	}
}
