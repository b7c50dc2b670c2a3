// Package feed fetches and parses the remote CSV alert export.
//
// The export is produced by an upstream job that is allowed to be sloppy:
// short rows, missing fields and junk values are expected noise. The parser
// drops bad rows and keeps going — partial data beats no data.
package feed

import (
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/hamed0406/drownwatch/internal/domain"
)

// FieldType declares how a column's values are coerced.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
)

// TimestampKeys is the accepted timestamp header casings, in priority
// order. The export has shipped all three at different times.
var TimestampKeys = []string{"timestamp", "Timestamp", "TIMESTAMP"}

// Schema declares the expected column types and which columns a row must
// carry to be usable for a given view. Each Required entry is a priority
// list of accepted header casings; a row satisfies the entry when any of
// them is present and non-empty.
type Schema struct {
	Types    map[string]FieldType
	Required [][]string
}

// ListSchema validates rows for the incident list view.
func ListSchema() Schema {
	return Schema{
		Types:    map[string]FieldType{"frame_id": FieldInt},
		Required: [][]string{TimestampKeys, {"frame_id"}, {"video_url"}},
	}
}

// ChartSchema validates rows for the per-day aggregation view.
func ChartSchema() Schema {
	return Schema{Required: [][]string{TimestampKeys}}
}

// Row is one parsed feed record. Values are strings except for columns the
// schema declares as int, which are coerced to int64.
type Row map[string]any

// Lookup returns the first non-empty string value among keys, in order.
// The export has emitted "timestamp", "Timestamp" and "TIMESTAMP" headers
// over its lifetime, so callers pass the accepted variants as a priority
// list.
func (r Row) Lookup(keys ...string) string {
	for _, k := range keys {
		if v, ok := r[k]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

// String returns the row's value under key as a string ("" when absent or
// not a string).
func (r Row) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Parse reads the delimited text into rows, header row first.
//
// Empty or whitespace-only input yields an empty slice and no error: the
// feed may legitimately report zero alerts. Rows that fail coercion or miss
// a required field are dropped silently. CSV engine errors are counted and
// logged but never abort the parse. When data rows were present but none
// survived validation, the result is domain.ErrNoUsableRows.
func Parse(text string, schema Schema, log *zap.Logger) ([]Row, error) {
	if strings.TrimSpace(text) == "" {
		return []Row{}, nil
	}

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1 // ragged rows are handled below, not fatal
	r.TrimLeadingSpace = true

	records, parseErrs := readAll(r)
	if parseErrs > 0 {
		log.Warn("feed_parse_errors", zap.Int("count", parseErrs))
	}
	if len(records) == 0 {
		return []Row{}, nil
	}

	header := records[0]
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	rows := make([]Row, 0, len(records)-1)
	dropped := 0
	seen := 0
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		seen++
		row, ok := buildRow(header, rec, schema)
		if !ok {
			dropped++
			continue
		}
		rows = append(rows, row)
	}

	if dropped > 0 {
		log.Warn("feed_rows_dropped", zap.Int("dropped", dropped), zap.Int("kept", len(rows)))
	}
	if seen > 0 && len(rows) == 0 {
		return nil, domain.ErrNoUsableRows
	}
	return rows, nil
}

// readAll drains the reader, counting per-record errors instead of stopping
// at the first one.
func readAll(r *csv.Reader) ([][]string, int) {
	var out [][]string
	errs := 0
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			errs++
			if rec == nil {
				continue
			}
		}
		out = append(out, rec)
	}
	return out, errs
}

func buildRow(header, rec []string, schema Schema) (Row, bool) {
	row := make(Row, len(header))
	for i, h := range header {
		if h == "" || i >= len(rec) {
			continue
		}
		val := strings.TrimSpace(rec[i])
		switch schema.Types[h] {
		case FieldInt:
			if val == "" {
				continue
			}
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil {
				// declared numeric but not a number: the row is bad,
				// not silently NaN
				return nil, false
			}
			row[h] = n
		default:
			row[h] = val
		}
	}
	for _, req := range schema.Required {
		if !hasAny(row, req) {
			return nil, false
		}
	}
	return row, true
}

// hasAny reports whether any of the accepted keys carries a usable value.
// Typed (already-coerced) values count; empty strings do not.
func hasAny(row Row, keys []string) bool {
	for _, k := range keys {
		v, ok := row[k]
		if !ok {
			continue
		}
		if s, isStr := v.(string); isStr {
			if s != "" {
				return true
			}
			continue
		}
		return true
	}
	return false
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
