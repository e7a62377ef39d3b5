// Package report computes the pilot-study statistics from completed coding
// sheets: frame and video summaries, the H1/H2 hypothesis tests, the
// leave-one-out robustness sweep and engagement metrics.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Row is one coded comment keyed by column name. Only columns present in the
// source file appear as keys.
type Row map[string]string

// numeric parses a cell as a float. Blank or non-numeric cells are reported
// as missing, never as an error.
func (r Row) numeric(col string) (float64, bool) {
	raw, ok := r[col]
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// numericOrZero is the coercion used by the engagement metrics, where the
// study treats missing counts as zero rather than excluding the comment.
func (r Row) numericOrZero(col string) float64 {
	v, ok := r.numeric(col)
	if !ok {
		return 0
	}
	return v
}

// LoadCoded reads a coding-sheet CSV into rows.
func LoadCoded(path string) ([]Row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open coded file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read coded file: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// hasColumn reports whether the dataset carries a column at all.
func hasColumn(rows []Row, col string) bool {
	if len(rows) == 0 {
		return false
	}
	_, ok := rows[0][col]
	return ok
}

// AttachFrames ensures every row has a frame value: first from an optional
// video metadata CSV (video_id,frame columns), then from the fallback lookup.
// When the metadata CSV also carries a published_at column, rows missing
// video_published_at pick it up too, which the time-window filter needs.
// Rows whose frame stays unknown keep an empty value and are simply excluded
// from frame-keyed aggregation; a missing frame source is a warning, not an
// error.
func AttachFrames(rows []Row, videoCSV string, fallback map[string]string, logger *zap.Logger) []Row {
	frames := map[string]string{}
	publishedAt := map[string]string{}

	if videoCSV != "" {
		loadedFrames, loadedTimes, err := loadVideoMetadata(videoCSV)
		if err != nil {
			logger.Warn("Failed to load video metadata, falling back", zap.String("path", videoCSV), zap.Error(err))
		} else {
			frames = loadedFrames
			publishedAt = loadedTimes
		}
	}

	attached := 0
	for _, row := range rows {
		if strings.TrimSpace(row["video_published_at"]) == "" {
			if ts, ok := publishedAt[row["video_id"]]; ok {
				row["video_published_at"] = ts
			}
		}

		if strings.TrimSpace(row["frame"]) != "" {
			attached++
			continue
		}
		frame, ok := frames[row["video_id"]]
		if !ok {
			frame, ok = fallback[row["video_id"]]
		}
		if ok {
			row["frame"] = frame
			attached++
		} else {
			row["frame"] = ""
		}
	}

	if attached < len(rows) {
		logger.Warn("Some rows have no frame information; they are excluded from frame-level analysis",
			zap.Int("missing", len(rows)-attached),
			zap.Int("total", len(rows)))
	}

	return rows
}

func loadVideoMetadata(path string) (frames, publishedAt map[string]string, err error) {
	rows, err := LoadCoded(path)
	if err != nil {
		return nil, nil, err
	}
	frames = make(map[string]string, len(rows))
	publishedAt = make(map[string]string, len(rows))
	for _, row := range rows {
		if row["video_id"] == "" {
			continue
		}
		if row["frame"] != "" {
			frames[row["video_id"]] = row["frame"]
		}
		if row["published_at"] != "" {
			publishedAt[row["video_id"]] = row["published_at"]
		}
	}
	return frames, publishedAt, nil
}

// distinctValues returns the sorted distinct non-empty values of a column.
func distinctValues(rows []Row, col string) []string {
	seen := map[string]bool{}
	for _, row := range rows {
		if v := row[col]; v != "" {
			seen[v] = true
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// filterRows returns the rows for which keep is true.
func filterRows(rows []Row, keep func(Row) bool) []Row {
	var out []Row
	for _, row := range rows {
		if keep(row) {
			out = append(out, row)
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// FilterByDaysSinceVideo keeps comments published within the given number of
// whole days after their video's publication. Rows whose timestamps cannot be
// parsed are dropped from the filtered view.
func FilterByDaysSinceVideo(rows []Row, days int) []Row {
	return filterRows(rows, func(row Row) bool {
		videoAt, ok := parseTime(row["video_published_at"])
		if !ok {
			return false
		}
		publishedAt, ok := parseTime(row["published_at"])
		if !ok {
			return false
		}
		elapsed := int(publishedAt.Sub(videoAt).Hours() / 24)
		return elapsed <= days
	})
}
