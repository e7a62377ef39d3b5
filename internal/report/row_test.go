package report

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadCoded(t *testing.T) {
	path := writeTempCSV(t, "video_id,VP,like_count\nv1,1,3\nv2,,0\n")

	rows, err := LoadCoded(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0]["video_id"] != "v1" || rows[0]["VP"] != "1" {
		t.Errorf("unexpected first row: %v", rows[0])
	}
	if v, ok := rows[1].numeric("VP"); ok {
		t.Errorf("blank VP parsed as %v, want missing", v)
	}
	if rows[1].numericOrZero("VP") != 0 {
		t.Error("blank VP should coerce to 0")
	}
}

func TestLoadCodedMissing(t *testing.T) {
	if _, err := LoadCoded(filepath.Join(t.TempDir(), "absent.csv")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestAttachFrames(t *testing.T) {
	videoCSV := writeTempCSV(t, "video_id,frame,published_at\nv1,Loss,2025-07-01T00:00:00Z\nv2,Gain,2025-07-02T00:00:00Z\n")

	rows := []Row{
		{"video_id": "v1", "frame": ""},
		{"video_id": "v2"},
		{"video_id": "v3"},
		{"video_id": "v4", "frame": "Loss"},
	}
	fallback := map[string]string{"v3": "Gain"}

	rows = AttachFrames(rows, videoCSV, fallback, zap.NewNop())

	want := []string{"Loss", "Gain", "Gain", "Loss"}
	for i, w := range want {
		if rows[i]["frame"] != w {
			t.Errorf("row %d frame = %q, want %q", i, rows[i]["frame"], w)
		}
	}
	if rows[0]["video_published_at"] != "2025-07-01T00:00:00Z" {
		t.Errorf("v1 video_published_at = %q", rows[0]["video_published_at"])
	}
	if rows[2]["video_published_at"] != "" {
		t.Errorf("v3 video_published_at = %q, want empty", rows[2]["video_published_at"])
	}
}

func TestAttachFramesMissingSourceIsNonFatal(t *testing.T) {
	rows := []Row{{"video_id": "v1"}}
	rows = AttachFrames(rows, filepath.Join(t.TempDir(), "absent.csv"), nil, zap.NewNop())
	if rows[0]["frame"] != "" {
		t.Errorf("frame = %q, want empty", rows[0]["frame"])
	}
}

func TestFilterByDaysSinceVideo(t *testing.T) {
	rows := []Row{
		{"video_id": "v1", "video_published_at": "2025-07-01T00:00:00Z", "published_at": "2025-07-10T12:00:00Z"},
		{"video_id": "v1", "video_published_at": "2025-07-01T00:00:00Z", "published_at": "2025-07-15T00:00:00Z"},
		{"video_id": "v1", "video_published_at": "2025-07-01T00:00:00Z", "published_at": "2025-07-20T00:00:00Z"},
		{"video_id": "v1", "video_published_at": "2025-07-01T00:00:00Z", "published_at": "not-a-date"},
	}

	filtered := FilterByDaysSinceVideo(rows, 14)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 rows within 14 days, got %d", len(filtered))
	}
	if filtered[1]["published_at"] != "2025-07-15T00:00:00Z" {
		t.Errorf("unexpected second row: %v", filtered[1])
	}
}

func TestParseTimeLayouts(t *testing.T) {
	for _, raw := range []string{
		"2025-07-01T10:30:00Z",
		"2025-07-01T10:30:00",
		"2025-07-01 10:30:00",
		"2025-07-01",
	} {
		if _, ok := parseTime(raw); !ok {
			t.Errorf("parseTime(%q) failed", raw)
		}
	}
	if _, ok := parseTime("July 1st"); ok {
		t.Error("expected failure for a free-form date")
	}
}

func TestDistinctValues(t *testing.T) {
	rows := []Row{
		{"frame": "Loss"},
		{"frame": "Gain"},
		{"frame": "Loss"},
		{"frame": ""},
	}
	got := distinctValues(rows, "frame")
	if len(got) != 2 || got[0] != "Gain" || got[1] != "Loss" {
		t.Errorf("distinctValues = %v, want [Gain Loss]", got)
	}
}
