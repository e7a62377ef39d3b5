package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func codedFixture(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("video_id,frame,video_published_at,published_at,like_count,total_reply_count,VP,E_int,E_ext,Cyn\n")
	write := func(videoID, frame, publishedAt, vp, eExt string) {
		b.WriteString(strings.Join([]string{
			videoID, frame, "2025-07-01T00:00:00Z", publishedAt, "2", "0", vp, "0", eExt, "0",
		}, ",") + "\n")
	}
	write("v1", FrameLoss, "2025-07-02T00:00:00Z", "1", "0")
	write("v1", FrameLoss, "2025-07-03T00:00:00Z", "0", "1")
	write("v1", FrameLoss, "2025-07-20T00:00:00Z", "1", "0")
	write("v2", FrameLoss, "2025-07-04T00:00:00Z", "1", "0")
	write("v2", FrameLoss, "2025-07-05T00:00:00Z", "0", "0")
	write("v3", FrameGain, "2025-07-02T00:00:00Z", "0", "1")
	write("v3", FrameGain, "2025-07-03T00:00:00Z", "1", "0")
	write("v4", FrameGain, "2025-07-04T00:00:00Z", "0", "1")
	write("v4", FrameGain, "2025-07-21T00:00:00Z", "0", "0")
	return writeTempCSV(t, b.String())
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("missing output %s: %v", filepath.Base(path), err)
	}
	defer file.Close()
	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func TestGeneratorBaseOutputs(t *testing.T) {
	coded := codedFixture(t)
	outputDir := t.TempDir()

	g := NewGenerator(zap.NewNop(), nil)
	if err := g.Generate(coded, outputDir, ""); err != nil {
		t.Fatal(err)
	}

	frames := readCSV(t, filepath.Join(outputDir, "summary_by_frame.csv"))
	if len(frames) != 3 {
		t.Fatalf("frame summary: expected header + 2 groups, got %d records", len(frames))
	}
	if frames[0][0] != "frame" || frames[0][2] != "VP_rate" {
		t.Errorf("unexpected frame summary header: %v", frames[0])
	}
	// Sorted by frame name, Gain before Loss.
	if frames[1][0] != FrameGain || frames[2][0] != FrameLoss {
		t.Errorf("unexpected frame order: %v / %v", frames[1], frames[2])
	}
	if frames[2][1] != "5" {
		t.Errorf("Loss n_comments = %q, want 5", frames[2][1])
	}
	if frames[2][2] != "0.6" {
		t.Errorf("Loss VP rate = %q, want 0.6", frames[2][2])
	}

	videos := readCSV(t, filepath.Join(outputDir, "summary_by_video.csv"))
	if len(videos) != 5 {
		t.Fatalf("video summary: expected header + 4 videos, got %d records", len(videos))
	}

	tests := readCSV(t, filepath.Join(outputDir, "tests_h1_h2.csv"))
	if len(tests) != 4 {
		t.Fatalf("tests: expected header + 3 results, got %d records", len(tests))
	}
	if tests[1][0] != "H1" || tests[1][1] != MethodZTest {
		t.Errorf("unexpected first test row: %v", tests[1])
	}
}

func TestGeneratorAdvancedOutputs(t *testing.T) {
	coded := codedFixture(t)
	outputDir := t.TempDir()

	g := NewGenerator(zap.NewNop(), nil)
	if err := g.GenerateAdvanced(coded, outputDir, "", DefaultAdvancedOptions()); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"summary_14days.csv",
		"tests_14days.csv",
		"loo_analysis.csv",
		"engagement_metrics.csv",
		"robustness_report.txt",
	} {
		if _, err := os.Stat(filepath.Join(outputDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	// Two comments fall outside the 14-day window.
	filtered := readCSV(t, filepath.Join(outputDir, "summary_14days.csv"))
	total := 0
	for _, record := range filtered[1:] {
		n := record[1]
		switch n {
		case "4":
			total += 4
		case "3":
			total += 3
		default:
			t.Errorf("unexpected group size %q", n)
		}
	}
	if total != 7 {
		t.Errorf("filtered total = %d, want 7", total)
	}

	loo := readCSV(t, filepath.Join(outputDir, "loo_analysis.csv"))
	if len(loo) != 6 {
		t.Fatalf("LOO: expected header + baseline + 4 videos, got %d records", len(loo))
	}
	if loo[1][0] != "none" {
		t.Errorf("first LOO row = %q, want none", loo[1][0])
	}

	narrative, err := os.ReadFile(filepath.Join(outputDir, "robustness_report.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(narrative), "=== Robustness Analysis Report ===") {
		t.Error("narrative missing report header")
	}

	// No stray temp files from the atomic writes.
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 5 {
		t.Errorf("expected 5 output files, found %d", len(entries))
	}
}
