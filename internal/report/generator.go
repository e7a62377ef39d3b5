package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"go.uber.org/zap"
)

// Generator writes the report files from a completed coding sheet.
type Generator struct {
	logger *zap.Logger
	// FrameFallback maps video_id to frame when neither the coded file nor
	// the video metadata carries frame information.
	FrameFallback map[string]string
}

func NewGenerator(logger *zap.Logger, frameFallback map[string]string) *Generator {
	return &Generator{logger: logger, FrameFallback: frameFallback}
}

// AdvancedOptions selects the robustness outputs.
type AdvancedOptions struct {
	Days              int // time-window filter in days; 0 disables
	IncludeLOO        bool
	IncludeEngagement bool
}

// DefaultAdvancedOptions matches the study's standard run: 14-day window,
// LOO sweep and engagement metrics.
func DefaultAdvancedOptions() AdvancedOptions {
	return AdvancedOptions{Days: 14, IncludeLOO: true, IncludeEngagement: true}
}

func (g *Generator) load(codedCSV, videoCSV string) ([]Row, error) {
	rows, err := LoadCoded(codedCSV)
	if err != nil {
		return nil, err
	}
	rows = AttachFrames(rows, videoCSV, g.FrameFallback, g.logger)
	g.logger.Info("Coded data loaded", zap.String("path", codedCSV), zap.Int("rows", len(rows)))
	return rows, nil
}

// Generate writes the base report: frame summary, video summary and the
// hypothesis-test table.
func (g *Generator) Generate(codedCSV, outputDir, videoCSV string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rows, err := g.load(codedCSV, videoCSV)
	if err != nil {
		return err
	}

	if err := writeFrameSummary(filepath.Join(outputDir, "summary_by_frame.csv"), FrameSummary(rows)); err != nil {
		return err
	}
	if err := writeVideoSummary(filepath.Join(outputDir, "summary_by_video.csv"), VideoSummary(rows)); err != nil {
		return err
	}
	if err := writeTests(filepath.Join(outputDir, "tests_h1_h2.csv"), HypothesisTests(rows)); err != nil {
		return err
	}

	g.logger.Info("Report generated", zap.String("output_dir", outputDir))
	return nil
}

// GenerateAdvanced writes the robustness report: time-filtered summary and
// tests, the LOO sweep with its narrative, and engagement metrics.
func (g *Generator) GenerateAdvanced(codedCSV, outputDir, videoCSV string, opts AdvancedOptions) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	rows, err := g.load(codedCSV, videoCSV)
	if err != nil {
		return err
	}

	if opts.Days > 0 {
		filtered := FilterByDaysSinceVideo(rows, opts.Days)
		g.logger.Info("Time-window filter applied",
			zap.Int("days", opts.Days),
			zap.Int("kept", len(filtered)),
			zap.Int("total", len(rows)))

		if len(filtered) > 0 {
			name := fmt.Sprintf("summary_%ddays.csv", opts.Days)
			if err := writeFrameSummary(filepath.Join(outputDir, name), FrameSummary(filtered)); err != nil {
				return err
			}
			name = fmt.Sprintf("tests_%ddays.csv", opts.Days)
			if err := writeTests(filepath.Join(outputDir, name), HypothesisTests(filtered)); err != nil {
				return err
			}
		}
	}

	if opts.IncludeLOO {
		loo := LOOAnalysis(rows)
		if err := writeLOO(filepath.Join(outputDir, "loo_analysis.csv"), loo); err != nil {
			return err
		}
		narrative := InterpretRobustness(loo)
		if err := writeFileAtomic(filepath.Join(outputDir, "robustness_report.txt"), []byte(narrative)); err != nil {
			return err
		}
	}

	if opts.IncludeEngagement {
		if err := writeEngagement(filepath.Join(outputDir, "engagement_metrics.csv"), EngagementMetrics(rows)); err != nil {
			return err
		}
	}

	g.logger.Info("Advanced report generated", zap.String("output_dir", outputDir))
	return nil
}

func fmtFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func writeFrameSummary(path string, summary []FrameSummaryRow) error {
	records := [][]string{{"frame", "n_comments", "VP_rate", "E_int_rate", "E_ext_rate", "Cyn_rate", "median_like", "median_reply"}}
	for _, s := range summary {
		records = append(records, []string{
			s.Frame, strconv.Itoa(s.NComments),
			fmtFloat(s.VPRate), fmtFloat(s.EIntRate), fmtFloat(s.EExtRate), fmtFloat(s.CynRate),
			fmtFloat(s.MedianLike), fmtFloat(s.MedianReply),
		})
	}
	return writeCSVAtomic(path, records)
}

func writeVideoSummary(path string, summary []VideoSummaryRow) error {
	records := [][]string{{"video_id", "frame", "n_comments", "VP_rate", "E_int_rate", "E_ext_rate", "median_like", "median_reply"}}
	for _, s := range summary {
		records = append(records, []string{
			s.VideoID, s.Frame, strconv.Itoa(s.NComments),
			fmtFloat(s.VPRate), fmtFloat(s.EIntRate), fmtFloat(s.EExtRate),
			fmtFloat(s.MedianLike), fmtFloat(s.MedianReply),
		})
	}
	return writeCSVAtomic(path, records)
}

func writeTests(path string, results []TestResult) error {
	records := [][]string{{"hypothesis", "method", "statistic", "p_value", "effect_size", "notes"}}
	for _, r := range results {
		records = append(records, []string{
			r.Hypothesis, r.Method,
			fmtFloat(r.Statistic), fmtFloat(r.PValue), fmtFloat(r.EffectSize), r.Notes,
		})
	}
	return writeCSVAtomic(path, records)
}

func writeLOO(path string, results []LOOResult) error {
	records := [][]string{{"excluded_video", "n_comments", "H1_p_value", "H1_effect_size", "H2_p_value", "H2_effect_size"}}
	for _, r := range results {
		records = append(records, []string{
			r.ExcludedVideo, strconv.Itoa(r.NComments),
			fmtFloat(r.H1PValue), fmtFloat(r.H1EffectSize),
			fmtFloat(r.H2PValue), fmtFloat(r.H2EffectSize),
		})
	}
	return writeCSVAtomic(path, records)
}

func writeEngagement(path string, metrics []EngagementRow) error {
	records := [][]string{{"frame", "has_like_rate", "has_reply_rate", "high_engagement_rate", "avg_like_all", "avg_like_if_any"}}
	for _, m := range metrics {
		records = append(records, []string{
			m.Frame,
			fmtFloat(m.HasLikeRate), fmtFloat(m.HasReplyRate), fmtFloat(m.HighEngagementRate),
			fmtFloat(m.AvgLikeAll), fmtFloat(m.AvgLikeIfAny),
		})
	}
	return writeCSVAtomic(path, records)
}

// writeCSVAtomic writes records to path via a temp file and rename, so a
// failed write never leaves a partial file at the target.
func writeCSVAtomic(path string, records [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	writer := csv.NewWriter(tmp)
	if err := writer.WriteAll(records); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".report-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move %s into place: %w", filepath.Base(path), err)
	}
	return nil
}
