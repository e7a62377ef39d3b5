package service

import (
	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/report"
)

// ReportRequest describes one report run.
type ReportRequest struct {
	CodedPath  string `json:"coded_path" binding:"required"`
	OutputDir  string `json:"output_dir" binding:"required"`
	VideoCSV   string `json:"video_csv,omitempty"`
	Advanced   bool   `json:"advanced,omitempty"`
	DaysWindow int    `json:"days_window,omitempty"`
}

// ReportService generates statistical reports from completed coding sheets.
type ReportService struct {
	generator  *report.Generator
	daysWindow int
	logger     *zap.Logger
}

func NewReportService(frameFallback map[string]string, daysWindow int, logger *zap.Logger) *ReportService {
	return &ReportService{
		generator:  report.NewGenerator(logger, frameFallback),
		daysWindow: daysWindow,
		logger:     logger,
	}
}

// Generate runs the base report, plus the robustness outputs when Advanced is
// set.
func (s *ReportService) Generate(req ReportRequest) error {
	if err := s.generator.Generate(req.CodedPath, req.OutputDir, req.VideoCSV); err != nil {
		return err
	}
	if !req.Advanced {
		return nil
	}

	opts := report.DefaultAdvancedOptions()
	if req.DaysWindow > 0 {
		opts.Days = req.DaysWindow
	} else if s.daysWindow > 0 {
		opts.Days = s.daysWindow
	}
	return s.generator.GenerateAdvanced(req.CodedPath, req.OutputDir, req.VideoCSV, opts)
}
