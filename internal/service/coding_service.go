package service

import (
	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/coding"
	"github.com/cocoide/youtube-ideology-analysis/internal/labeler"
	"github.com/cocoide/youtube-ideology-analysis/internal/repository"
)

// CodingService labels comment text and produces coding sheets from the
// stored comment set.
type CodingService struct {
	labeler *labeler.Labeler
	builder *coding.SheetBuilder
	repo    repository.CommentRepository
	logger  *zap.Logger
}

func NewCodingService(l *labeler.Labeler, repo repository.CommentRepository, logger *zap.Logger) *CodingService {
	return &CodingService{
		labeler: l,
		builder: coding.NewSheetBuilder(l, logger),
		repo:    repo,
		logger:  logger,
	}
}

// LabelText runs the priority resolver on one text.
func (s *CodingService) LabelText(text string) labeler.Assignment {
	return s.labeler.Resolve(text)
}

// SheetRequest describes one sheet-generation run.
type SheetRequest struct {
	OutputPath string `json:"output_path" binding:"required"`
	Limit      *int   `json:"limit,omitempty"`
	Seed       *int64 `json:"seed,omitempty"`
	Debug      bool   `json:"debug,omitempty"`
}

// GenerateSheet extracts comments (optionally sampled) and writes the coding
// sheet. Returns the number of rows written.
func (s *CodingService) GenerateSheet(req SheetRequest) (int, error) {
	comments, err := s.repo.Extract(repository.ExtractOptions{
		Limit: req.Limit,
		Seed:  req.Seed,
	})
	if err != nil {
		return 0, err
	}

	return s.builder.WriteSheet(req.OutputPath, comments, coding.Options{Debug: req.Debug})
}
