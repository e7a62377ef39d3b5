// Package coding builds the CSV hand-off sheet between machine labeling and
// human annotation. Predicted label columns are filled by the labeler; the
// unprefixed label columns stay blank for the human coder.
package coding

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/labeler"
	"github.com/cocoide/youtube-ideology-analysis/internal/models"
)

// Options controls sheet generation.
type Options struct {
	// Debug adds the priority_rules and detected_keywords columns.
	Debug bool
}

// SheetBuilder drives the labeler over an extracted comment set.
type SheetBuilder struct {
	labeler *labeler.Labeler
	logger  *zap.Logger
}

func NewSheetBuilder(l *labeler.Labeler, logger *zap.Logger) *SheetBuilder {
	return &SheetBuilder{labeler: l, logger: logger}
}

// Header returns the sheet column names in order.
func Header(opts Options) []string {
	header := []string{
		"video_id", "comment_id", "published_at", "like_count", "total_reply_count", "text",
	}
	for _, label := range labeler.Labels {
		header = append(header, "pred_"+string(label))
	}
	for _, label := range labeler.Labels {
		header = append(header, string(label))
	}
	header = append(header, "unsure", "coder_memo")
	if opts.Debug {
		header = append(header, "priority_rules", "detected_keywords")
	}
	return header
}

// Generate writes one row per comment to w, preserving input order.
func (b *SheetBuilder) Generate(w io.Writer, comments []models.Comment, opts Options) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(Header(opts)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, comment := range comments {
		assignment := b.labeler.Resolve(comment.Text)

		row := []string{
			comment.VideoID,
			comment.CommentID,
			comment.PublishedAt,
			strconv.FormatInt(comment.LikeCount, 10),
			strconv.FormatInt(comment.TotalReplyCount, 10),
			comment.Text,
		}
		for _, label := range labeler.Labels {
			row = append(row, strconv.Itoa(assignment.Labels[label]))
		}
		// Blank columns reserved for the human coder.
		for range labeler.Labels {
			row = append(row, "")
		}
		row = append(row, "", "")

		if opts.Debug {
			row = append(row,
				strings.Join(assignment.RulesApplied, ";"),
				encodeKeywords(assignment.MatchedKeywords),
			)
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", comment.CommentID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteSheet generates the sheet into path atomically: the file appears fully
// written or not at all.
func (b *SheetBuilder) WriteSheet(path string, comments []models.Comment, opts Options) (int, error) {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".sheet-*.csv")
	if err != nil {
		return 0, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := b.Generate(tmp, comments, opts); err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("failed to move sheet into place: %w", err)
	}

	b.logger.Info("Coding sheet generated",
		zap.String("path", path),
		zap.Int("comments", len(comments)),
		zap.Bool("debug", opts.Debug))

	return len(comments), nil
}

// encodeKeywords serializes the matched-keyword map as JSON. Map keys are
// emitted in sorted order, so the column is deterministic.
func encodeKeywords(matches map[labeler.Label][]string) string {
	if len(matches) == 0 {
		return "{}"
	}
	byName := make(map[string][]string, len(matches))
	for label, hits := range matches {
		byName[string(label)] = hits
	}
	out, err := json.Marshal(byName)
	if err != nil {
		return "{}"
	}
	return string(out)
}
