package repository

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/models"
)

// ExtractOptions controls sampling when reading comments back out.
//
// When Seed is set the rows are ordered by a deterministic pseudo-random key
// derived from the seed and the comment ID length, ties broken by comment_id
// ascending. The same (seed, dataset) pair always yields the same order. This
// is a reproducible pseudo-shuffle for research repeatability, not a uniform
// random sample, and must stay that way.
type ExtractOptions struct {
	Limit *int
	Seed  *int64
}

type CommentRepository interface {
	SaveVideo(video *models.VideoInfo) error
	SaveComments(comments []models.Comment) (int, error)
	Extract(opts ExtractOptions) ([]models.Comment, error)
	GetVideos() ([]models.VideoInfo, error)
	CountByVideo() (map[string]int, error)
}

type commentRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

func NewCommentRepository(db *sqlx.DB, logger *zap.Logger) CommentRepository {
	return &commentRepository{db: db, logger: logger}
}

// SaveVideo records video metadata. Re-inserting an existing video is a no-op.
func (r *commentRepository) SaveVideo(video *models.VideoInfo) error {
	query := `INSERT OR IGNORE INTO videos (video_id, published_at, frame) VALUES (?, ?, ?)`
	_, err := r.db.Exec(query, video.VideoID, video.PublishedAt, video.Frame)
	if err != nil {
		return fmt.Errorf("failed to save video: %w", err)
	}
	return nil
}

// SaveComments inserts comments, skipping IDs already present. Returns the
// number of newly inserted rows.
func (r *commentRepository) SaveComments(comments []models.Comment) (int, error) {
	if len(comments) == 0 {
		return 0, nil
	}

	tx, err := r.db.Beginx()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `INSERT OR IGNORE INTO comments (
		comment_id, video_id, video_published_at, published_at, updated_at,
		like_count, total_reply_count, text
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	inserted := 0
	for _, c := range comments {
		res, err := tx.Exec(query, c.CommentID, c.VideoID, c.VideoPublishedAt,
			c.PublishedAt, c.UpdatedAt, c.LikeCount, c.TotalReplyCount, c.Text)
		if err != nil {
			tx.Rollback()
			return 0, fmt.Errorf("failed to save comment %s: %w", c.CommentID, err)
		}
		if n, err := res.RowsAffected(); err == nil {
			inserted += int(n)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit comments: %w", err)
	}

	r.logger.Debug("Comments saved",
		zap.Int("fetched", len(comments)),
		zap.Int("inserted", inserted),
		zap.Int("skipped", len(comments)-inserted))

	return inserted, nil
}

// Extract reads comments in natural storage order, or in the seeded
// pseudo-shuffle order when a seed is given, truncated to the limit.
func (r *commentRepository) Extract(opts ExtractOptions) ([]models.Comment, error) {
	builder := sq.Select(
		"comment_id", "video_id", "published_at",
		"like_count", "total_reply_count", "text",
	).From("comments")

	if opts.Seed != nil {
		builder = builder.OrderBy(
			fmt.Sprintf("((length(comment_id) * %d) %% 100)", *opts.Seed),
			"comment_id",
		)
	}
	if opts.Limit != nil {
		builder = builder.Limit(uint64(*opts.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build extract query: %w", err)
	}

	var comments []models.Comment
	if err := r.db.Select(&comments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to extract comments: %w", err)
	}
	return comments, nil
}

func (r *commentRepository) GetVideos() ([]models.VideoInfo, error) {
	var videos []models.VideoInfo
	query := `SELECT video_id, published_at, frame FROM videos ORDER BY video_id`
	if err := r.db.Select(&videos, query); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

// CountByVideo returns the stored comment count per video.
func (r *commentRepository) CountByVideo() (map[string]int, error) {
	rows, err := r.db.Queryx(`SELECT video_id, COUNT(*) AS n FROM comments GROUP BY video_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to count comments: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var videoID string
		var n int
		if err := rows.Scan(&videoID, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[videoID] = n
	}
	return counts, rows.Err()
}
