// Package collector drives comment collection across a set of videos with a
// bounded worker pool.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/models"
	"github.com/cocoide/youtube-ideology-analysis/internal/repository"
)

// Fetcher is the slice of the YouTube client the collector needs.
type Fetcher interface {
	VideoInfo(ctx context.Context, videoID string) (*models.VideoInfo, error)
	FetchComments(ctx context.Context, video *models.VideoInfo, maxComments int, order string) ([]models.Comment, error)
}

// Options tunes one collection run.
type Options struct {
	MaxComments int
	Order       string
	Workers     int
	Retries     int
	RetryDelay  time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxComments <= 0 {
		o.MaxComments = 200
	}
	if o.Workers <= 0 {
		o.Workers = 3
	}
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 2 * time.Second
	}
	return o
}

// VideoResult reports one video's outcome within a run.
type VideoResult struct {
	VideoID  string `json:"video_id"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
	Error    string `json:"error,omitempty"`
}

// Collector fetches comments for videos and persists them.
type Collector struct {
	fetcher Fetcher
	repo    repository.CommentRepository
	logger  *zap.Logger
}

func New(fetcher Fetcher, repo repository.CommentRepository, logger *zap.Logger) *Collector {
	return &Collector{fetcher: fetcher, repo: repo, logger: logger}
}

// Run collects comments for every video ID with a pool of workers. A failing
// video is reported in its result, never aborts the run. Results come back in
// input order.
func (c *Collector) Run(ctx context.Context, videoIDs []string, opts Options) []VideoResult {
	opts = opts.withDefaults()

	results := make([]VideoResult, len(videoIDs))
	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = c.collectVideo(ctx, videoIDs[i], opts)
			}
		}()
	}

	for i := range videoIDs {
		select {
		case jobs <- i:
		case <-ctx.Done():
			results[i] = VideoResult{VideoID: videoIDs[i], Error: ctx.Err().Error()}
		}
	}
	close(jobs)
	wg.Wait()

	return results
}

func (c *Collector) collectVideo(ctx context.Context, videoID string, opts Options) VideoResult {
	result := VideoResult{VideoID: videoID}

	video, err := withRetry(ctx, opts, c.logger, func() (*models.VideoInfo, error) {
		return c.fetcher.VideoInfo(ctx, videoID)
	})
	if err != nil {
		c.logger.Error("Failed to fetch video metadata", zap.String("video_id", videoID), zap.Error(err))
		result.Error = err.Error()
		return result
	}

	if err := c.repo.SaveVideo(video); err != nil {
		result.Error = err.Error()
		return result
	}

	comments, err := withRetry(ctx, opts, c.logger, func() ([]models.Comment, error) {
		return c.fetcher.FetchComments(ctx, video, opts.MaxComments, opts.Order)
	})
	if err != nil {
		c.logger.Error("Failed to fetch comments", zap.String("video_id", videoID), zap.Error(err))
		result.Error = err.Error()
		return result
	}
	result.Fetched = len(comments)

	inserted, err := c.repo.SaveComments(comments)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.Inserted = inserted

	c.logger.Info("Video collected",
		zap.String("video_id", videoID),
		zap.Int("fetched", result.Fetched),
		zap.Int("inserted", result.Inserted))

	return result
}

// withRetry runs fn up to opts.Retries times with a linear backoff.
func withRetry[T any](ctx context.Context, opts Options, logger *zap.Logger, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	for attempt := 1; attempt <= opts.Retries; attempt++ {
		v, err := fn()
		if err == nil {
			return v, nil
		}
		lastErr = err
		if attempt == opts.Retries {
			break
		}
		logger.Warn("Retrying after error",
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-time.After(opts.RetryDelay * time.Duration(attempt)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
	return zero, fmt.Errorf("giving up after %d attempts: %w", opts.Retries, lastErr)
}
