package collector

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/models"
	"github.com/cocoide/youtube-ideology-analysis/internal/repository"
)

type fakeFetcher struct {
	mu       sync.Mutex
	failures map[string]int // remaining failures per video
	comments map[string][]models.Comment
}

func (f *fakeFetcher) VideoInfo(_ context.Context, videoID string) (*models.VideoInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures[videoID] > 0 {
		f.failures[videoID]--
		return nil, fmt.Errorf("transient error for %s", videoID)
	}
	return &models.VideoInfo{VideoID: videoID, PublishedAt: "2025-07-01T00:00:00Z"}, nil
}

func (f *fakeFetcher) FetchComments(_ context.Context, video *models.VideoInfo, maxComments int, _ string) ([]models.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	comments := f.comments[video.VideoID]
	if len(comments) > maxComments {
		comments = comments[:maxComments]
	}
	return comments, nil
}

type fakeRepo struct {
	mu       sync.Mutex
	videos   map[string]bool
	comments map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{videos: map[string]bool{}, comments: map[string]bool{}}
}

func (r *fakeRepo) SaveVideo(video *models.VideoInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.videos[video.VideoID] = true
	return nil
}

func (r *fakeRepo) SaveComments(comments []models.Comment) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inserted := 0
	for _, c := range comments {
		if !r.comments[c.CommentID] {
			r.comments[c.CommentID] = true
			inserted++
		}
	}
	return inserted, nil
}

func (r *fakeRepo) Extract(repository.ExtractOptions) ([]models.Comment, error) { return nil, nil }
func (r *fakeRepo) GetVideos() ([]models.VideoInfo, error)                      { return nil, nil }
func (r *fakeRepo) CountByVideo() (map[string]int, error)                       { return nil, nil }

func testComments(videoID string, n int) []models.Comment {
	comments := make([]models.Comment, n)
	for i := range comments {
		comments[i] = models.Comment{
			CommentID: fmt.Sprintf("%s-c%d", videoID, i),
			VideoID:   videoID,
			Text:      "テスト",
		}
	}
	return comments
}

func testOptions() Options {
	return Options{MaxComments: 10, Workers: 2, Retries: 3, RetryDelay: time.Millisecond}
}

func TestRunCollectsAllVideos(t *testing.T) {
	fetcher := &fakeFetcher{
		failures: map[string]int{},
		comments: map[string][]models.Comment{
			"v1": testComments("v1", 3),
			"v2": testComments("v2", 5),
		},
	}
	repo := newFakeRepo()

	c := New(fetcher, repo, zap.NewNop())
	results := c.Run(context.Background(), []string{"v1", "v2"}, testOptions())

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, want := range []VideoResult{
		{VideoID: "v1", Fetched: 3, Inserted: 3},
		{VideoID: "v2", Fetched: 5, Inserted: 5},
	} {
		if results[i] != want {
			t.Errorf("results[%d] = %+v, want %+v", i, results[i], want)
		}
	}
	if len(repo.comments) != 8 {
		t.Errorf("stored %d comments, want 8", len(repo.comments))
	}
}

func TestRunRetriesTransientFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		failures: map[string]int{"v1": 2},
		comments: map[string][]models.Comment{"v1": testComments("v1", 2)},
	}
	repo := newFakeRepo()

	c := New(fetcher, repo, zap.NewNop())
	results := c.Run(context.Background(), []string{"v1"}, testOptions())

	if results[0].Error != "" {
		t.Fatalf("expected success after retries, got error %q", results[0].Error)
	}
	if results[0].Inserted != 2 {
		t.Errorf("inserted = %d, want 2", results[0].Inserted)
	}
}

func TestRunReportsExhaustedRetries(t *testing.T) {
	fetcher := &fakeFetcher{
		failures: map[string]int{"v1": 10},
		comments: map[string][]models.Comment{},
	}
	repo := newFakeRepo()

	c := New(fetcher, repo, zap.NewNop())
	results := c.Run(context.Background(), []string{"v1", "v2"}, testOptions())

	if results[0].Error == "" {
		t.Error("expected v1 to fail after retries")
	}
	// A failing video never aborts the rest of the run.
	if results[1].Error != "" {
		t.Errorf("v2 should succeed, got error %q", results[1].Error)
	}
}

func TestRunHonorsMaxComments(t *testing.T) {
	fetcher := &fakeFetcher{
		failures: map[string]int{},
		comments: map[string][]models.Comment{"v1": testComments("v1", 50)},
	}
	repo := newFakeRepo()

	opts := testOptions()
	opts.MaxComments = 7

	c := New(fetcher, repo, zap.NewNop())
	results := c.Run(context.Background(), []string{"v1"}, opts)

	if results[0].Fetched != 7 {
		t.Errorf("fetched = %d, want 7", results[0].Fetched)
	}
}
