package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/collector"
)

// Job statuses.
const (
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// CollectJob tracks one asynchronous collection run.
type CollectJob struct {
	ID         string                  `json:"id"`
	Status     string                  `json:"status"`
	VideoIDs   []string                `json:"video_ids"`
	Results    []collector.VideoResult `json:"results,omitempty"`
	Error      string                  `json:"error,omitempty"`
	StartedAt  time.Time               `json:"started_at"`
	FinishedAt *time.Time              `json:"finished_at,omitempty"`
}

// CollectRequest starts a collection run.
type CollectRequest struct {
	VideoIDs    []string `json:"video_ids" binding:"required"`
	MaxComments int      `json:"max_comments,omitempty"`
	Order       string   `json:"order,omitempty"`
}

// CollectService runs collections in the background and tracks their jobs in
// memory. Jobs do not survive a restart.
type CollectService struct {
	collector *collector.Collector
	defaults  collector.Options
	logger    *zap.Logger

	mu   sync.RWMutex
	jobs map[string]*CollectJob
}

func NewCollectService(c *collector.Collector, defaults collector.Options, logger *zap.Logger) *CollectService {
	return &CollectService{
		collector: c,
		defaults:  defaults,
		logger:    logger,
		jobs:      make(map[string]*CollectJob),
	}
}

// Start launches a collection run and returns its job ID immediately.
func (s *CollectService) Start(req CollectRequest) (*CollectJob, error) {
	if s.collector == nil {
		return nil, fmt.Errorf("collection is not configured: missing youtube api key")
	}
	if len(req.VideoIDs) == 0 {
		return nil, fmt.Errorf("no video ids given")
	}

	job := &CollectJob{
		ID:        uuid.New().String(),
		Status:    JobStatusRunning,
		VideoIDs:  req.VideoIDs,
		StartedAt: time.Now(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	opts := s.defaults
	if req.MaxComments > 0 {
		opts.MaxComments = req.MaxComments
	}
	if req.Order != "" {
		opts.Order = req.Order
	}

	go s.run(job.ID, req.VideoIDs, opts)

	s.logger.Info("Collection job started",
		zap.String("job_id", job.ID),
		zap.Int("videos", len(req.VideoIDs)))

	return job, nil
}

func (s *CollectService) run(jobID string, videoIDs []string, opts collector.Options) {
	results := s.collector.Run(context.Background(), videoIDs, opts)

	failed := 0
	for _, r := range results {
		if r.Error != "" {
			failed++
		}
	}

	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	job := s.jobs[jobID]
	job.Results = results
	job.FinishedAt = &now
	if failed == len(results) && len(results) > 0 {
		job.Status = JobStatusFailed
		job.Error = "all videos failed"
	} else {
		job.Status = JobStatusCompleted
	}
}

// Job returns a snapshot of a job's current state.
func (s *CollectService) Job(id string) (*CollectJob, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return nil, false
	}
	snapshot := *job
	return &snapshot, true
}
