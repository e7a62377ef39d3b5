package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/collector"
	"github.com/cocoide/youtube-ideology-analysis/internal/labeler"
	"github.com/cocoide/youtube-ideology-analysis/internal/models"
	"github.com/cocoide/youtube-ideology-analysis/internal/repository"
	"github.com/cocoide/youtube-ideology-analysis/internal/service"
)

type stubRepo struct {
	videos   []models.VideoInfo
	comments []models.Comment
}

func (r *stubRepo) SaveVideo(*models.VideoInfo) error          { return nil }
func (r *stubRepo) SaveComments([]models.Comment) (int, error) { return 0, nil }
func (r *stubRepo) GetVideos() ([]models.VideoInfo, error)     { return r.videos, nil }

func (r *stubRepo) Extract(opts repository.ExtractOptions) ([]models.Comment, error) {
	comments := r.comments
	if opts.Limit != nil && *opts.Limit < len(comments) {
		comments = comments[:*opts.Limit]
	}
	return comments, nil
}

func (r *stubRepo) CountByVideo() (map[string]int, error) {
	counts := map[string]int{}
	for _, c := range r.comments {
		counts[c.VideoID]++
	}
	return counts, nil
}

func newTestRouter(repo repository.CommentRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	l := labeler.New(nil)
	codingSvc := service.NewCodingService(l, repo, logger)
	reportSvc := service.NewReportService(nil, 14, logger)

	api := NewAPI(codingSvc, nil, reportSvc, repo, logger)
	router := gin.New()
	api.RegisterRoutes(router)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	w := doJSON(t, router, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestLabelEndpoint(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/label", `{"text": "明日投票に行きます！"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Labels map[string]int `json:"labels"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Labels["VP"] != 1 {
		t.Errorf("VP = %d, want 1", resp.Labels["VP"])
	}
}

func TestLabelEndpointRejectsMissingText(t *testing.T) {
	router := newTestRouter(&stubRepo{})

	w := doJSON(t, router, http.MethodPost, "/api/v1/label", `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestGenerateSheetEndpoint(t *testing.T) {
	repo := &stubRepo{
		comments: []models.Comment{
			{CommentID: "c1", VideoID: "v1", Text: "投票に行ってきた"},
			{CommentID: "c2", VideoID: "v1", Text: "どうせ無駄だよ"},
		},
	}
	router := newTestRouter(repo)

	outputPath := filepath.Join(t.TempDir(), "sheet.csv")
	body, _ := json.Marshal(map[string]any{"output_path": outputPath})

	w := doJSON(t, router, http.MethodPost, "/api/v1/coding/sheet", string(body))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Rows int `json:"rows"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Rows != 2 {
		t.Errorf("rows = %d, want 2", resp.Rows)
	}
}

func TestCommentStatsEndpoint(t *testing.T) {
	repo := &stubRepo{
		videos: []models.VideoInfo{{VideoID: "v1", PublishedAt: "2025-07-01T00:00:00Z"}},
		comments: []models.Comment{
			{CommentID: "c1", VideoID: "v1"},
			{CommentID: "c2", VideoID: "v1"},
		},
	}
	router := newTestRouter(repo)

	w := doJSON(t, router, http.MethodGet, "/api/v1/comments/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Counts        map[string]int `json:"counts"`
		TotalComments int            `json:"total_comments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.TotalComments != 2 || resp.Counts["v1"] != 2 {
		t.Errorf("unexpected stats: %+v", resp)
	}
}

func TestCollectJobNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	repo := &stubRepo{}

	l := labeler.New(nil)
	collectSvc := service.NewCollectService(nil, collector.Options{}, logger)
	api := NewAPI(service.NewCodingService(l, repo, logger), collectSvc, service.NewReportService(nil, 14, logger), repo, logger)

	router := gin.New()
	api.RegisterRoutes(router)

	w := doJSON(t, router, http.MethodGet, "/api/v1/collect/jobs/unknown", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}
