// Package handler exposes the HTTP API over the labeling, collection and
// reporting services.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/repository"
	"github.com/cocoide/youtube-ideology-analysis/internal/service"
)

type API struct {
	coding  *service.CodingService
	collect *service.CollectService
	reports *service.ReportService
	repo    repository.CommentRepository
	logger  *zap.Logger
}

func NewAPI(
	coding *service.CodingService,
	collect *service.CollectService,
	reports *service.ReportService,
	repo repository.CommentRepository,
	logger *zap.Logger,
) *API {
	return &API{
		coding:  coding,
		collect: collect,
		reports: reports,
		repo:    repo,
		logger:  logger,
	}
}

func (a *API) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", a.health)

	v1 := router.Group("/api/v1")
	{
		v1.POST("/label", a.labelText)
		v1.POST("/collect", a.startCollect)
		v1.GET("/collect/jobs/:id", a.collectJob)
		v1.POST("/coding/sheet", a.generateSheet)
		v1.POST("/reports", a.generateReport)
		v1.GET("/comments/stats", a.commentStats)
	}
}

func (a *API) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type labelRequest struct {
	Text string `json:"text" binding:"required"`
}

func (a *API) labelText(c *gin.Context) {
	var req labelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, a.coding.LabelText(req.Text))
}

func (a *API) startCollect(c *gin.Context) {
	var req service.CollectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	job, err := a.collect.Start(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, job)
}

func (a *API) collectJob(c *gin.Context) {
	job, ok := a.collect.Job(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
		return
	}
	c.JSON(http.StatusOK, job)
}

func (a *API) generateSheet(c *gin.Context) {
	var req service.SheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	written, err := a.coding.GenerateSheet(req)
	if err != nil {
		a.logger.Error("Sheet generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": req.OutputPath, "rows": written})
}

func (a *API) generateReport(c *gin.Context) {
	var req service.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.reports.Generate(req); err != nil {
		a.logger.Error("Report generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"output_dir": req.OutputDir})
}

func (a *API) commentStats(c *gin.Context) {
	videos, err := a.repo.GetVideos()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	counts, err := a.repo.CountByVideo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	total := 0
	for _, n := range counts {
		total += n
	}

	c.JSON(http.StatusOK, gin.H{
		"videos":         videos,
		"counts":         counts,
		"total_comments": total,
	})
}
