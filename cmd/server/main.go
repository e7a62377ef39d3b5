package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cocoide/youtube-ideology-analysis/internal/collector"
	"github.com/cocoide/youtube-ideology-analysis/internal/config"
	"github.com/cocoide/youtube-ideology-analysis/internal/handler"
	"github.com/cocoide/youtube-ideology-analysis/internal/labeler"
	"github.com/cocoide/youtube-ideology-analysis/internal/repository"
	"github.com/cocoide/youtube-ideology-analysis/internal/service"
	"github.com/cocoide/youtube-ideology-analysis/internal/youtube"
)

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to config file")
	flag.Parse()

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*configPath, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(configPath string, logger *zap.Logger) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	db, err := repository.NewSQLiteDB(cfg.Database.Path, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	dict, err := loadDictionary(cfg.Labeling.DictionaryPath, logger)
	if err != nil {
		return err
	}

	repo := repository.NewCommentRepository(db, logger)
	l := labeler.New(dict)

	ctx := context.Background()

	codingSvc := service.NewCodingService(l, repo, logger)
	reportSvc := service.NewReportService(cfg.Report.Frames, cfg.Report.DaysWindow, logger)

	var collectSvc *service.CollectService
	if cfg.YouTube.APIKey != "" {
		client, err := youtube.NewClient(ctx, cfg.YouTube.APIKey, logger)
		if err != nil {
			return err
		}
		defaults := collector.Options{
			MaxComments: cfg.YouTube.MaxComments,
			Order:       cfg.YouTube.Order,
			Workers:     cfg.YouTube.Workers,
		}
		collectSvc = service.NewCollectService(collector.New(client, repo, logger), defaults, logger)
	} else {
		logger.Warn("No YouTube API key configured, collection endpoints will reject requests")
		collectSvc = service.NewCollectService(nil, collector.Options{}, logger)
	}

	api := handler.NewAPI(codingSvc, collectSvc, reportSvc, repo, logger)

	router := gin.Default()
	api.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("forced shutdown: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func loadDictionary(path string, logger *zap.Logger) (*labeler.Dictionary, error) {
	if path == "" {
		return nil, nil
	}
	dict, err := labeler.LoadDictionary(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load dictionary: %w", err)
	}
	logger.Info("Dictionary loaded", zap.String("path", path))
	return dict, nil
}
