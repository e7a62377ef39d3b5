// Package youtube wraps the YouTube Data API v3 calls the collector needs:
// video metadata and top-level comment threads.
package youtube

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	youtubeapi "google.golang.org/api/youtube/v3"

	"github.com/cocoide/youtube-ideology-analysis/internal/models"
)

const defaultPageSize = 100

// Client fetches videos and comments through the Data API.
type Client struct {
	service *youtubeapi.Service
	logger  *zap.Logger
}

func NewClient(ctx context.Context, apiKey string, logger *zap.Logger) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("youtube api key is empty")
	}
	service, err := youtubeapi.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &Client{service: service, logger: logger}, nil
}

// VideoInfo fetches a video's snippet and returns its publication time.
func (c *Client) VideoInfo(ctx context.Context, videoID string) (*models.VideoInfo, error) {
	call := c.service.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx)
	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch video %s: %w", videoID, err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("video %s not found", videoID)
	}

	return &models.VideoInfo{
		VideoID:     videoID,
		PublishedAt: resp.Items[0].Snippet.PublishedAt,
	}, nil
}

// FetchComments pages through a video's top-level comment threads until
// maxComments are collected or the pages run out. The order parameter is
// "time" or "relevance" as defined by the API.
func (c *Client) FetchComments(ctx context.Context, video *models.VideoInfo, maxComments int, order string) ([]models.Comment, error) {
	if order == "" {
		order = "time"
	}

	var comments []models.Comment
	pageToken := ""

	for {
		remaining := maxComments - len(comments)
		if remaining <= 0 {
			break
		}
		pageSize := int64(defaultPageSize)
		if int64(remaining) < pageSize {
			pageSize = int64(remaining)
		}

		call := c.service.CommentThreads.List([]string{"snippet"}).
			VideoId(video.VideoID).
			MaxResults(pageSize).
			Order(order).
			TextFormat("plainText").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return comments, fmt.Errorf("failed to fetch comments for %s: %w", video.VideoID, err)
		}

		for _, item := range resp.Items {
			snippet := item.Snippet.TopLevelComment.Snippet
			comments = append(comments, models.Comment{
				CommentID:        item.Snippet.TopLevelComment.Id,
				VideoID:          video.VideoID,
				VideoPublishedAt: video.PublishedAt,
				PublishedAt:      snippet.PublishedAt,
				UpdatedAt:        snippet.UpdatedAt,
				LikeCount:        snippet.LikeCount,
				TotalReplyCount:  item.Snippet.TotalReplyCount,
				Text:             snippet.TextDisplay,
			})
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	c.logger.Info("Comments fetched",
		zap.String("video_id", video.VideoID),
		zap.Int("count", len(comments)))

	return comments, nil
}
