package models

// VideoInfo holds metadata for a video whose comments are collected.
type VideoInfo struct {
	VideoID     string `json:"video_id" db:"video_id"`
	PublishedAt string `json:"published_at" db:"published_at"`
	Frame       string `json:"frame,omitempty" db:"frame"`
}

// Comment is a single collected comment. Timestamps are kept as the
// ISO-8601 strings the API returns; the report engine parses them lazily.
type Comment struct {
	CommentID        string `json:"comment_id" db:"comment_id"`
	VideoID          string `json:"video_id" db:"video_id"`
	VideoPublishedAt string `json:"video_published_at,omitempty" db:"video_published_at"`
	PublishedAt      string `json:"published_at" db:"published_at"`
	UpdatedAt        string `json:"updated_at,omitempty" db:"updated_at"`
	LikeCount        int64  `json:"like_count" db:"like_count"`
	TotalReplyCount  int64  `json:"total_reply_count" db:"total_reply_count"`
	Text             string `json:"text" db:"text"`
}
