package domain

import (
	"time"

	"github.com/google/uuid"
)

// Photo is one feed entry. FileName and ThumbName are blob references
// whose meaning depends on the storage backend: a data-dir-relative
// path for the local backend, an object key for MinIO. URLs are
// annotated by the service at read time and never persisted.
type Photo struct {
	ID               uuid.UUID `json:"id" db:"photo_id"`
	Owner            string    `json:"owner,omitempty" db:"owner"`
	Category         string    `json:"category,omitempty" db:"category"`
	Description      string    `json:"description,omitempty" db:"description"`
	FileName         string    `json:"filename" db:"file_name"`
	ThumbName        string    `json:"thumbnail,omitempty" db:"thumb_name"`
	OriginalFileName string    `json:"original_filename,omitempty" db:"original_file_name"`
	Width            int       `json:"width" db:"width"`
	Height           int       `json:"height" db:"height"`
	OriginalWidth    int       `json:"original_width,omitempty" db:"original_width"`
	OriginalHeight   int       `json:"original_height,omitempty" db:"original_height"`
	SizeBytes        int64     `json:"size" db:"size_bytes"`
	UploadedAt       time.Time `json:"uploaded_at" db:"uploaded_at"`

	URL          string `json:"url,omitempty" db:"-"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty" db:"-"`
}

// UploadInput carries one raw upload into the service layer, whether it
// came from a multipart form or from the Telegram bot.
type UploadInput struct {
	FileName    string
	Data        []byte
	Owner       string
	Category    string
	Description string
}

// BatchResult reports a batch upload. Per-item failures do not abort
// the batch; Failed counts them and Errors keeps the messages in input
// order for the response body.
type BatchResult struct {
	Uploaded int      `json:"uploaded"`
	Failed   int      `json:"failed"`
	Photos   []Photo  `json:"photos"`
	Errors   []string `json:"errors,omitempty"`
}

// FeedStats is the aggregate view served by /api/stats.
type FeedStats struct {
	TotalPhotos    int64 `json:"total_photos"`
	DistinctOwners int64 `json:"distinct_owners"`
	TotalSizeBytes int64 `json:"total_size_bytes"`
}
