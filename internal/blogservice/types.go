package blogservice

import (
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/sushihentaime/haerin/internal/common"
	"github.com/sushihentaime/haerin/internal/mediaservice"
	"github.com/sushihentaime/haerin/internal/metrics"
)

type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

const (
	// UntitledDraft is persisted when a draft is saved without a title.
	UntitledDraft = "Untitled Draft"

	MinTitleLength   = 5
	MaxTitleLength   = 200
	MinContentLength = 20

	DefaultPageLimit = 10
	MaxPageLimit     = 50
)

// CoverImage references an uploaded asset. A nil *CoverImage means the blog has no image.
type CoverImage struct {
	URL     string `json:"url"`
	AssetID string `json:"asset_id"`
}

type Owner struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Blog struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	// Content is rich text (HTML) with script blocks removed.
	Content       string      `json:"content"`
	Cover         *CoverImage `json:"cover_image"`
	Status        Status      `json:"status"`
	Owner         Owner       `json:"owner"`
	LikesCount    int         `json:"likes_count"`
	CommentsCount int         `json:"comments_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
	PublishedAt   *time.Time  `json:"published_at,omitempty"`
	Version       int         `json:"version"`
}

// Submission is a create or update request. Cover is nil when no new image is attached.
type Submission struct {
	Title   string
	Content string
	Status  Status
	Cover   io.Reader
}

// Fields are the values a transition asks the store to persist.
type Fields struct {
	Title   string
	Content string
	Status  Status
	// UploadCover is set when the submission carries a new image.
	UploadCover bool
	// StampPublished is set on the first transition to published.
	StampPublished bool
}

// Page is a 1-based page request. Zero values select the defaults.
type Page struct {
	Page  int
	Limit int
}

type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

type BlogModel struct {
	db *sql.DB
}

type BlogService struct {
	m       *BlogModel
	media   mediaservice.Store
	mb      common.MessageProducer
	c       *common.Cache
	metrics *metrics.Manager
	logger  *slog.Logger
}
