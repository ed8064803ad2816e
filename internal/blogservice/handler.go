package blogservice

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sushihentaime/haerin/internal/common"
	"github.com/sushihentaime/haerin/internal/mediaservice"
	"github.com/sushihentaime/haerin/internal/metrics"
)

func NewBlogService(db *sql.DB, media mediaservice.Store, mb common.MessageProducer, c *common.Cache, m *metrics.Manager, logger *slog.Logger) *BlogService {
	return &BlogService{
		m:       newBlogModel(db),
		media:   media,
		mb:      mb,
		c:       c,
		metrics: m,
		logger:  logger,
	}
}

// CreateBlog validates the submission, uploads the cover image if one is attached and stores the blog.
func (s *BlogService) CreateBlog(ctx context.Context, ownerID int64, sub Submission) (*Blog, error) {
	v := common.NewValidator()
	validateID(v, ownerID, "user_id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	f, err := Transition(nil, sub.Status, sub, nil)
	if err != nil {
		return nil, err
	}

	blog := &Blog{
		Title:   f.Title,
		Content: f.Content,
		Status:  f.Status,
		Owner:   Owner{ID: ownerID},
	}

	if f.UploadCover {
		blog.Cover, err = s.uploadCover(ctx, sub)
		if err != nil {
			return nil, err
		}
	}

	err = s.m.insert(ctx, blog, f.StampPublished)
	if err != nil {
		if blog.Cover != nil {
			s.publishOrphaned(ctx, blog.Cover.AssetID)
		}
		return nil, err
	}

	s.metrics.BlogTransition("new", string(blog.Status))

	return blog, nil
}

// UpdateBlog applies the submission to a blog owned by ownerID. A new cover image replaces
// the previous one, which is then released for cleanup.
func (s *BlogService) UpdateBlog(ctx context.Context, ownerID, blogID int64, sub Submission) (*Blog, error) {
	v := common.NewValidator()
	validateID(v, ownerID, "user_id")
	validateID(v, blogID, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	existing, err := s.m.getByID(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if existing.Owner.ID != ownerID {
		return nil, ErrRecordNotFound
	}

	f, err := Transition(&existing.Status, sub.Status, sub, existing)
	if err != nil {
		return nil, err
	}

	blog := *existing
	blog.Title = f.Title
	blog.Content = f.Content
	blog.Status = f.Status

	if f.UploadCover {
		blog.Cover, err = s.uploadCover(ctx, sub)
		if err != nil {
			return nil, err
		}
	}

	err = s.m.update(ctx, &blog, f.StampPublished)
	if err != nil {
		if f.UploadCover {
			s.publishOrphaned(ctx, blog.Cover.AssetID)
		}
		return nil, err
	}

	if f.UploadCover && existing.Cover != nil {
		s.publishOrphaned(ctx, existing.Cover.AssetID)
	}

	s.c.Delete(common.CacheKeyBlog(blogID))
	s.metrics.BlogTransition(string(existing.Status), string(blog.Status))

	return &blog, nil
}

// DeleteBlog removes a blog owned by ownerID and releases its cover image.
func (s *BlogService) DeleteBlog(ctx context.Context, ownerID, blogID int64) error {
	v := common.NewValidator()
	validateID(v, ownerID, "user_id")
	validateID(v, blogID, "id")
	if !v.Valid() {
		return v.ValidationError()
	}

	assetID, err := s.m.delete(ctx, blogID, ownerID)
	if err != nil {
		return err
	}

	s.c.Delete(common.CacheKeyBlog(blogID))

	if assetID != "" {
		s.publishOrphaned(ctx, assetID)
	}

	return nil
}

// GetBlog returns a published blog, or a draft when viewerID owns it. viewerID is 0 for anonymous requests.
func (s *BlogService) GetBlog(ctx context.Context, viewerID, blogID int64) (*Blog, error) {
	v := common.NewValidator()
	validateID(v, blogID, "id")
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	blog, err := s.getCached(ctx, blogID)
	if err != nil {
		return nil, err
	}

	if blog.Status == StatusDraft && blog.Owner.ID != viewerID {
		return nil, ErrRecordNotFound
	}

	return blog, nil
}

func (s *BlogService) getCached(ctx context.Context, id int64) (*Blog, error) {
	if cached, ok := s.c.Get(common.CacheKeyBlog(id)); ok {
		blog := cached.(Blog)
		return &blog, nil
	}

	blog, err := s.m.getByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// not ordered against the Delete in the write paths: a read racing a write may cache the
	// row it saw until the entry expires
	s.c.Set(common.CacheKeyBlog(id), *blog)

	return blog, nil
}

// ListMyBlogs returns the owner's blogs. A nil status lists drafts and published blogs together.
func (s *BlogService) ListMyBlogs(ctx context.Context, ownerID int64, status *Status, p Page) ([]Blog, Pagination, error) {
	v := common.NewValidator()
	validateID(v, ownerID, "user_id")
	if status != nil {
		validateStatus(v, *status)
	}
	validatePage(v, &p)
	if !v.Valid() {
		return nil, Pagination{}, v.ValidationError()
	}

	var filter Status
	if status != nil {
		filter = *status
	}

	blogs, total, err := s.m.listByOwner(ctx, ownerID, filter, p)
	if err != nil {
		return nil, Pagination{}, err
	}

	return blogs, newPagination(p, total), nil
}

// ListPublished returns the public feed, optionally filtered by a title search.
func (s *BlogService) ListPublished(ctx context.Context, q string, p Page) ([]Blog, Pagination, error) {
	v := common.NewValidator()
	v.Check(v.CheckStringLength(q, 0, MaxTitleLength), "q", "must not be more than 200 characters long")
	validatePage(v, &p)
	if !v.Valid() {
		return nil, Pagination{}, v.ValidationError()
	}

	blogs, total, err := s.m.listPublished(ctx, q, p)
	if err != nil {
		return nil, Pagination{}, err
	}

	return blogs, newPagination(p, total), nil
}

// ToggleLike likes a published blog, or unlikes it when the user already did.
func (s *BlogService) ToggleLike(ctx context.Context, userID, blogID int64) (bool, int, error) {
	v := common.NewValidator()
	validateID(v, userID, "user_id")
	validateID(v, blogID, "id")
	if !v.Valid() {
		return false, 0, v.ValidationError()
	}

	liked, likes, err := s.m.toggleLike(ctx, blogID, userID)
	if err != nil {
		return false, 0, err
	}

	s.c.Delete(common.CacheKeyBlog(blogID))

	return liked, likes, nil
}

func (s *BlogService) uploadCover(ctx context.Context, sub Submission) (*CoverImage, error) {
	asset, err := s.media.Upload(ctx, sub.Cover, mediaservice.CoverFolder)
	if err != nil {
		var msg string
		switch {
		case errors.Is(err, mediaservice.ErrUnsupportedMedia):
			msg = "must be a jpeg, png, gif or webp image"
		case errors.Is(err, mediaservice.ErrMediaTooLarge):
			msg = "must be less than 5MB"
		case errors.Is(err, mediaservice.ErrEmptyMedia):
			msg = "must not be empty"
		default:
			s.metrics.MediaUpload("failed")
			return nil, fmt.Errorf("could not upload cover image: %w", err)
		}

		s.metrics.MediaUpload("rejected")
		return nil, common.ValidationError{Errors: map[string]string{"cover_image": msg}}
	}

	s.metrics.MediaUpload("stored")

	return &CoverImage{URL: asset.URL, AssetID: asset.AssetID}, nil
}

// publishOrphaned hands an unreferenced asset to the orphan cleaner. Failures are only logged.
func (s *BlogService) publishOrphaned(ctx context.Context, assetID string) {
	msg, err := json.Marshal(common.MediaOrphanedEvent{AssetID: assetID})
	if err != nil {
		s.logger.Error("could not marshal media.orphaned event", slog.String("error", err.Error()))
		return
	}

	// the request context may already be cancelled when the write failed
	err = s.mb.Publish(context.WithoutCancel(ctx), msg, common.MediaOrphanedKey, common.MediaExchange)
	if err != nil {
		s.logger.Error("could not publish media.orphaned event", slog.String("asset_id", assetID), slog.String("error", err.Error()))
	}
}
