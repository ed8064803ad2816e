package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
)

var (
	ErrRecordNotFound = errors.New("record not found")
	ErrUserForeignKey = errors.New("user_id does not exist")
)

const blogColumns = `b.id, b.title, b.content, b.cover_url, b.cover_asset_id, b.status, b.user_id, u.name,
		b.likes_count, b.comments_count, b.created_at, b.updated_at, b.published_at, b.version`

func newBlogModel(db *sql.DB) *BlogModel {
	return &BlogModel{db: db}
}

// ForeignKeyError is a helper function to check if the error is a foreign key constraint error.
func ForeignKeyError(err error, name string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code == "23503" && pqErr.Constraint == name {
			return true
		}
	}

	return false
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBlog(row scanner) (*Blog, error) {
	var (
		blog        Blog
		coverURL    sql.NullString
		coverID     sql.NullString
		publishedAt sql.NullTime
	)

	err := row.Scan(&blog.ID, &blog.Title, &blog.Content, &coverURL, &coverID, &blog.Status, &blog.Owner.ID, &blog.Owner.Name,
		&blog.LikesCount, &blog.CommentsCount, &blog.CreatedAt, &blog.UpdatedAt, &publishedAt, &blog.Version)
	if err != nil {
		return nil, err
	}

	if coverURL.Valid {
		blog.Cover = &CoverImage{URL: coverURL.String, AssetID: coverID.String}
	}

	if publishedAt.Valid {
		t := publishedAt.Time
		blog.PublishedAt = &t
	}

	return &blog, nil
}

func coverArgs(c *CoverImage) (any, any) {
	if c == nil {
		return nil, nil
	}
	return c.URL, c.AssetID
}

func (m *BlogModel) insert(ctx context.Context, blog *Blog, stampPublished bool) error {
	query := `
		WITH b AS (
			INSERT INTO blogs (title, content, cover_url, cover_asset_id, status, user_id, published_at)
			VALUES ($1, $2, $3, $4, $5, $6, CASE WHEN $7::boolean THEN NOW() END)
			RETURNING *
		)
		SELECT ` + blogColumns + `
		FROM b
		JOIN users u ON b.user_id = u.id`

	url, assetID := coverArgs(blog.Cover)

	row := m.db.QueryRowContext(ctx, query, blog.Title, blog.Content, url, assetID, blog.Status, blog.Owner.ID, stampPublished)

	inserted, err := scanBlog(row)
	if err != nil {
		switch {
		case ForeignKeyError(err, "blogs_user_id_fkey"):
			return ErrUserForeignKey
		default:
			return err
		}
	}

	*blog = *inserted

	return nil
}

// getByID joins the users table to get the owner's name.
func (m *BlogModel) getByID(ctx context.Context, id int64) (*Blog, error) {
	query := `
		SELECT ` + blogColumns + `
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE b.id = $1`

	blog, err := scanBlog(m.db.QueryRowContext(ctx, query, id))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return blog, nil
}

// update overwrites the editable fields. Concurrent edits are last-write-wins.
func (m *BlogModel) update(ctx context.Context, blog *Blog, stampPublished bool) error {
	query := `
		UPDATE blogs
		SET title = $1, content = $2, cover_url = $3, cover_asset_id = $4, status = $5,
			published_at = CASE WHEN $6::boolean THEN NOW() ELSE published_at END,
			updated_at = NOW(), version = version + 1
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at, published_at, version`

	url, assetID := coverArgs(blog.Cover)

	var publishedAt sql.NullTime
	err := m.db.QueryRowContext(ctx, query, blog.Title, blog.Content, url, assetID, blog.Status, stampPublished, blog.ID, blog.Owner.ID).
		Scan(&blog.UpdatedAt, &publishedAt, &blog.Version)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}

	blog.PublishedAt = nil
	if publishedAt.Valid {
		t := publishedAt.Time
		blog.PublishedAt = &t
	}

	return nil
}

// delete removes the blog and returns its cover asset id, empty when it had none.
func (m *BlogModel) delete(ctx context.Context, blogID, userID int64) (string, error) {
	query := `
		DELETE FROM blogs
		WHERE id = $1 AND user_id = $2
		RETURNING cover_asset_id`

	var assetID sql.NullString
	err := m.db.QueryRowContext(ctx, query, blogID, userID).Scan(&assetID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return "", ErrRecordNotFound
		default:
			return "", err
		}
	}

	return assetID.String, nil
}

func (m *BlogModel) listBlogs(ctx context.Context, where string, args []any, p Page) ([]Blog, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM blogs b WHERE ` + where
	err := m.db.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	n := len(args)
	query := fmt.Sprintf(`
		SELECT %s
		FROM blogs b
		JOIN users u ON b.user_id = u.id
		WHERE %s
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $%d OFFSET $%d`, blogColumns, where, n+1, n+2)

	rows, err := m.db.QueryContext(ctx, query, append(args, p.Limit, p.offset())...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	blogs := []Blog{}
	for rows.Next() {
		blog, err := scanBlog(rows)
		if err != nil {
			return nil, 0, err
		}
		blogs = append(blogs, *blog)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return blogs, total, nil
}

// listByOwner returns the owner's blogs, newest first. An empty status matches both.
func (m *BlogModel) listByOwner(ctx context.Context, userID int64, status Status, p Page) ([]Blog, int, error) {
	return m.listBlogs(ctx, `b.user_id = $1 AND ($2 = '' OR b.status = $2)`, []any{userID, string(status)}, p)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// listPublished returns published blogs whose title contains q, case-insensitively.
func (m *BlogModel) listPublished(ctx context.Context, q string, p Page) ([]Blog, int, error) {
	return m.listBlogs(ctx, `b.status = 'published' AND ($1 = '' OR b.title ILIKE '%' || $1 || '%')`, []any{likeEscaper.Replace(q)}, p)
}

// toggleLike adds the user's like, or removes it when present, and returns the new count.
// Only published blogs can be liked.
func (m *BlogModel) toggleLike(ctx context.Context, blogID, userID int64) (bool, int, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, err
	}
	defer tx.Rollback()

	var status Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM blogs WHERE id = $1 FOR UPDATE`, blogID).Scan(&status)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return false, 0, ErrRecordNotFound
		default:
			return false, 0, err
		}
	}

	if status != StatusPublished {
		return false, 0, ErrRecordNotFound
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM blog_likes WHERE blog_id = $1 AND user_id = $2`, blogID, userID)
	if err != nil {
		return false, 0, err
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return false, 0, err
	}

	liked := removed == 0
	delta := -1
	if liked {
		_, err = tx.ExecContext(ctx, `INSERT INTO blog_likes (blog_id, user_id) VALUES ($1, $2)`, blogID, userID)
		if err != nil {
			if ForeignKeyError(err, "blog_likes_user_id_fkey") {
				return false, 0, ErrUserForeignKey
			}
			return false, 0, err
		}
		delta = 1
	}

	var likes int
	err = tx.QueryRowContext(ctx, `UPDATE blogs SET likes_count = likes_count + $1 WHERE id = $2 RETURNING likes_count`, delta, blogID).Scan(&likes)
	if err != nil {
		return false, 0, err
	}

	if err := tx.Commit(); err != nil {
		return false, 0, err
	}

	return liked, likes, nil
}
