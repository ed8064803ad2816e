package mediaservice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

var folderRX = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

// DiskStore keeps assets on the local filesystem and serves them under <baseURL>/media/.
type DiskStore struct {
	root    string
	baseURL string
}

func NewDiskStore(root, baseURL string) (*DiskStore, error) {
	if root == "" {
		return nil, errors.New("media root cannot be empty")
	}

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("could not create media root: %w", err)
	}

	return &DiskStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

// Upload stores the image read from r in folder. The content is sniffed, the client supplied type is ignored.
func (s *DiskStore) Upload(ctx context.Context, r io.Reader, folder string) (*Asset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !folderRX.MatchString(folder) {
		return nil, fmt.Errorf("invalid folder %q", folder)
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("could not read media: %w", err)
	}

	switch {
	case len(data) == 0:
		return nil, ErrEmptyMedia
	case len(data) > MaxUploadSize:
		return nil, ErrMediaTooLarge
	}

	mt := mimetype.Detect(data)
	if !isAllowed(mt) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, mt.String())
	}

	id := path.Join(folder, uuid.NewString()+mt.Extension())
	full := filepath.Join(s.root, filepath.FromSlash(id))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return nil, fmt.Errorf("could not create folder: %w", err)
	}

	if err := os.WriteFile(full, data, 0o644); err != nil {
		return nil, fmt.Errorf("could not write media: %w", err)
	}

	return &Asset{
		URL:     s.baseURL + "/media/" + id,
		AssetID: id,
	}, nil
}

func (s *DiskStore) Delete(ctx context.Context, assetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !validAssetID(assetID) {
		return ErrInvalidAssetID
	}

	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(assetID)))
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return ErrAssetNotFound
		default:
			return fmt.Errorf("could not delete media: %w", err)
		}
	}

	return nil
}

// FileServer serves stored assets. Mount it with the "/media" prefix stripped.
func (s *DiskStore) FileServer() http.Handler {
	return http.FileServer(noDirFS{http.Dir(s.root)})
}

func isAllowed(mt *mimetype.MIME) bool {
	for _, t := range allowedTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

func validAssetID(id string) bool {
	if id == "" || path.IsAbs(id) || strings.Contains(id, `\`) {
		return false
	}
	cleaned := path.Clean(id)
	return cleaned == id && !strings.HasPrefix(cleaned, "..")
}

// noDirFS hides directory listings.
type noDirFS struct {
	fs http.FileSystem
}

func (n noDirFS) Open(name string) (http.File, error) {
	f, err := n.fs.Open(name)
	if err != nil {
		return nil, err
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if stat.IsDir() {
		f.Close()
		return nil, fs.ErrNotExist
	}

	return f, nil
}
