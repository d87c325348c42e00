package storage

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/zatekoja/clinic-site/internal/domain/providers"
	apperrors "github.com/zatekoja/clinic-site/pkg/errors"
)

// allowedImageTypes maps the sniffed content type to the stored file extension
var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// LocalStorage stores uploaded images on the local filesystem
type LocalStorage struct {
	dir      string
	baseURL  string
	maxBytes int64
}

var _ providers.MediaStorage = (*LocalStorage)(nil)

// NewLocalStorage creates the media directory if needed
func NewLocalStorage(dir, baseURL string, maxBytes int64) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media dir %s: %w", dir, err)
	}
	return &LocalStorage{
		dir:      dir,
		baseURL:  strings.TrimRight(baseURL, "/"),
		maxBytes: maxBytes,
	}, nil
}

// Dir returns the directory files are written to
func (s *LocalStorage) Dir() string {
	return s.dir
}

// Save writes r under a generated key. The content type is sniffed from the
// data; the declared contentType is only used when sniffing is inconclusive.
func (s *LocalStorage) Save(ctx context.Context, name, contentType string, r io.Reader) (*providers.StoredMedia, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, apperrors.NewInternalError("failed to read upload", err)
	}
	if len(head) == 0 {
		return nil, apperrors.NewValidationError("file is empty")
	}

	sniffed := http.DetectContentType(head)
	if sniffed == "application/octet-stream" && contentType != "" {
		sniffed = contentType
	}
	ext, ok := allowedImageTypes[sniffed]
	if !ok {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unsupported file type %s; only JPEG, PNG, GIF and WebP images are allowed", sniffed))
	}

	key := uuid.New().String() + ext
	path := filepath.Join(s.dir, key)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to create media file", err)
	}

	written, err := io.Copy(f, io.LimitReader(br, s.maxBytes+1))
	closeErr := f.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, apperrors.NewInternalError("failed to write media file", err)
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return nil, apperrors.NewValidationError(fmt.Sprintf("file exceeds the %d byte limit", s.maxBytes))
	}

	log.Ctx(ctx).Debug().Str("key", key).Str("original_name", name).Int64("size", written).Msg("Stored media upload")

	return &providers.StoredMedia{
		Key:         key,
		URL:         s.baseURL + "/" + key,
		ContentType: sniffed,
		Size:        written,
	}, nil
}

// Delete removes a stored file; a missing file is not an error
func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	if key == "" || key != filepath.Base(key) {
		return apperrors.NewValidationError("invalid media key")
	}
	if err := os.Remove(filepath.Join(s.dir, key)); err != nil && !os.IsNotExist(err) {
		return apperrors.NewInternalError("failed to delete media file", err)
	}
	return nil
}

// KeyFromURL extracts the storage key from a URL this storage produced
func (s *LocalStorage) KeyFromURL(url string) (string, bool) {
	prefix := s.baseURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if key == "" || key != filepath.Base(key) {
		return "", false
	}
	return key, true
}
