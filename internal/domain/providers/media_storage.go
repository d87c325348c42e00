package providers

import (
	"context"
	"io"
)

// StoredMedia describes a saved upload.
type StoredMedia struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// MediaStorage persists uploaded files and returns their public URL.
type MediaStorage interface {
	Save(ctx context.Context, name, contentType string, r io.Reader) (*StoredMedia, error)
	Delete(ctx context.Context, key string) error
}
