package domain

import (
	"context"
	"io"
	"time"
)

// StructuredAnnotator is a vision provider returning independent label/text/
// object annotation sets with numeric scores.
type StructuredAnnotator interface {
	Annotate(ctx context.Context, image []byte) (*StructuredAnnotations, error)
}

// GenerativeAnnotator is a vision provider returning a single free-form or
// JSON-structured multi-product description. The hint, when non-empty, names a
// product of interest the annotator should prioritize.
type GenerativeAnnotator interface {
	Describe(ctx context.Context, image []byte, hint string) (string, error)
	Configured() bool
}

// ProductClient defines the interface for the external product database's
// text-search endpoint. An empty slice means no records matched; it is not an
// error.
type ProductClient interface {
	SearchProducts(ctx context.Context, term string) ([]OFFProduct, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) (interface{}, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// UploadInfo describes one stored upload
type UploadInfo struct {
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// UploadStore persists uploaded images for the lifetime of the analysis flow.
// Save validates content type and size, generates a unique filename, and must
// tolerate concurrent writes of distinctly-named files.
type UploadStore interface {
	Save(contentType, originalName string, size int64, r io.Reader) (string, error)
	Read(filename string) ([]byte, error)
	List() ([]UploadInfo, error)
}
