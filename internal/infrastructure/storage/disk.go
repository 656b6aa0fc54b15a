package storage

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/foodscan/backend/internal/domain"
	"github.com/google/uuid"
)

// DiskStore stores uploaded images in a single directory. Generated filenames
// are unique, so concurrent saves never contend on the same file.
type DiskStore struct {
	dir      string
	maxBytes int64
}

// NewDiskStore creates the upload directory if needed and returns a store
func NewDiskStore(dir string, maxBytes int64) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	return &DiskStore{
		dir:      dir,
		maxBytes: maxBytes,
	}, nil
}

// Save validates and writes one upload, returning the generated filename.
// Rejects non-image content types and payloads over the size ceiling.
func (s *DiskStore) Save(contentType, originalName string, size int64, r io.Reader) (string, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedImageType, contentType)
	}

	if size > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, size, s.maxBytes)
	}

	ext := strings.ToLower(filepath.Ext(originalName))
	if ext == "" {
		ext = ".jpg"
	}

	filename := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	path := filepath.Join(s.dir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	// LimitReader guards against clients lying about the declared size
	written, err := io.Copy(f, io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload: %w", err)
	}
	if written > s.maxBytes {
		os.Remove(path)
		return "", fmt.Errorf("%w: payload exceeded %d bytes", domain.ErrFileTooLarge, s.maxBytes)
	}

	log.Printf("[UPLOAD] Stored %s (%d bytes)", filename, written)
	return filename, nil
}

// Read returns the contents of a stored upload
func (s *DiskStore) Read(filename string) ([]byte, error) {
	path, err := s.resolve(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrUploadNotFound, filename)
		}
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	return data, nil
}

// List returns all stored uploads, newest first
func (s *DiskStore) List() ([]domain.UploadInfo, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list uploads: %w", err)
	}

	uploads := make([]domain.UploadInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		uploads = append(uploads, domain.UploadInfo{
			Filename:   entry.Name(),
			Size:       info.Size(),
			UploadedAt: info.ModTime(),
		})
	}

	sort.Slice(uploads, func(i, j int) bool {
		return uploads[i].UploadedAt.After(uploads[j].UploadedAt)
	})

	return uploads, nil
}

// resolve validates the filename and returns its full path. Rejects anything
// that is not a plain basename so clients cannot escape the upload directory.
func (s *DiskStore) resolve(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrInvalidRequest, filename)
	}
	return filepath.Join(s.dir, filename), nil
}
