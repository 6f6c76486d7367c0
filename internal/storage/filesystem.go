package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ImageExtensions lists the file extensions counted as generated images.
var ImageExtensions = []string{".png", ".jpeg", ".webp"}

// FileStore persists generated assets under a single output root.
type FileStore struct {
	basePath string
}

// NewFileStore initializes a FileStore rooted at basePath, creating the
// directory when it does not exist yet.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// OpenFileStore returns a FileStore for basePath without touching the disk.
// Read-only operations on a missing root behave as if it were empty.
func OpenFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	return &FileStore{basePath: basePath}, nil
}

// BasePath returns the configured root directory.
func (s *FileStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

// Path returns the filesystem path of a relative key.
func (s *FileStore) Path(key string) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.basePath, filepath.FromSlash(cleanKey)), nil
}

// EnsureDir creates the directory for key (and its parents). It is idempotent.
func (s *FileStore) EnsureDir(ctx context.Context, key string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	dir, err := s.Path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	return dir, nil
}

// Write persists data at the relative key and returns the written path.
// Keys are cleaned to prevent directory traversal.
func (s *FileStore) Write(ctx context.Context, key string, data []byte) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := s.Path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("storage: ensure directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", fmt.Errorf("storage: write file: %w", err)
	}
	return fullPath, nil
}

// ImageFile is an image found under the output root.
type ImageFile struct {
	Category string
	RelPath  string
	Path     string
}

// CountImages scans the top-level category directories and counts image
// files recursively inside each. Categories without images are omitted.
func (s *FileStore) CountImages() (map[string]int, int, error) {
	counts := make(map[string]int)
	total := 0
	files, err := s.ListImages("")
	if err != nil {
		return nil, 0, err
	}
	for _, f := range files {
		counts[f.Category]++
		total++
	}
	return counts, total, nil
}

// ListImages returns the image files of one category, or of every category
// when category is empty, sorted by relative path. Files placed directly in
// the root belong to no category and are ignored.
func (s *FileStore) ListImages(category string) ([]ImageFile, error) {
	if s == nil {
		return nil, errors.New("storage: no store configured")
	}
	entries, err := os.ReadDir(s.basePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read root: %w", err)
	}

	var out []ImageFile
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if category != "" && entry.Name() != category {
			continue
		}
		root := filepath.Join(s.basePath, entry.Name())
		walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || !isImage(d.Name()) {
				return nil
			}
			rel, err := filepath.Rel(s.basePath, path)
			if err != nil {
				return err
			}
			out = append(out, ImageFile{Category: entry.Name(), RelPath: filepath.ToSlash(rel), Path: path})
			return nil
		})
		if walkErr != nil {
			return nil, fmt.Errorf("storage: scan %s: %w", entry.Name(), walkErr)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

func isImage(name string) bool {
	ext := filepath.Ext(name)
	for _, candidate := range ImageExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("storage: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.Clean(key)
	cleaned = strings.ReplaceAll(cleaned, "\\", "/")
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("storage: invalid key")
	}
	return cleaned, nil
}
