package notes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	apperrors "github.com/killallgit/voicenotes/pkg/errors"
)

// DefaultExtension is used when a capture file has no extension
const DefaultExtension = ".m4a"

// AudioPattern matches the audio containers a recording can produce
const AudioPattern = "*.{m4a,wav,aac,caf,3gp}"

// FilesystemStorage implements FileStorage on a local directory
type FilesystemStorage struct {
	basePath string
}

// Ensure FilesystemStorage implements FileStorage
var _ FileStorage = (*FilesystemStorage)(nil)

// NewFilesystemStorage creates a storage backend rooted at basePath. The
// directory is created by EnsureDir, not here.
func NewFilesystemStorage(basePath string) *FilesystemStorage {
	return &FilesystemStorage{basePath: basePath}
}

// Dir returns the storage directory
func (fs *FilesystemStorage) Dir() string {
	return fs.basePath
}

// EnsureDir creates the storage directory if it is missing
func (fs *FilesystemStorage) EnsureDir(ctx context.Context) error {
	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return apperrors.IOError("create storage directory", fs.basePath, err)
	}
	return nil
}

// PathFor returns the storage path for a note id and source extension
func (fs *FilesystemStorage) PathFor(id, ext string) string {
	if ext == "" {
		ext = DefaultExtension
	}
	return filepath.Join(fs.basePath, id+ext)
}

// Import moves src into storage. A rename is tried first; across devices the
// file is copied and the source removed.
func (fs *FilesystemStorage) Import(ctx context.Context, src, id string) (string, error) {
	if src == "" {
		return "", ErrMissingSource
	}
	dst := fs.PathFor(id, strings.ToLower(filepath.Ext(src)))

	if err := os.MkdirAll(fs.basePath, 0755); err != nil {
		return "", apperrors.IOError("create storage directory", fs.basePath, err)
	}

	if err := os.Rename(src, dst); err == nil {
		return dst, nil
	}

	if err := copyFile(src, dst); err != nil {
		os.Remove(dst) // Clean up on error
		return "", apperrors.IOError("import recording", src, err)
	}
	if err := os.Remove(src); err != nil && !os.IsNotExist(err) {
		return "", apperrors.IOError("remove imported source", src, err)
	}
	return dst, nil
}

// Delete removes a file from storage
func (fs *FilesystemStorage) Delete(ctx context.Context, uri string) error {
	if err := os.Remove(uri); err != nil && !os.IsNotExist(err) {
		return apperrors.IOError("delete file", uri, err)
	}
	return nil
}

// Exists checks if a file exists
func (fs *FilesystemStorage) Exists(ctx context.Context, uri string) (bool, error) {
	info, err := os.Stat(uri)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, apperrors.IOError("stat file", uri, err)
	}
	return !info.IsDir(), nil
}

// List returns absolute paths of audio files in the storage directory
func (fs *FilesystemStorage) List(ctx context.Context) ([]string, error) {
	matches, err := doublestar.Glob(os.DirFS(fs.basePath), AudioPattern)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, apperrors.IOError("list storage", fs.basePath, err)
	}

	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		paths = append(paths, filepath.Join(fs.basePath, filepath.FromSlash(m)))
	}
	sort.Strings(paths)
	return paths, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	return out.Close()
}
