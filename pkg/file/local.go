package file

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps files on the local filesystem, confined to baseDir.
// It is the development backend; production uses S3Storage.
type LocalStorage struct {
	baseDir string
	baseURL string
}

// NewLocalStorage creates a filesystem store rooted at baseDir, creating
// the directory if needed. baseURL is the public prefix for URL().
func NewLocalStorage(baseDir, baseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		return nil, ErrInvalidConfig
	}

	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, errors.Join(ErrInvalidConfig, err)
	}
	if err := os.MkdirAll(absBaseDir, 0o755); err != nil {
		return nil, errors.Join(ErrFailedToStore, err)
	}

	if baseURL != "" && !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	return &LocalStorage{baseDir: absBaseDir, baseURL: baseURL}, nil
}

// Save writes the uploaded file under path, creating parent directories.
// Partial files are removed on failure.
func (s *LocalStorage) Save(ctx context.Context, fh *multipart.FileHeader, path string) (*File, error) {
	if fh == nil {
		return nil, ErrNilFileHeader
	}
	path, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	src, err := fh.Open()
	if err != nil {
		return nil, errors.Join(ErrFailedToStore, err)
	}
	defer func() { _ = src.Close() }()

	dest := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return nil, errors.Join(ErrFailedToStore, err)
	}

	out, err := os.Create(dest)
	if err != nil {
		return nil, errors.Join(ErrFailedToStore, err)
	}

	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dest)
		return nil, errors.Join(ErrFailedToStore, err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dest)
		return nil, errors.Join(ErrFailedToStore, err)
	}

	mimeType, err := DetectMIMEType(fh)
	if err != nil {
		mimeType = "application/octet-stream"
	}

	return &File{
		Filename:     SanitizeFilename(fh.Filename),
		Size:         fh.Size,
		MIMEType:     mimeType,
		RelativePath: path,
	}, nil
}

// Delete removes a single file.
func (s *LocalStorage) Delete(ctx context.Context, path string) error {
	path, err := cleanPath(path)
	if err != nil {
		return err
	}

	dest := filepath.Join(s.baseDir, filepath.FromSlash(path))
	if _, err := os.Stat(dest); err != nil {
		if os.IsNotExist(err) {
			return ErrFileNotFound
		}
		return errors.Join(ErrFailedToDelete, err)
	}
	if err := os.Remove(dest); err != nil {
		return errors.Join(ErrFailedToDelete, err)
	}
	return nil
}

// Exists reports whether path holds a regular file.
func (s *LocalStorage) Exists(ctx context.Context, path string) bool {
	path, err := cleanPath(path)
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(s.baseDir, filepath.FromSlash(path)))
	return err == nil && info.Mode().IsRegular()
}

// URL joins the public base URL with the stored path.
func (s *LocalStorage) URL(path string) string {
	path = strings.TrimPrefix(path, "/")
	return s.baseURL + path
}

// FileServer returns a handler serving the stored files. Mount it under the
// same prefix as the configured base URL.
func (s *LocalStorage) FileServer() http.Handler {
	return http.FileServer(http.Dir(s.baseDir))
}
