// Package file stores uploaded gallery pictures behind a Storage interface
// with S3 and local-disk implementations. Paths are caller-relative keys;
// both backends refuse traversal attempts.
package file

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
)

var (
	ErrInvalidConfig  = errors.New("file: invalid storage config")
	ErrNilFileHeader  = errors.New("file: nil file header")
	ErrInvalidPath    = errors.New("file: invalid path")
	ErrFileNotFound   = errors.New("file: file not found")
	ErrNotImage       = errors.New("file: not an allowed image type")
	ErrFailedToStore  = errors.New("file: failed to store")
	ErrFailedToDelete = errors.New("file: failed to delete")
)

// File is stored file metadata.
type File struct {
	Filename     string
	Size         int64
	MIMEType     string
	RelativePath string
}

// Storage abstracts the picture store.
type Storage interface {
	// Save stores an uploaded file under path and returns metadata.
	Save(ctx context.Context, fh *multipart.FileHeader, path string) (*File, error)
	// Delete removes a single file.
	Delete(ctx context.Context, path string) error
	// Exists reports whether the path holds a file.
	Exists(ctx context.Context, path string) bool
	// URL returns the public URL for a stored path.
	URL(path string) string
}

// imageMIMETypes is the allowlist for gallery uploads.
var imageMIMETypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// IsAllowedImage reports whether the upload's detected MIME type is an
// accepted image format.
func IsAllowedImage(fh *multipart.FileHeader) bool {
	mimeType, err := DetectMIMEType(fh)
	return err == nil && imageMIMETypes[mimeType]
}

// DetectMIMEType sniffs the content type from the first 512 bytes rather
// than trusting the client-supplied header.
func DetectMIMEType(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", ErrNilFileHeader
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer func() { _ = src.Close() }()

	buf := make([]byte, 512)
	n, err := src.Read(buf)
	if err != nil && n == 0 {
		return "", err
	}

	mimeType := http.DetectContentType(buf[:n])
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return mimeType, nil
}

var unsafeFilenameRe = regexp.MustCompile(`[^a-zA-Z0-9\-_.]`)

// SanitizeFilename reduces an uploaded filename to a safe basename.
func SanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameRe.ReplaceAllString(name, "")
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

// cleanPath normalizes a storage key and refuses traversal.
func cleanPath(path string) (string, error) {
	path = strings.TrimPrefix(path, "/")
	if path == "" || strings.Contains(path, "..") {
		return "", ErrInvalidPath
	}
	return path, nil
}
