package file_test

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafarimam8588/ayo-portal/pkg/file"
)

// multipartFixture builds a *multipart.FileHeader the way a real upload
// handler would receive it.
func multipartFixture(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("picture", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))

	return req.MultipartForm.File["picture"][0]
}

// pngHeader is the magic prefix http.DetectContentType recognizes as
// image/png.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func TestLocalStorage_SaveAndDelete(t *testing.T) {
	ctx := context.Background()
	store, err := file.NewLocalStorage(t.TempDir(), "/files/")
	require.NoError(t, err)

	fh := multipartFixture(t, "my photo.png", pngHeader)

	saved, err := store.Save(ctx, fh, "gallery/photo.png")
	require.NoError(t, err)
	assert.Equal(t, "my_photo.png", saved.Filename)
	assert.Equal(t, "image/png", saved.MIMEType)
	assert.Equal(t, "gallery/photo.png", saved.RelativePath)

	assert.True(t, store.Exists(ctx, "gallery/photo.png"))
	assert.Equal(t, "/files/gallery/photo.png", store.URL("gallery/photo.png"))

	require.NoError(t, store.Delete(ctx, "gallery/photo.png"))
	assert.False(t, store.Exists(ctx, "gallery/photo.png"))
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	store, err := file.NewLocalStorage(t.TempDir(), "/files/")
	require.NoError(t, err)

	fh := multipartFixture(t, "x.png", pngHeader)

	_, err = store.Save(ctx, fh, "../outside.png")
	assert.ErrorIs(t, err, file.ErrInvalidPath)

	assert.ErrorIs(t, store.Delete(ctx, "../etc/passwd"), file.ErrInvalidPath)
	assert.False(t, store.Exists(ctx, "../etc/passwd"))
}

func TestLocalStorage_DeleteMissing(t *testing.T) {
	store, err := file.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)

	assert.ErrorIs(t, store.Delete(context.Background(), "nope.png"), file.ErrFileNotFound)
}

func TestIsAllowedImage(t *testing.T) {
	assert.True(t, file.IsAllowedImage(multipartFixture(t, "a.png", pngHeader)))
	assert.False(t, file.IsAllowedImage(multipartFixture(t, "a.txt", []byte("plain text content"))))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"my photo.png", "my_photo.png"},
		{"../../evil.sh", "evil.sh"},
		{"we!rd ch@rs.png", "werd_chrs.png"},
		{"", "upload"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, file.SanitizeFilename(tt.input))
	}
}
