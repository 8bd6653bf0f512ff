package email_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zafarimam8588/ayo-portal/pkg/email"
)

func TestDevSender_SendEmail(t *testing.T) {
	dir := t.TempDir()
	sender := email.NewDevSender(dir)

	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "member@example.com",
		Subject:  "Test Subject",
		BodyHTML: "<p>hello</p>",
		Tag:      "test-tag",
	})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var htmlFile, jsonFile string
	for _, e := range entries {
		switch filepath.Ext(e.Name()) {
		case ".html":
			htmlFile = e.Name()
		case ".json":
			jsonFile = e.Name()
		}
	}
	require.NotEmpty(t, htmlFile)
	require.NotEmpty(t, jsonFile)
	assert.Contains(t, htmlFile, "test-tag")

	html, err := os.ReadFile(filepath.Join(dir, htmlFile))
	require.NoError(t, err)
	assert.Equal(t, "<p>hello</p>", string(html))

	meta, err := os.ReadFile(filepath.Join(dir, jsonFile))
	require.NoError(t, err)
	assert.Contains(t, string(meta), "member@example.com")
}

func TestDevSender_RejectsInvalidParams(t *testing.T) {
	dir := t.TempDir()
	sender := email.NewDevSender(dir)
	err := sender.SendEmail(context.Background(), email.SendEmailParams{
		SendTo:   "broken",
		Subject:  "s",
		BodyHTML: "b",
	})
	assert.ErrorIs(t, err, email.ErrInvalidParams)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}
