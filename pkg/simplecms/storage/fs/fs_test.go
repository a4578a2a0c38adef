package fs_test

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/simple-cms/pkg/simplecms"
	"github.com/tendant/simple-cms/pkg/simplecms/storage/fs"
)

func TestFSBackend(t *testing.T) {
	tempDir := t.TempDir()

	backend, err := fs.New(fs.Config{BaseDir: tempDir})
	require.NoError(t, err)

	ctx := context.Background()
	objectKey := "ab/cd/object.txt"
	content := "Hello, World!"

	// Test Upload
	err = backend.Upload(ctx, objectKey, strings.NewReader(content))
	assert.NoError(t, err)

	// Verify file exists
	filePath := filepath.Join(tempDir, "ab", "cd", "object.txt")
	_, err = os.Stat(filePath)
	assert.NoError(t, err)

	// Test Download
	reader, err := backend.Download(ctx, objectKey)
	assert.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	assert.NoError(t, err)
	assert.Equal(t, content, string(data))

	// Test GetObjectMeta
	meta, err := backend.GetObjectMeta(ctx, objectKey)
	assert.NoError(t, err)
	assert.Equal(t, int64(len(content)), meta.Size)
	assert.Contains(t, meta.ContentType, "text/plain")

	// Test Delete
	err = backend.Delete(ctx, objectKey)
	assert.NoError(t, err)

	// Verify file no longer exists and empty shard directories are gone
	_, err = os.Stat(filePath)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(tempDir, "ab"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSBackendUploadWithParams(t *testing.T) {
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	ctx := context.Background()
	err = backend.UploadWithParams(ctx, strings.NewReader("<svg/>"), simplecms.UploadParams{
		ObjectKey: "images/logo.svg",
		MimeType:  "image/svg+xml",
	})
	assert.NoError(t, err)

	reader, err := backend.Download(ctx, "images/logo.svg")
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(data))
}

func TestFSBackendWithURLPrefix(t *testing.T) {
	backend, err := fs.New(fs.Config{
		BaseDir:   t.TempDir(),
		URLPrefix: "http://localhost:8080",
	})
	require.NoError(t, err)

	ctx := context.Background()
	objectKey := "test/object.txt"

	uploadURL, err := backend.GetUploadURL(ctx, objectKey)
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/upload/test/object.txt", uploadURL)

	downloadURL, err := backend.GetDownloadURL(ctx, objectKey, "object.txt")
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/download/test/object.txt?filename=object.txt", downloadURL)

	downloadURL, err = backend.GetDownloadURL(ctx, objectKey, "")
	assert.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/download/test/object.txt", downloadURL)
}

func TestFSBackendErrors(t *testing.T) {
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	ctx := context.Background()
	objectKey := "test/object.txt"

	// URL operations require a prefix
	_, err = backend.GetUploadURL(ctx, objectKey)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "direct upload required")

	_, err = backend.GetDownloadURL(ctx, objectKey, "object.txt")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "direct download required")

	// Missing objects
	_, err = backend.Download(ctx, objectKey)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "object not found")

	err = backend.Delete(ctx, objectKey)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "object not found")

	_, err = backend.GetObjectMeta(ctx, objectKey)
	assert.Error(t, err)
}

func TestFSBackendRejectsEscapingKeys(t *testing.T) {
	backend, err := fs.New(fs.Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	ctx := context.Background()
	for _, key := range []string{"../outside.txt", "a/../../outside.txt"} {
		err := backend.Upload(ctx, key, strings.NewReader("nope"))
		assert.Error(t, err, "key %q must be rejected", key)

		_, err = backend.Download(ctx, key)
		assert.Error(t, err, "key %q must be rejected", key)
	}
}

func TestNewFSBackendErrors(t *testing.T) {
	// Empty base directory
	_, err := fs.New(fs.Config{BaseDir: ""})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")

	// A file in place of the base directory
	tempFile, err := os.CreateTemp(t.TempDir(), "not-a-dir")
	require.NoError(t, err)
	require.NoError(t, tempFile.Close())

	_, err = fs.New(fs.Config{BaseDir: tempFile.Name()})
	assert.Error(t, err)
}
