package filestore

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestUpload(t *testing.T) {

	store := &Store{UploadDir: t.TempDir()}
	day := time.Date(2022, 5, 10, 0, 0, 0, 0, time.UTC)

	path, storedName, err := store.Upload(day, "report.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	require.Equal(t, "2022/05/10", path)
	require.Equal(t, "report.pdf", storedName)

	src, err := store.Open(path, storedName)
	require.NoError(t, err)
	content, err := io.ReadAll(src)
	require.NoError(t, err)
	src.Close()
	require.Equal(t, "first", string(content))

	// collisions are renamed, not overwritten
	_, storedName2, err := store.Upload(day, "report.pdf", strings.NewReader("second"))
	require.NoError(t, err)
	require.Equal(t, "report-2.pdf", storedName2)

	_, storedName3, err := store.Upload(day, "report.pdf", strings.NewReader("third"))
	require.NoError(t, err)
	require.Equal(t, "report-3.pdf", storedName3)

	src, err = store.Open(path, storedName)
	require.NoError(t, err)
	content, err = io.ReadAll(src)
	require.NoError(t, err)
	src.Close()
	require.Equal(t, "first", string(content))
}

func TestRemove(t *testing.T) {

	store := &Store{UploadDir: t.TempDir()}
	day := time.Date(2022, 5, 10, 0, 0, 0, 0, time.UTC)

	path, storedName, err := store.Upload(day, "report.pdf", strings.NewReader("content"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(path, storedName))

	_, err = store.Open(path, storedName)
	require.Error(t, err)
}
