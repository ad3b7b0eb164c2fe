package upload

import (
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"
)

// A Store keeps uploaded files in folders named after the upload day, like
// "2022/05/10". The folder path plus the stored filename is the durable
// reference, both are recorded with the attachment.
type Store interface {
	// Upload writes src into the folder of the given day. It returns the
	// folder path and the stored filename, which may have been renamed to
	// avoid a collision.
	Upload(day time.Time, filename string, src io.Reader) (path string, storedName string, err error)
	Open(path, filename string) (io.ReadCloser, error)
	Remove(path, filename string) error
}

// FolderPath returns the store folder for a given day.
func FolderPath(day time.Time) string {
	return day.Format("2006/01/02")
}

func CleanFilename(filename string) (string, error) {
	filename = filepath.Base(filename)
	filename = strings.TrimSpace(filename)
	if strings.Contains(filename, "/") || strings.Contains(filename, `\`) {
		return "", errors.New("filename contains a slash")
	}
	if filename == "" || filename == "." {
		return "", errors.New("filename is empty")
	}
	return filename, nil
}
