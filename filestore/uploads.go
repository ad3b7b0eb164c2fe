package filestore

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DNSK-LINK/basecamp-replica/upload"
)

// Store implements upload.Store on the local filesystem.
type Store struct {
	UploadDir string // like "./uploads"
}

func (s *Store) folderFs(path string) string {
	return filepath.Join(s.UploadDir, filepath.FromSlash(path))
}

func (s *Store) Upload(day time.Time, filename string, src io.Reader) (string, string, error) {

	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return "", "", err
	}

	var path = upload.FolderPath(day)

	err = os.MkdirAll(s.folderFs(path), 0755) // 755 is required if the webserver runs as a different user
	if err != nil {
		return "", "", err
	}

	// files of all projects share the day folder, rename on collision

	var storedName = filename
	for i := 2; ; i++ {
		if _, err := os.Stat(filepath.Join(s.folderFs(path), storedName)); os.IsNotExist(err) {
			break
		} else if err != nil {
			return "", "", err
		}
		var ext = filepath.Ext(filename)
		storedName = fmt.Sprintf("%s-%d%s", strings.TrimSuffix(filename, ext), i, ext)
	}

	dst, err := os.Create(filepath.Join(s.folderFs(path), storedName)) // creates or truncates the named file, umask 0666
	if err != nil {
		return "", "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", "", err
	}

	return path, storedName, nil
}

func (s *Store) Open(path, filename string) (io.ReadCloser, error) {
	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return nil, err
	}
	return os.Open(filepath.Join(s.folderFs(path), filename))
}

func (s *Store) Remove(path, filename string) error {

	filename, err := upload.CleanFilename(filename)
	if err != nil {
		return err
	}

	if err := os.Remove(filepath.Join(s.folderFs(path), filename)); err != nil {
		return err
	}

	_ = os.Remove(s.folderFs(path)) // try to remove folder, works only if the folder is empty
	return nil
}
