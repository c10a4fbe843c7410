package filestorage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

// FileStorageInterface keeps copies of uploaded files. Paths it returns are
// relative to the storage root and use forward slashes.
type FileStorageInterface interface {
	Save(file io.Reader, originalFileName string, prefix string) (filePath string, err error)
	Delete(filePath string) error
}

type LocalFileStorage struct {
	basePath string
	clock    clockwork.Clock
}

func NewLocalFileStorage(basePath string, clock clockwork.Clock) (FileStorageInterface, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root %s: %w", basePath, err)
	}
	return &LocalFileStorage{basePath: basePath, clock: clock}, nil
}

// Save writes file under prefix/YYYY/MM/DD with a unique name that keeps
// the original extension.
func (s *LocalFileStorage) Save(file io.Reader, originalFileName string, prefix string) (string, error) {
	now := s.clock.Now()
	ext := strings.ToLower(filepath.Ext(originalFileName))
	uniqueFileName := fmt.Sprintf("%s-%s%s", now.Format("150405"), uuid.NewString(), ext)

	datePath := now.Format("2006/01/02")
	fullDirPath := filepath.Join(s.basePath, prefix, datePath)
	if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
		return "", err
	}

	dst, err := os.Create(filepath.Join(fullDirPath, uniqueFileName))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		return "", err
	}
	return filepath.ToSlash(filepath.Join(prefix, datePath, uniqueFileName)), nil
}

// Delete is a no-op for a file that is already gone.
func (s *LocalFileStorage) Delete(filePath string) error {
	rel := filepath.Clean(filepath.FromSlash(filePath))
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("path %q escapes the storage root", filePath)
	}
	err := os.Remove(filepath.Join(s.basePath, rel))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
