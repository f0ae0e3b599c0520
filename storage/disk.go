package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"
)

var ErrInvalidName = errors.New("invalid blob name")

type DiskStorage struct {
	// BasePath is a directory (usually mount point of a disk) that is writable by the current process
	BasePath  string
	dirs      map[string]bool
	dirsMutex sync.Mutex
	log       zerolog.Logger
}

func NewDiskStorage(basePath string, log zerolog.Logger) (*DiskStorage, error) {
	s := &DiskStorage{
		BasePath: basePath,
		dirs:     make(map[string]bool, 10),
		log:      log,
	}
	if err := s.createDir(basePath); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	log.Info().Str("path", basePath).Msg("disk storage initialized")
	return s, nil
}

func (s *DiskStorage) createDir(dir string) error {
	s.dirsMutex.Lock()
	defer s.dirsMutex.Unlock()

	if ok := s.dirs[dir]; ok {
		return nil
	}
	if err := os.MkdirAll(dir, 0777); err != nil {
		return err
	}
	s.dirs[dir] = true
	return nil
}

func (s *DiskStorage) getFullPath(name string) (string, error) {
	// Names are flat, generated tokens; anything path-like is rejected
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(s.BasePath, name), nil
}

func (s *DiskStorage) Save(ctx context.Context, name string, reader io.Reader, mimeType string) (int64, error) {
	fileName, err := s.getFullPath(name)
	if err != nil {
		return 0, err
	}
	if err = s.createDir(filepath.Dir(fileName)); err != nil {
		return 0, err
	}
	file, err := os.Create(fileName)
	if err != nil {
		return 0, err
	}
	result, err := io.Copy(file, reader)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(fileName)
		return 0, err
	}
	return result, nil
}

func (s *DiskStorage) Delete(ctx context.Context, name string) error {
	fileName, err := s.getFullPath(name)
	if err != nil {
		return err
	}
	if err = os.Remove(fileName); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// FreeSpace returns the bytes available to unprivileged users on the disk
func (s *DiskStorage) FreeSpace() (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(s.BasePath, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}
