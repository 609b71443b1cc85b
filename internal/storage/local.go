package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"matreshka-feed/internal/domain"
)

// LocalStore keeps blobs as files under a fixed data directory.
// Refs are directory-relative paths; thumbnails live under thumbs/.
// Writes go through a temp file and an atomic rename so a crash never
// leaves a half-written image servable.
type LocalStore struct {
	dataDir string
}

func NewLocalStore(dataDir string) (*LocalStore, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, "thumbs"), 0o750); err != nil {
		return nil, err
	}
	return &LocalStore{dataDir: dataDir}, nil
}

func (s *LocalStore) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ref := filepath.ToSlash(name)
	fullPath := filepath.Join(s.dataDir, filepath.FromSlash(ref))
	tmpPath := fullPath + ".tmp"

	f, err := os.Create(tmpPath)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		os.Remove(tmpPath)
		return "", err
	}
	return ref, nil
}

func (s *LocalStore) Get(ctx context.Context, ref string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrBlobNotFound
		}
		return nil, err
	}
	return f, nil
}

func (s *LocalStore) Delete(ctx context.Context, ref string) error {
	fullPath, err := s.resolve(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *LocalStore) URL(ref string) string {
	return "/uploads/" + ref
}

func (s *LocalStore) Ping(ctx context.Context) error {
	_, err := os.Stat(s.dataDir)
	return err
}

// resolve maps a ref back inside the data directory, rejecting refs
// that try to escape it.
func (s *LocalStore) resolve(ref string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(ref))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", domain.ErrBlobNotFound
	}
	return filepath.Join(s.dataDir, clean), nil
}
