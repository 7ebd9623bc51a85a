package storage

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"rps_api/internal/domain"
)

// LocalStore keeps blobs as files under a single directory. The ref is the
// file name; content type is derived from the extension on read.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(ref string) (string, error) {
	// refs are uuid-based names generated by us, but never trust them as paths
	if ref == "" || strings.Contains(ref, "/") || strings.Contains(ref, "..") {
		return "", domain.E(domain.KindBadInput, "invalid file ref")
	}
	return filepath.Join(s.dir, ref), nil
}

func (s *LocalStore) Store(_ context.Context, ref, _ string, data []byte) error {
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return domain.Wrap(domain.KindStorage, "failed to write image", err)
	}
	return nil
}

func (s *LocalStore) Read(_ context.Context, ref string) ([]byte, string, error) {
	p, err := s.path(ref)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", domain.E(domain.KindNotFound, "image not found")
		}
		return nil, "", domain.Wrap(domain.KindStorage, "failed to read image", err)
	}
	ct := mime.TypeByExtension(filepath.Ext(ref))
	if ct == "" {
		ct = "application/octet-stream"
	}
	return data, ct, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	p, err := s.path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return domain.E(domain.KindNotFound, "image not found")
		}
		return domain.Wrap(domain.KindStorage, "failed to delete image", err)
	}
	return nil
}
