package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// LocalStore writes images to a directory served by the site itself.
type LocalStore struct {
	dir       string
	urlPrefix string
	mu        sync.Mutex
}

// NewLocalStore stores files under dir and hands out URLs under urlPrefix,
// e.g. NewLocalStore("public/uploads", "/public/uploads").
func NewLocalStore(dir, urlPrefix string) *LocalStore {
	return &LocalStore{dir: dir, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

// Put writes data under a unique file name derived from name.
func (s *LocalStore) Put(_ context.Context, name string, data []byte, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	filename := s.uniqueName(name)
	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return s.urlPrefix + "/" + filename, nil
}

// Delete removes the file behind a URL previously returned by Put. Missing
// files and foreign URLs are ignored.
func (s *LocalStore) Delete(_ context.Context, ref string) error {
	if !strings.HasPrefix(ref, s.urlPrefix+"/") {
		return nil
	}
	filename := path.Base(ref)
	if err := os.Remove(filepath.Join(s.dir, filename)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete image: %w", err)
	}
	return nil
}

// uniqueName appends a counter until the name is free in the directory.
func (s *LocalStore) uniqueName(name string) string {
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	candidate := name
	for counter := 2; ; counter++ {
		if _, err := os.Stat(filepath.Join(s.dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", base, counter, ext)
	}
}
