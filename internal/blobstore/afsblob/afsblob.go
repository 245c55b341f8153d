// Package afsblob stores blobs as JSON files through github.com/viant/afs.
//
// The base location is any afs URL. Local paths are accepted as-is and
// mem://localhost/<dir> gives a process-local store used by the memory
// backend and tests.
package afsblob

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"

	"github.com/fyrsmithlabs/roleshuffle/internal/blobstore"
)

// MemoryScheme prefixes in-memory locations.
const MemoryScheme = "mem://localhost/"

const tempSuffix = ".tmp.json"

// Store keeps one object per key under a base URL.
type Store struct {
	fs   afs.Service
	base string

	mu sync.Mutex
}

// Open prepares base, creating the directory if it does not exist.
func Open(ctx context.Context, base string) (*Store, error) {
	if strings.TrimSpace(base) == "" {
		return nil, fmt.Errorf("afsblob: base location is required")
	}
	if !strings.Contains(base, "://") {
		abs, err := filepath.Abs(base)
		if err != nil {
			return nil, fmt.Errorf("afsblob: resolving %s: %w", base, err)
		}
		base = abs
	}

	fs := afs.New()
	exists, err := fs.Exists(ctx, base)
	if err != nil {
		return nil, fmt.Errorf("afsblob: checking %s: %w", base, err)
	}
	if !exists {
		if err := fs.Create(ctx, base, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("afsblob: creating %s: %w", base, err)
		}
	}

	return &Store{fs: fs, base: base}, nil
}

// Base returns the resolved base location.
func (s *Store) Base() string {
	return s.base
}

// Get implements blobstore.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	location, err := s.location(key)
	if err != nil {
		return nil, err
	}

	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("afsblob: checking %s: %w", key, err)
	}
	if !exists {
		return nil, blobstore.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("afsblob: reading %s: %w", key, err)
	}
	return data, nil
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	location, err := s.location(key)
	if err != nil {
		return err
	}
	// The temp name keeps the .json extension; afs.Move rewrites the
	// destination when extensions differ.
	tmp := url.Join(s.base, key+tempSuffix)

	s.mu.Lock()
	defer s.mu.Unlock()

	// Write atomically
	if err := s.fs.Upload(ctx, tmp, 0o600, bytes.NewReader(value)); err != nil {
		return fmt.Errorf("afsblob: writing %s: %w", key, err)
	}
	if err := s.replace(ctx, tmp, location); err != nil {
		_ = s.fs.Delete(ctx, tmp)
		return fmt.Errorf("afsblob: replacing %s: %w", key, err)
	}
	return nil
}

// replace moves src over dst. Local files use rename(2), which never leaves
// dst missing; afs's file mover removes dst first.
func (s *Store) replace(ctx context.Context, src, dst string) error {
	if url.Scheme(dst, file.Scheme) == file.Scheme {
		return os.Rename(file.Path(src), file.Path(dst))
	}
	return s.fs.Move(ctx, src, dst)
}

// Close implements blobstore.Store. Objects stay in place.
func (s *Store) Close() error {
	return nil
}

func (s *Store) location(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") || strings.HasSuffix(key, ".tmp") {
		return "", fmt.Errorf("afsblob: invalid key %q", key)
	}
	return url.Join(s.base, key+".json"), nil
}
