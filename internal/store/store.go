// Package store persists mapping overrides as one YAML record per
// (controller, game type) pair.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/soar/padroute/internal/mapping"
)

// Store is a mapping.Persister over a directory tree:
// <dir>/<controller>/<game type>.yaml.
type Store struct {
	fs  afero.Fs
	dir string
	now func() time.Time

	mu sync.Mutex
}

var _ mapping.Persister = (*Store)(nil)

func New(fs afero.Fs, dir string) *Store {
	return &Store{fs: fs, dir: dir, now: time.Now}
}

// Open returns a store rooted at dir on the OS filesystem.
func Open(dir string) (*Store, error) {
	fs := afero.NewOsFs()
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory %s: %w", dir, err)
	}
	return New(fs, dir), nil
}

func (s *Store) path(controller, gameType string) string {
	return filepath.Join(s.dir, fileName(controller), fileName(gameType)+".yaml")
}

func fileName(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, s)
}

func (s *Store) read(controller, gameType string) (*mapping.Record, error) {
	data, err := afero.ReadFile(s.fs, s.path(controller, gameType))
	if errors.Is(err, os.ErrNotExist) {
		return nil, mapping.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping for %s/%s: %w", controller, gameType, err)
	}
	var rec mapping.Record
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %s/%s: %v", mapping.ErrCorrupt, controller, gameType, err)
	}
	// Sanitised names can collide.
	if rec.ControllerName != controller || rec.GameType != gameType {
		return nil, mapping.ErrNotFound
	}
	return &rec, nil
}

// write replaces the record through a temp file and rename, so a reader
// never sees a partial record.
func (s *Store) write(rec *mapping.Record) error {
	path := s.path(rec.ControllerName, rec.GameType)
	if err := s.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.ID, err)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := s.fs.Rename(tmp, path); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (s *Store) LoadOverride(controller, gameType string) (*mapping.Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(controller, gameType)
	if err != nil {
		return nil, err
	}
	if rec.Deleted {
		return nil, mapping.ErrNotFound
	}
	m, err := mapping.Decode([]byte(rec.Mapping))
	if err != nil {
		return nil, fmt.Errorf("failed to decode mapping for %s/%s: %w", controller, gameType, err)
	}
	return m, nil
}

func (s *Store) SaveOverride(controller, gameType string, m *mapping.Mapping) error {
	data, err := mapping.Encode(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(&mapping.Record{
		ID:             controller + "/" + gameType,
		ControllerName: controller,
		GameType:       gameType,
		Mapping:        string(data),
		Modified:       s.now().UTC(),
	})
}

// DeleteOverride marks the record deleted when soft is set, keeping it for
// sync, and removes the file otherwise.
func (s *Store) DeleteOverride(controller, gameType string, soft bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.read(controller, gameType)
	if errors.Is(err, mapping.ErrCorrupt) {
		if !soft {
			return s.remove(controller, gameType)
		}
		// Nothing in the corrupt file can be kept; a tombstone replaces it.
		return s.write(&mapping.Record{
			ID:             controller + "/" + gameType,
			ControllerName: controller,
			GameType:       gameType,
			Deleted:        true,
			Modified:       s.now().UTC(),
		})
	}
	if err != nil {
		return err
	}
	if rec.Deleted {
		return mapping.ErrNotFound
	}
	if !soft {
		return s.remove(controller, gameType)
	}
	rec.Deleted = true
	rec.Modified = s.now().UTC()
	return s.write(rec)
}

func (s *Store) remove(controller, gameType string) error {
	if err := s.fs.Remove(s.path(controller, gameType)); err != nil {
		return fmt.Errorf("failed to delete mapping for %s/%s: %w", controller, gameType, err)
	}
	return nil
}

// Records lists every record in the store, deleted ones included. Corrupt
// files are skipped.
func (s *Store) Records() ([]mapping.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []mapping.Record
	err := afero.Walk(s.fs, s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".yaml" {
			return nil
		}
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return err
		}
		var rec mapping.Record
		if yaml.Unmarshal(data, &rec) != nil {
			return nil
		}
		out = append(out, rec)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.dir, err)
	}
	return out, nil
}
