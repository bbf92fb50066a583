// Package store persists catalog entries as one YAML document per entry.
//
// The layout is <root>/<primary-tag>/<name>.yml, with untagged entries
// under <root>/uncategorized/. Writes are atomic: the document is written
// to a temp file in the target directory, fsynced, renamed over the final
// path and the directory is synced, so a crash can never leave a
// half-written record visible.
package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/plasmakit/stdnames/model"
)

// uncategorizedDir holds entries without a primary tag.
const uncategorizedDir = "uncategorized"

// PersistenceError wraps a filesystem failure with the operation and path.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("store: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// FileStore reads and writes entry documents under a root directory.
type FileStore struct {
	root string
}

// NewFileStore returns a store rooted at dir. The directory is created on
// first write.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Root returns the store's root directory.
func (s *FileStore) Root() string { return s.root }

// PathFor returns the relative document path for an entry.
func (s *FileStore) PathFor(e *model.Entry) string {
	dir := e.PrimaryTag()
	if dir == "" {
		dir = uncategorizedDir
	}
	return filepath.Join(dir, e.Name+".yml")
}

// Files lists the relative paths of every entry document, sorted.
func (s *FileStore) Files() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.root {
				return filepath.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yml") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, &PersistenceError{Op: "list", Path: s.root, Err: err}
	}
	sort.Strings(files)
	return files, nil
}

// Load reads every entry document under the root in parallel and returns
// the raw, unvalidated entries keyed by name. A missing root yields an
// empty catalog.
func (s *FileStore) Load(ctx context.Context) (map[string]*model.Entry, error) {
	files, err := s.Files()
	if err != nil {
		return nil, err
	}
	entries := make(map[string]*model.Entry, len(files))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			e, err := s.readFile(rel)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, dup := entries[e.Name]; dup {
				return fmt.Errorf("store: duplicate entry %q (already loaded as %s)", e.Name, s.PathFor(prev))
			}
			entries[e.Name] = e
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *FileStore) readFile(rel string) (*model.Entry, error) {
	path := filepath.Join(s.root, rel)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: path, Err: err}
	}
	var e model.Entry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: err}
	}
	if e.Name == "" {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: fmt.Errorf("document has no name")}
	}
	want := filepath.Base(rel)
	if got := e.Name + ".yml"; got != want {
		return nil, &PersistenceError{Op: "decode", Path: path, Err: fmt.Errorf("file name %q does not match entry name %q", want, e.Name)}
	}
	return &e, nil
}

// Write atomically persists an entry document at its tag-derived path.
func (s *FileStore) Write(e *model.Entry) error {
	rel := s.PathFor(e)
	path := filepath.Join(s.root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "mkdir", Path: dir, Err: err}
	}
	data, err := yaml.Marshal(e)
	if err != nil {
		return &PersistenceError{Op: "encode", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+e.Name+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "create", Path: dir, Err: err}
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return &PersistenceError{Op: "write", Path: tmpPath, Err: err}
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return &PersistenceError{Op: "sync", Path: tmpPath, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &PersistenceError{Op: "close", Path: tmpPath, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		cleanup()
		return &PersistenceError{Op: "rename", Path: path, Err: err}
	}
	return syncDir(dir)
}

// Remove deletes an entry's document and prunes the tag directory if it
// became empty.
func (s *FileStore) Remove(e *model.Entry) error {
	path := filepath.Join(s.root, s.PathFor(e))
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &PersistenceError{Op: "remove", Path: path, Err: err}
	}
	dir := filepath.Dir(path)
	if err := syncDir(dir); err != nil {
		return err
	}
	// Best effort; fails when the directory still has documents.
	_ = os.Remove(dir)
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return &PersistenceError{Op: "open", Path: dir, Err: err}
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return &PersistenceError{Op: "sync", Path: dir, Err: err}
	}
	return nil
}
