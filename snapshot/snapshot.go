package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/plasmakit/stdnames/model"
	"github.com/plasmakit/stdnames/store"
)

// Snapshot is a read-only view of a catalog with integrity stamps and tag
// bitmaps. Entries handed out by a snapshot must not be mutated.
type Snapshot struct {
	manifest *Manifest
	entries  map[string]*model.Entry
	// names holds every entry name sorted; a name's index is its ordinal
	// in the tag bitmaps.
	names      []string
	tagBitmaps map[string]*roaring.Bitmap
}

// Build stamps the current on-disk state of the store and returns a
// snapshot over the given entries. The entries must be the ones loaded
// from the store.
func Build(ctx context.Context, st *store.FileStore, entries map[string]*model.Entry) (*Snapshot, error) {
	m := &Manifest{
		Version:   ManifestVersion,
		CreatedAt: time.Now().UTC(),
		Records:   make(map[string]RecordInfo, len(entries)),
	}
	for name, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel := st.PathFor(e)
		path := filepath.Join(st.Root(), rel)
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, &store.PersistenceError{Op: "stamp", Path: path, Err: err}
		}
		info, err := os.Stat(path)
		if err != nil {
			return nil, &store.PersistenceError{Op: "stamp", Path: path, Err: err}
		}
		m.Records[name] = RecordInfo{
			Path:    rel,
			Hash:    hashBytes(data),
			Size:    info.Size(),
			ModTime: info.ModTime().UTC(),
		}
	}
	m.AggregateHash = m.ComputeAggregate()
	return newSnapshot(m, entries), nil
}

// newSnapshot assembles the derived lookup structures over a manifest and
// its entries.
func newSnapshot(m *Manifest, entries map[string]*model.Entry) *Snapshot {
	s := &Snapshot{
		manifest:   m,
		entries:    entries,
		tagBitmaps: make(map[string]*roaring.Bitmap),
	}
	s.names = make([]string, 0, len(entries))
	for name := range entries {
		s.names = append(s.names, name)
	}
	sort.Strings(s.names)
	for ord, name := range s.names {
		for _, tag := range entries[name].Tags {
			bm, ok := s.tagBitmaps[tag]
			if !ok {
				bm = roaring.New()
				s.tagBitmaps[tag] = bm
			}
			bm.Add(uint32(ord))
		}
	}
	return s
}

// Manifest returns the snapshot's integrity manifest.
func (s *Snapshot) Manifest() *Manifest { return s.manifest }

// AggregateHash returns the catalog-wide integrity hash.
func (s *Snapshot) AggregateHash() string { return s.manifest.AggregateHash }

// Len returns the number of entries in the snapshot.
func (s *Snapshot) Len() int { return len(s.names) }

// Names returns every entry name, sorted.
func (s *Snapshot) Names() []string {
	return append([]string(nil), s.names...)
}

// Entry returns the entry with the given name. The returned entry is
// shared and read-only.
func (s *Snapshot) Entry(name string) (*model.Entry, bool) {
	e, ok := s.entries[name]
	return e, ok
}

// Tags returns every tag present in the snapshot, sorted.
func (s *Snapshot) Tags() []string {
	tags := make([]string, 0, len(s.tagBitmaps))
	for tag := range s.tagBitmaps {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// WithTags returns the names of entries carrying every given tag, sorted.
func (s *Snapshot) WithTags(tags ...string) []string {
	if len(tags) == 0 {
		return s.Names()
	}
	first, ok := s.tagBitmaps[tags[0]]
	if !ok {
		return nil
	}
	acc := first.Clone()
	for _, tag := range tags[1:] {
		bm, ok := s.tagBitmaps[tag]
		if !ok {
			return nil
		}
		acc.And(bm)
	}
	out := make([]string, 0, acc.GetCardinality())
	it := acc.Iterator()
	for it.HasNext() {
		out = append(out, s.names[it.Next()])
	}
	return out
}
