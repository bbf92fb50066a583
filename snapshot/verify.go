package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/plasmakit/stdnames/store"
)

// IssueKind tags the category of an integrity issue.
type IssueKind string

const (
	// HashMismatch means a record's bytes changed since the snapshot was
	// stamped.
	HashMismatch IssueKind = "hash_mismatch"
	// MissingOnDisk means a stamped record no longer exists in the store.
	MissingOnDisk IssueKind = "missing_on_disk"
	// MissingInIndex means the store contains a document the snapshot
	// does not track.
	MissingInIndex IssueKind = "missing_in_index"
	// ManifestMismatch means the manifest's aggregate hash does not match
	// its own record stamps.
	ManifestMismatch IssueKind = "manifest_mismatch"
)

// IntegrityIssue is one divergence between a snapshot and the store.
type IntegrityIssue struct {
	Kind IssueKind
	// Name is the affected standard name, when known.
	Name string
	// Path is the affected document path relative to the store root.
	Path   string
	Detail string
}

func (i IntegrityIssue) String() string {
	s := string(i.Kind)
	if i.Name != "" {
		s += " " + i.Name
	}
	if i.Path != "" {
		s += fmt.Sprintf(" (%s)", i.Path)
	}
	if i.Detail != "" {
		s += ": " + i.Detail
	}
	return s
}

// Verify replays the manifest against the store and returns every
// integrity issue found. An empty result means the snapshot still matches
// the on-disk state exactly.
func (s *Snapshot) Verify(st *store.FileStore) ([]IntegrityIssue, error) {
	var issues []IntegrityIssue

	if got := s.manifest.ComputeAggregate(); got != s.manifest.AggregateHash {
		issues = append(issues, IntegrityIssue{
			Kind:   ManifestMismatch,
			Detail: fmt.Sprintf("aggregate hash %s does not match records (%s)", s.manifest.AggregateHash, got),
		})
	}

	tracked := make(map[string]string, len(s.manifest.Records)) // path -> name
	names := make([]string, 0, len(s.manifest.Records))
	for name := range s.manifest.Records {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rec := s.manifest.Records[name]
		tracked[rec.Path] = name
		data, err := os.ReadFile(filepath.Join(st.Root(), rec.Path))
		if err != nil {
			if os.IsNotExist(err) {
				issues = append(issues, IntegrityIssue{Kind: MissingOnDisk, Name: name, Path: rec.Path})
				continue
			}
			return nil, &store.PersistenceError{Op: "verify", Path: rec.Path, Err: err}
		}
		if got := hashBytes(data); got != rec.Hash {
			issues = append(issues, IntegrityIssue{
				Kind:   HashMismatch,
				Name:   name,
				Path:   rec.Path,
				Detail: fmt.Sprintf("stamped %s, found %s", rec.Hash, got),
			})
		}
	}

	files, err := st.Files()
	if err != nil {
		return nil, err
	}
	for _, rel := range files {
		if _, ok := tracked[rel]; !ok {
			issues = append(issues, IntegrityIssue{Kind: MissingInIndex, Path: rel})
		}
	}
	return issues, nil
}
