package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plasmakit/stdnames/model"
	"github.com/plasmakit/stdnames/store"
)

func seedStore(t *testing.T) (*store.FileStore, map[string]*model.Entry) {
	t.Helper()
	st := store.NewFileStore(t.TempDir())
	entries := map[string]*model.Entry{
		"electron_temperature": {Name: "electron_temperature", Kind: model.KindScalar, Unit: "eV", Tags: []string{"transport", "experimental"}},
		"plasma_current":       {Name: "plasma_current", Kind: model.KindScalar, Unit: "A", Tags: []string{"equilibrium"}},
		"loop_voltage":         {Name: "loop_voltage", Kind: model.KindScalar, Unit: "V", Tags: []string{"equilibrium", "experimental"}},
	}
	for _, e := range entries {
		require.NoError(t, st.Write(e))
	}
	return st, entries
}

func TestBuild_StampsEveryRecord(t *testing.T) {
	st, entries := seedStore(t)

	s, err := Build(context.Background(), st, entries)
	require.NoError(t, err)
	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.Manifest().Records, 3)
	assert.Equal(t, s.Manifest().ComputeAggregate(), s.AggregateHash())

	rec := s.Manifest().Records["plasma_current"]
	assert.Equal(t, filepath.Join("equilibrium", "plasma_current.yml"), rec.Path)
	assert.Len(t, rec.Hash, 64)
	assert.Positive(t, rec.Size)

	issues, err := s.Verify(st)
	require.NoError(t, err)
	assert.Empty(t, issues)
}

func TestBuild_AggregateChangesWithAnyRecord(t *testing.T) {
	st, entries := seedStore(t)
	s1, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	entries["plasma_current"].Description = "Total toroidal plasma current."
	require.NoError(t, st.Write(entries["plasma_current"]))
	s2, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	assert.NotEqual(t, s1.AggregateHash(), s2.AggregateHash())
}

func TestVerify_DetectsDrift(t *testing.T) {
	st, entries := seedStore(t)
	s, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	// Mutate one record behind the snapshot's back.
	edited := filepath.Join(st.Root(), "equilibrium", "plasma_current.yml")
	require.NoError(t, os.WriteFile(edited, []byte("name: plasma_current\nkind: scalar\nunit: MA\n"), 0o644))
	// Delete another.
	require.NoError(t, os.Remove(filepath.Join(st.Root(), "transport", "electron_temperature.yml")))
	// Drop an untracked document into the store.
	require.NoError(t, os.WriteFile(filepath.Join(st.Root(), "equilibrium", "intruder.yml"), []byte("name: intruder\nkind: scalar\n"), 0o644))

	issues, err := s.Verify(st)
	require.NoError(t, err)

	kinds := make(map[IssueKind][]IntegrityIssue)
	for _, issue := range issues {
		kinds[issue.Kind] = append(kinds[issue.Kind], issue)
	}
	require.Len(t, kinds[HashMismatch], 1)
	assert.Equal(t, "plasma_current", kinds[HashMismatch][0].Name)
	require.Len(t, kinds[MissingOnDisk], 1)
	assert.Equal(t, "electron_temperature", kinds[MissingOnDisk][0].Name)
	require.Len(t, kinds[MissingInIndex], 1)
	assert.Equal(t, filepath.Join("equilibrium", "intruder.yml"), kinds[MissingInIndex][0].Path)
	assert.Empty(t, kinds[ManifestMismatch])
}

func TestVerify_DetectsManifestTampering(t *testing.T) {
	st, entries := seedStore(t)
	s, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	rec := s.Manifest().Records["plasma_current"]
	rec.Hash = "0000000000000000000000000000000000000000000000000000000000000000"
	s.Manifest().Records["plasma_current"] = rec

	issues, err := s.Verify(st)
	require.NoError(t, err)

	var manifestIssues, hashIssues int
	for _, issue := range issues {
		switch issue.Kind {
		case ManifestMismatch:
			manifestIssues++
		case HashMismatch:
			hashIssues++
		}
	}
	assert.Equal(t, 1, manifestIssues)
	assert.Equal(t, 1, hashIssues)
}

func TestSnapshot_TagFiltering(t *testing.T) {
	st, entries := seedStore(t)
	s, err := Build(context.Background(), st, entries)
	require.NoError(t, err)

	assert.Equal(t, []string{"equilibrium", "experimental", "transport"}, s.Tags())
	assert.Equal(t, []string{"loop_voltage", "plasma_current"}, s.WithTags("equilibrium"))
	assert.Equal(t, []string{"loop_voltage"}, s.WithTags("equilibrium", "experimental"))
	assert.Empty(t, s.WithTags("nonexistent"))
	assert.Equal(t, s.Names(), s.WithTags())
}
