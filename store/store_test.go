package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plasmakit/stdnames/model"
)

func TestFileStore_WriteLoadRoundTrip(t *testing.T) {
	s := NewFileStore(t.TempDir())

	entries := []*model.Entry{
		{Name: "electron_temperature", Kind: model.KindScalar, Unit: "eV", Tags: []string{"transport"}},
		{
			Name: "magnitude_of_magnetic_field",
			Kind: model.KindScalar,
			Unit: "T",
			Tags: []string{"equilibrium"},
			Provenance: &model.ReductionProvenance{
				Reduction:    "magnitude",
				Base:         "magnetic_field",
				Dependencies: []string{"radial_component_of_magnetic_field", "toroidal_component_of_magnetic_field"},
			},
		},
		{Name: "plasma_current", Kind: model.KindScalar, Unit: "A"},
	}
	for _, e := range entries {
		require.NoError(t, s.Write(e))
	}

	files, err := s.Files()
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join("equilibrium", "magnitude_of_magnetic_field.yml"),
		filepath.Join("transport", "electron_temperature.yml"),
		filepath.Join("uncategorized", "plasma_current.yml"),
	}, files)

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	for _, want := range entries {
		assert.Equal(t, want, loaded[want.Name])
	}
}

func TestFileStore_LoadEmptyRoot(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "does-not-exist"))
	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStore_WriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.Write(&model.Entry{Name: "plasma_current", Kind: model.KindScalar, Unit: "A"}))

	matches, err := filepath.Glob(filepath.Join(dir, "uncategorized", ".*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileStore_Remove(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	e := &model.Entry{Name: "plasma_current", Kind: model.KindScalar, Unit: "A", Tags: []string{"equilibrium"}}
	require.NoError(t, s.Write(e))
	require.NoError(t, s.Remove(e))

	_, err := os.Stat(filepath.Join(dir, "equilibrium", "plasma_current.yml"))
	assert.True(t, os.IsNotExist(err))
	// Empty tag directory is pruned.
	_, err = os.Stat(filepath.Join(dir, "equilibrium"))
	assert.True(t, os.IsNotExist(err))

	// Removing a record that is already gone is not an error.
	require.NoError(t, s.Remove(e))
}

func TestFileStore_LoadRejectsNameMismatch(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "transport"), 0o755))
	doc := []byte("name: electron_temperature\nkind: scalar\nunit: eV\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "transport", "wrong_name.yml"), doc, 0o644))

	_, err := NewFileStore(dir).Load(context.Background())
	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "decode", perr.Op)
}

func TestFileStore_LoadRejectsDuplicateNames(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(dir)
	require.NoError(t, s.Write(&model.Entry{Name: "plasma_current", Kind: model.KindScalar, Tags: []string{"equilibrium"}}))
	require.NoError(t, s.Write(&model.Entry{Name: "plasma_current", Kind: model.KindScalar, Tags: []string{"transport"}}))

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate entry")
}
