package geoprofile

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beetlebugorg/geoprofile/internal/store"
)

var (
	_ Repository = (*MemoryStore)(nil)
	_ Repository = (*SQLiteStore)(nil)
)

// countingRepo wraps a repository the way an external caller would, knowing
// only the exported names of this package.
type countingRepo struct {
	Repository
	soundings int
}

func (r *countingRepo) AddSounding(s SoundingRecord) (int, error) {
	r.soundings++
	return r.Repository.AddSounding(s)
}

func TestCustomRepository(t *testing.T) {
	repo := &countingRepo{Repository: NewMemoryStore()}
	ws, err := OpenWorkspace(repo, DefaultWorkspaceOptions())
	require.NoError(t, err)

	dir := t.TempDir()
	writeGEF(t, dir, "A.gef", 140000, 455000)
	report, err := ws.ImportDir(dir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Imported)
	assert.Equal(t, 1, repo.soundings)

	records, err := ws.Soundings()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "A", records[0].Name)
}

func TestErrNotFound(t *testing.T) {
	wrapped := fmt.Errorf("profile 3: %w", store.ErrNotFound)
	assert.True(t, errors.Is(wrapped, ErrNotFound))

	ws, err := OpenWorkspace(NewMemoryStore(), DefaultWorkspaceOptions())
	require.NoError(t, err)
	_, err = ws.Profile(3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOpenSQLite(t *testing.T) {
	repo, err := OpenSQLite(filepath.Join(t.TempDir(), "facade.db"))
	require.NoError(t, err)
	defer repo.Close()

	ws, err := OpenWorkspace(repo, DefaultWorkspaceOptions())
	require.NoError(t, err)
	types, err := ws.SoilTypes()
	require.NoError(t, err)
	assert.NotEmpty(t, types)
}
