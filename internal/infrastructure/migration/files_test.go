package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/Goutham009/tradewave-sub005/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestList_EmbeddedSchema(t *testing.T) {
	files, err := List(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for i, f := range files {
		assert.Equal(t, uint(i+1), f.Version, "versions are contiguous")
		assert.True(t, f.HasDown, "%s has a down migration", f.Name)
	}
}

func TestList(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_add_index.up.sql":   {Data: []byte("CREATE INDEX ...")},
		"000001_init.up.sql":        {Data: []byte("CREATE TABLE ...")},
		"000001_init.down.sql":      {Data: []byte("DROP TABLE ...")},
		"README.md":                 {Data: []byte("notes")},
		"embed.go":                  {Data: []byte("package migrations")},
		"000003_Bad-Name.up.sql":    {Data: []byte("ignored")},
		"archive/000009_old.up.sql": {Data: []byte("nested")},
	}

	files, err := List(fsys)
	require.NoError(t, err)
	assert.Equal(t, []File{
		{Version: 1, Name: "init", HasDown: true},
		{Version: 2, Name: "add_index", HasDown: false},
	}, files)
}

func TestList_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"000001_init.up.sql":  {Data: []byte("")},
		"000001_other.up.sql": {Data: []byte("")},
	}
	_, err := List(fsys)
	assert.ErrorContains(t, err, "migration version 1")
}

func TestCreate(t *testing.T) {
	dir := t.TempDir()

	first, err := Create(dir, "Add escrow disputes")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "000001_add_escrow_disputes.up.sql"), first)

	second, err := Create(dir, "  index--buyer  ")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "000002_index_buyer.up.sql"), second)

	_, err = os.Stat(filepath.Join(dir, "000002_index_buyer.down.sql"))
	assert.NoError(t, err)

	files, err := List(os.DirFS(dir))
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestCreate_RejectsEmptyName(t *testing.T) {
	_, err := Create(t.TempDir(), "!!!")
	assert.Error(t, err)
}
