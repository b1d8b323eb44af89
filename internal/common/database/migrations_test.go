package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/002_add_index.sql":    {Data: []byte("CREATE INDEX i ON t (a);")},
		"migrations/001_create_table.sql": {Data: []byte("CREATE TABLE t (a int);")},
		"migrations/README.md":            {Data: []byte("not a migration")},
		"other/003_elsewhere.sql":         {Data: []byte("SELECT 1;")},
	}

	migrations, err := ReadMigrations(fsys, "migrations")
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, NewMigration(1, "001_create_table.sql", "CREATE TABLE t (a int);"), migrations[0])
	assert.Equal(t, NewMigration(2, "002_add_index.sql", "CREATE INDEX i ON t (a);"), migrations[1])
}

func TestReadMigrations_NonNumericId(t *testing.T) {
	fsys := fstest.MapFS{
		"migrations/init.sql": {Data: []byte("SELECT 1;")},
	}
	_, err := ReadMigrations(fsys, "migrations")
	assert.Error(t, err)
}

func TestReadMigrations_MissingDir(t *testing.T) {
	_, err := ReadMigrations(fstest.MapFS{}, "migrations")
	assert.Error(t, err)
}
