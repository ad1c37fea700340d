package bigquery

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadMigrations_EmbeddedFiles(t *testing.T) {
	tables := Tables{Project: "my-proj", Dataset: "ledger"}

	got, err := ReadMigrations(embeddedMigrations, "migrations", tables)
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for i, m := range got {
		assert.Equal(t, i+1, m.Version, "versions are contiguous from 0001")
		assert.NotContains(t, m.SQL, "{{PROJECT_ID}}")
		assert.NotContains(t, m.SQL, "{{DATASET_ID}}")
		assert.Len(t, m.Checksum, 64)
	}
	assert.Contains(t, got[0].SQL, "`my-proj.ledger.transactions`")
}

func TestReadMigrations_SortsAndSkipsUnknownFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_second.sql": {Data: []byte("SELECT 2")},
		"m/0001_first.sql":  {Data: []byte("SELECT `{{PROJECT_ID}}.{{DATASET_ID}}.t`")},
		"m/README.md":       {Data: []byte("docs")},
		"m/01_bad.sql":      {Data: []byte("SELECT 0")},
	}

	got, err := ReadMigrations(fsys, "m", Tables{Project: "p", Dataset: "d"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Name)
	assert.Equal(t, "SELECT `p.d.t`", got[0].SQL)
	assert.Equal(t, "second", got[1].Name)
}

func TestReadMigrations_ChecksumIgnoresPlaceholders(t *testing.T) {
	fsys := fstest.MapFS{"m/0001_a.sql": {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.x` (a INT64)")}}

	a, err := ReadMigrations(fsys, "m", Tables{Project: "one", Dataset: "d"})
	require.NoError(t, err)
	b, err := ReadMigrations(fsys, "m", Tables{Project: "two", Dataset: "d"})
	require.NoError(t, err)

	assert.Equal(t, a[0].Checksum, b[0].Checksum)
	assert.NotEqual(t, a[0].SQL, b[0].SQL)
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("SELECT 1")},
		"m/0001_b.sql": {Data: []byte("SELECT 1")},
	}
	_, err := ReadMigrations(fsys, "m", Tables{})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "0001"))
}

func TestPendingMigrations(t *testing.T) {
	all := []Migration{
		{Version: 1, Filename: "0001_a.sql", Checksum: "aaa"},
		{Version: 2, Filename: "0002_b.sql", Checksum: "bbb"},
		{Version: 3, Filename: "0003_c.sql", Checksum: "ccc"},
	}

	t.Run("skips applied versions", func(t *testing.T) {
		pending, err := PendingMigrations(all, []AppliedMigration{{Version: 1, Checksum: "aaa"}, {Version: 2}})
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, 3, pending[0].Version)
	})

	t.Run("nothing applied", func(t *testing.T) {
		pending, err := PendingMigrations(all, nil)
		require.NoError(t, err)
		assert.Len(t, pending, 3)
	})

	t.Run("modified migration", func(t *testing.T) {
		_, err := PendingMigrations(all, []AppliedMigration{{Version: 2, Checksum: "changed"}})
		assert.Error(t, err)
	})
}

func TestTables(t *testing.T) {
	tables := Tables{Project: "p", Dataset: "d"}
	assert.Equal(t, "`p.d.transactions`", tables.Transactions())
	assert.Equal(t, "`p.d.merchant_mapping`", tables.Patterns())
	assert.Equal(t, "`p.d.reimbursements`", tables.Reimbursements())
}
