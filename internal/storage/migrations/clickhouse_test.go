package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitStatements(t *testing.T) {
	sql := `-- daily counts
CREATE TABLE IF NOT EXISTS t1 (
    entity String
) ENGINE = MergeTree()
ORDER BY entity;

-- second table
CREATE TABLE IF NOT EXISTS t2 (d Date) ENGINE = MergeTree() ORDER BY d;
`
	stmts := splitStatements(sql)
	require.Len(t, stmts, 2)
	assert.Contains(t, stmts[0], "t1")
	assert.NotContains(t, stmts[0], "--")
	assert.Contains(t, stmts[1], "t2")
}

func TestCheckSplitterSafe(t *testing.T) {
	assert.NoError(t, checkSplitterSafe("SELECT 'ab''cd'"))
	assert.NoError(t, checkSplitterSafe("CREATE TABLE t (s String); SELECT 1"))
	assert.Error(t, checkSplitterSafe("SELECT 'a;b'"))
}

func TestDatabaseFromDSN(t *testing.T) {
	db, err := databaseFromDSN("clickhouse://localhost:9000/panel")
	require.NoError(t, err)
	assert.Equal(t, "panel", db)

	_, err = databaseFromDSN("clickhouse://localhost:9000/")
	assert.Error(t, err)
}

func TestSQLFiles_LexicalOrder(t *testing.T) {
	files, err := sqlFiles(ClickhouseFS, "clickhouse")
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for i := 1; i < len(files); i++ {
		assert.Less(t, files[i-1], files[i])
	}
}
