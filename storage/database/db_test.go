package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/storage/database"
	testutil "github.com/studysphere/backend/tests"
)

func TestMigrations(t *testing.T) {
	db := testutil.OpenSQLite(t)

	var tables []string
	err := db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('users', 'assignments', 'submissions') ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"assignments", "submissions", "users"}, tables)

	// applying again is a no-op
	assert.NoError(t, database.Migrate(db))
	require.NoError(t, database.RunMigrations(db, "down"))

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'users'`))
	assert.Equal(t, 0, n)
}

func TestOpen_unsupportedEngine(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{Engine: "mongodb"}}
	_, err := database.Open(conf)
	assert.Error(t, err)
}
