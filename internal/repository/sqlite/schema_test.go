package sqlite

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemoryDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInitialiseSchemaIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	require.NoError(t, InitialiseSchema(ctx, db))
	require.NoError(t, InitialiseSchema(ctx, db))

	var version int64
	err := db.QueryRowContext(ctx, "SELECT version FROM wikidata_schema_version LIMIT 1").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, int64(SchemaVersion), version)
}

func TestInitialiseSchemaRejectsVersionMismatch(t *testing.T) {
	ctx := context.Background()
	db := openMemoryDB(t)

	require.NoError(t, InitialiseSchema(ctx, db))
	_, err := db.ExecContext(ctx, "UPDATE wikidata_schema_version SET version = 2")
	require.NoError(t, err)

	err = InitialiseSchema(ctx, db)
	require.Error(t, err)
}
