package sqlite

import (
	"context"
	"database/sql"

	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// SchemaVersion is the supported version of the Wikidata claims schema.
// Existing installations must already match this version; mismatches are
// rejected so migrations can be applied explicitly.
const SchemaVersion = 1

// InitialiseSchema creates the pois table (if absent) and the Wikidata
// claims schema inside db, recording the schema version on first run and
// rejecting a mismatched version on subsequent runs.
func InitialiseSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "enable foreign keys"})
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "begin schema transaction"})
	}
	defer tx.Rollback()

	for _, step := range schemaStatements {
		if _, err := tx.ExecContext(ctx, step.sql); err != nil {
			return apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"step": step.name})
		}
	}

	if err := ensureSchemaVersion(ctx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "commit schema transaction"})
	}
	return nil
}

type migrationStep struct {
	name string
	sql  string
}

var schemaStatements = []migrationStep{
	{
		name: "create pois",
		sql: `CREATE TABLE IF NOT EXISTS pois (
			id INTEGER PRIMARY KEY,
			lon REAL NOT NULL,
			lat REAL NOT NULL,
			tags TEXT NOT NULL
		)`,
	},
	{
		name: "create wikidata_entities",
		sql: `CREATE TABLE IF NOT EXISTS wikidata_entities (
			entity_id TEXT PRIMARY KEY CHECK (length(trim(entity_id)) > 0)
		) WITHOUT ROWID`,
	},
	{
		name: "create poi_wikidata_links",
		sql: `CREATE TABLE IF NOT EXISTS poi_wikidata_links (
			poi_id INTEGER NOT NULL,
			entity_id TEXT NOT NULL,
			PRIMARY KEY (poi_id, entity_id),
			FOREIGN KEY (poi_id) REFERENCES pois(id) ON DELETE CASCADE,
			FOREIGN KEY (entity_id) REFERENCES wikidata_entities(entity_id) ON DELETE CASCADE
		) WITHOUT ROWID`,
	},
	{
		name: "create wikidata_entity_claims",
		sql: `CREATE TABLE IF NOT EXISTS wikidata_entity_claims (
			entity_id TEXT NOT NULL,
			property_id TEXT NOT NULL,
			value_entity_id TEXT NOT NULL,
			PRIMARY KEY (entity_id, property_id, value_entity_id),
			FOREIGN KEY (entity_id) REFERENCES wikidata_entities(entity_id) ON DELETE CASCADE,
			FOREIGN KEY (value_entity_id) REFERENCES wikidata_entities(entity_id) ON DELETE CASCADE
		) WITHOUT ROWID`,
	},
	{
		name: "index wikidata_entity_claims",
		sql: `CREATE INDEX IF NOT EXISTS idx_wikidata_entity_claims_property
			ON wikidata_entity_claims(property_id, value_entity_id, entity_id)`,
	},
	{
		name: "index poi_wikidata_links",
		sql: `CREATE INDEX IF NOT EXISTS idx_poi_wikidata_links_entity
			ON poi_wikidata_links(entity_id, poi_id)`,
	},
	{
		name: "create poi_wikidata_claims view",
		sql: `CREATE VIEW IF NOT EXISTS poi_wikidata_claims AS
			SELECT
				links.poi_id AS poi_id,
				claims.entity_id AS entity_id,
				claims.property_id AS property_id,
				claims.value_entity_id AS value_entity_id
			FROM poi_wikidata_links AS links
			JOIN wikidata_entity_claims AS claims
				ON claims.entity_id = links.entity_id`,
	},
	{
		name: "create schema version table",
		sql: `CREATE TABLE IF NOT EXISTS wikidata_schema_version (
			version INTEGER PRIMARY KEY CHECK (version > 0),
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ', 'now'))
		) WITHOUT ROWID`,
	},
}

func ensureSchemaVersion(ctx context.Context, tx *sql.Tx) error {
	var existing int64
	err := tx.QueryRowContext(ctx, "SELECT version FROM wikidata_schema_version LIMIT 1").Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err := tx.ExecContext(ctx, "INSERT INTO wikidata_schema_version (version) VALUES (?)", SchemaVersion)
		if err != nil {
			return apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"step": "record schema version"})
		}
		return nil
	case err != nil:
		return apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"step": "read schema version"})
	case existing != SchemaVersion:
		return apperrors.ErrSchemaMismatch.WithDetails(map[string]any{"expected": SchemaVersion, "found": existing})
	default:
		return nil
	}
}
