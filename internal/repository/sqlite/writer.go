package sqlite

import (
	"context"
	"database/sql"

	jsoncodec "github.com/goccy/go-json"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// PersistPOIs idempotently upserts pois into the pois table inside a
// single transaction: a re-ingest replaces a POI's lon/lat/tags in place
// rather than skipping it, so ingestion can be safely re-run against a
// changed PBF extract without growing stale rows.
func PersistPOIs(ctx context.Context, db *sql.DB, pois []domain.PointOfInterest) error {
	if err := InitialiseSchema(ctx, db); err != nil {
		return err
	}
	if len(pois) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "begin poi persistence transaction"})
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO pois (id, lon, lat, tags) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET lon = excluded.lon, lat = excluded.lat, tags = excluded.tags`)
	if err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "prepare insert poi"})
	}
	defer stmt.Close()

	for _, poi := range pois {
		tagsJSON, err := jsoncodec.Marshal(poi.Tags)
		if err != nil {
			return apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"id": poi.ID})
		}
		if _, err := stmt.ExecContext(ctx, int64(poi.ID), poi.Location.Lon(), poi.Location.Lat(), string(tagsJSON)); err != nil {
			return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "insert poi", "id": poi.ID})
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "commit poi persistence transaction"})
	}
	return nil
}
