package sqlite

import (
	"context"
	"database/sql"

	apperrors "github.com/wildside/wildside/internal/pkg/errors"
	"github.com/wildside/wildside/internal/ingest/wikidata"
)

// PersistClaims idempotently persists entity metadata, POI links, and
// heritage claims into db's Wikidata claims schema inside a single
// transaction. Every POI id referenced by claims must already exist in the
// pois table.
func PersistClaims(ctx context.Context, db *sql.DB, claims []wikidata.EntityClaims) error {
	if err := InitialiseSchema(ctx, db); err != nil {
		return err
	}
	if len(claims) == 0 {
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "begin claims transaction"})
	}
	defer tx.Rollback()

	stmts, err := prepareClaimStatements(ctx, tx)
	if err != nil {
		return err
	}
	defer stmts.close()

	knownPOIs := make(map[uint64]struct{})
	for _, claim := range claims {
		if err := stmts.persistEntity(ctx, claim.EntityID); err != nil {
			return err
		}
		if err := stmts.persistHeritageDesignations(ctx, claim.EntityID, claim.HeritageDesignations); err != nil {
			return err
		}
		if err := stmts.persistPOILinks(ctx, claim.EntityID, claim.LinkedPOIIDs, knownPOIs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "commit claims transaction"})
	}
	return nil
}

type claimStatements struct {
	insertEntity *sql.Stmt
	insertLink   *sql.Stmt
	insertClaim  *sql.Stmt
	checkPOI     *sql.Stmt
}

func prepareClaimStatements(ctx context.Context, tx *sql.Tx) (*claimStatements, error) {
	insertEntity, err := tx.PrepareContext(ctx, "INSERT INTO wikidata_entities (entity_id) VALUES (?) ON CONFLICT(entity_id) DO NOTHING")
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "prepare insert entity"})
	}
	insertLink, err := tx.PrepareContext(ctx, "INSERT INTO poi_wikidata_links (poi_id, entity_id) VALUES (?, ?) ON CONFLICT(poi_id, entity_id) DO NOTHING")
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "prepare insert link"})
	}
	insertClaim, err := tx.PrepareContext(ctx, "INSERT INTO wikidata_entity_claims (entity_id, property_id, value_entity_id) VALUES (?, ?, ?) ON CONFLICT(entity_id, property_id, value_entity_id) DO NOTHING")
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "prepare insert claim"})
	}
	checkPOI, err := tx.PrepareContext(ctx, "SELECT 1 FROM pois WHERE id = ? LIMIT 1")
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "prepare poi lookup"})
	}
	return &claimStatements{insertEntity: insertEntity, insertLink: insertLink, insertClaim: insertClaim, checkPOI: checkPOI}, nil
}

func (s *claimStatements) close() {
	s.insertEntity.Close()
	s.insertLink.Close()
	s.insertClaim.Close()
	s.checkPOI.Close()
}

func (s *claimStatements) persistEntity(ctx context.Context, entityID string) error {
	if _, err := s.insertEntity.ExecContext(ctx, entityID); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "insert entity", "entity_id": entityID})
	}
	return nil
}

func (s *claimStatements) persistHeritageDesignations(ctx context.Context, entityID string, designations []string) error {
	for _, designation := range designations {
		if err := s.persistEntity(ctx, designation); err != nil {
			return err
		}
		if _, err := s.insertClaim.ExecContext(ctx, entityID, wikidata.HeritageProperty, designation); err != nil {
			return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "insert heritage claim", "entity_id": entityID})
		}
	}
	return nil
}

func (s *claimStatements) persistPOILinks(ctx context.Context, entityID string, poiIDs []uint64, known map[uint64]struct{}) error {
	for _, poiID := range poiIDs {
		if _, ok := known[poiID]; !ok {
			var exists int
			err := s.checkPOI.QueryRowContext(ctx, int64(poiID)).Scan(&exists)
			switch {
			case err == sql.ErrNoRows:
				return apperrors.ErrMissingClaimPOI.WithDetails(map[string]any{"poi_id": poiID, "entity_id": entityID})
			case err != nil:
				return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "verify poi presence"})
			}
			known[poiID] = struct{}{}
		}
		if _, err := s.insertLink.ExecContext(ctx, int64(poiID), entityID); err != nil {
			return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "link poi to entity", "poi_id": poiID})
		}
	}
	return nil
}
