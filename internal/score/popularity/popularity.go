// Package popularity computes normalized, offline popularity scores for a
// pois.db database and persists them to a popularity.bin artefact.
// Popularity blends two signals: Wikidata sitelink counts per linked
// entity, and UNESCO World Heritage designation (P1435=Q9259).
package popularity

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	jsoncodec "github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

const (
	heritageProperty    = "P1435"
	unescoWorldHeritage = "Q9259"
	sitelinkTable       = "wikidata_entity_sitelinks"
)

// Weights tunes the raw popularity signal before normalisation.
type Weights struct {
	// SitelinkWeight multiplies the resolved sitelink count.
	SitelinkWeight float32
	// HeritageBonus is added when the POI's linked entity carries a
	// P1435=Q9259 claim.
	HeritageBonus float32
}

// DefaultWeights mirrors the original scoring defaults: one point per
// sitelink, a 25-point heritage bonus.
func DefaultWeights() Weights {
	return Weights{SitelinkWeight: 1.0, HeritageBonus: 25.0}
}

// Scores is a normalized mapping from POI id to a popularity score in
// [0.0, 1.0]. WriteFile encodes it with keys in id-ascending order.
type Scores map[uint64]float32

// Get returns the score for id, or 0 if absent.
func (s Scores) Get(id uint64) (float32, bool) {
	v, ok := s[id]
	return v, ok
}

// Compute opens databasePath read-only and computes normalized popularity
// scores for every POI it contains.
func Compute(ctx context.Context, databasePath string, weights Weights) (Scores, error) {
	db, err := sql.Open("sqlite", "file:"+databasePath+"?mode=ro")
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": databasePath})
	}
	defer db.Close()

	raw, err := readRawScores(ctx, db, weights)
	if err != nil {
		return nil, err
	}
	return normaliseScores(raw), nil
}

// WriteFile computes popularity scores for databasePath and persists them
// as a CBOR-encoded popularity.bin artefact at outputPath, creating its
// parent directory when missing.
func WriteFile(ctx context.Context, databasePath, outputPath string, weights Weights) (Scores, error) {
	scores, err := Compute(ctx, databasePath, weights)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": dir})
		}
	}
	// Canonical CBOR sorts map keys, so the artefact lists ids ascending.
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"path": outputPath})
	}
	payload, err := encMode.Marshal(map[uint64]float32(scores))
	if err != nil {
		return nil, apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"path": outputPath})
	}
	if err := os.WriteFile(outputPath, payload, 0o644); err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": outputPath})
	}
	return scores, nil
}

// LoadFile reads a popularity.bin artefact written by WriteFile.
func LoadFile(path string) (Scores, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	var scores map[uint64]float32
	if err := cbor.Unmarshal(data, &scores); err != nil {
		return nil, apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	return Scores(scores), nil
}

func readRawScores(ctx context.Context, db *sql.DB, weights Weights) (map[uint64]float32, error) {
	hasSitelinkTable, err := probeSitelinkTable(ctx, db)
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT
			pois.id,
			pois.tags,
			links.entity_id,
			CASE
				WHEN links.entity_id IS NULL THEN 0
				ELSE EXISTS(
					SELECT 1 FROM wikidata_entity_claims AS claims
					WHERE claims.entity_id = links.entity_id
					  AND claims.property_id = ?
					  AND claims.value_entity_id = ?
				)
			END AS is_heritage
		FROM pois
		LEFT JOIN poi_wikidata_links AS links ON links.poi_id = pois.id`,
		heritageProperty, unescoWorldHeritage)
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "query POIs"})
	}
	defer rows.Close()

	raw := make(map[uint64]float32)
	for rows.Next() {
		var poiIDRaw int64
		var tagsJSON string
		var entityID sql.NullString
		var isHeritage bool
		if err := rows.Scan(&poiIDRaw, &tagsJSON, &entityID, &isHeritage); err != nil {
			return nil, apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"step": "read POI row"})
		}
		if poiIDRaw < 0 {
			return nil, apperrors.ErrInvalidSitelinks.WithDetails(map[string]any{"poi_id": poiIDRaw})
		}
		poiID := uint64(poiIDRaw)

		sitelinks, err := resolveSitelinkCount(ctx, db, hasSitelinkTable, entityID, tagsJSON, poiID)
		if err != nil {
			return nil, err
		}
		raw[poiID] = scoreSignals(sitelinks, isHeritage, weights)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrCorruptPayload.WithCause(err)
	}
	return raw, nil
}

func probeSitelinkTable(ctx context.Context, db *sql.DB) (bool, error) {
	var found int
	err := db.QueryRowContext(ctx,
		"SELECT 1 FROM sqlite_master WHERE type = 'table' AND name = ? LIMIT 1", sitelinkTable).Scan(&found)
	switch {
	case err == sql.ErrNoRows:
		return false, nil
	case err != nil:
		return false, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "probe sitelink table"})
	default:
		return true, nil
	}
}

func resolveSitelinkCount(ctx context.Context, db *sql.DB, hasSitelinkTable bool, entityID sql.NullString, tagsJSON string, poiID uint64) (uint32, error) {
	if hasSitelinkTable && entityID.Valid {
		var count int64
		err := db.QueryRowContext(ctx,
			"SELECT sitelink_count FROM "+sitelinkTable+" WHERE entity_id = ? LIMIT 1", entityID.String).Scan(&count)
		switch {
		case err == nil:
			return int64ToUint32(count, poiID)
		case err != sql.ErrNoRows:
			return 0, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "lookup sitelink count"})
		}
	}

	if count, ok, err := parseSitelinksFromTags(tagsJSON, poiID); err != nil {
		return 0, err
	} else if ok {
		return int64ToUint32(count, poiID)
	}
	return 0, nil
}

func int64ToUint32(value int64, poiID uint64) (uint32, error) {
	if value < 0 || value > int64(^uint32(0)) {
		return 0, apperrors.ErrInvalidSitelinks.WithDetails(map[string]any{"poi_id": poiID, "raw": value})
	}
	return uint32(value), nil
}

// parseSitelinksFromTags extracts a sitelink count from a POI's tag
// payload, checking the "sitelinks" key then "sitelink_count" for
// compatibility with either naming.
func parseSitelinksFromTags(tagsJSON string, poiID uint64) (int64, bool, error) {
	var parsed map[string]any
	if err := jsoncodec.Unmarshal([]byte(tagsJSON), &parsed); err != nil {
		return 0, false, apperrors.ErrInvalidTagJSON.WithCause(err).WithDetails(map[string]any{"poi_id": poiID})
	}

	candidate, ok := parsed["sitelinks"]
	if !ok {
		candidate, ok = parsed["sitelink_count"]
	}
	if !ok || candidate == nil {
		return 0, false, nil
	}

	switch v := candidate.(type) {
	case float64:
		return int64(v), true, nil
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, false, nil
		}
		parsedValue, err := strconv.ParseInt(trimmed, 10, 64)
		if err != nil {
			return 0, false, apperrors.ErrInvalidSitelinks.WithCause(err).WithDetails(map[string]any{"poi_id": poiID})
		}
		return parsedValue, true, nil
	default:
		return 0, false, apperrors.ErrInvalidSitelinks.WithDetails(map[string]any{"poi_id": poiID})
	}
}

func scoreSignals(sitelinks uint32, heritage bool, weights Weights) float32 {
	sitelinkComponent := weights.SitelinkWeight * float32(sitelinks)
	var heritageComponent float32
	if heritage {
		heritageComponent = weights.HeritageBonus
	}
	score := sitelinkComponent + heritageComponent
	if score < 0 {
		return 0
	}
	return score
}

func normaliseScores(raw map[uint64]float32) Scores {
	var max float32
	for _, v := range raw {
		if v > max {
			max = v
		}
	}
	normalised := make(Scores, len(raw))
	if max == 0 {
		for id := range raw {
			normalised[id] = 0
		}
		return normalised
	}
	for id, v := range raw {
		score := v / max
		if score < 0 {
			score = 0
		}
		if score > 1 {
			score = 1
		}
		normalised[id] = score
	}
	return normalised
}
