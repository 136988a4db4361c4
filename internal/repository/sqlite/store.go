// Package sqlite provides the SQLite-backed persistence layer: a read-only
// POI store fronted by the bulk-loaded spatial index, and the Wikidata
// claims schema and writer used during ingestion.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	jsoncodec "github.com/goccy/go-json"
	"github.com/paulmach/orb"
	_ "modernc.org/sqlite"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
	"github.com/wildside/wildside/internal/spatial"
)

// sqliteMaxVariableNumber is SQLite's default bound-parameter ceiling per
// statement; IN-list queries are chunked to stay under it.
const sqliteMaxVariableNumber = 999

// PoiStore is a read-only POI store backed by SQLite metadata and a
// persisted spatial index. It is safe for concurrent read access.
type PoiStore struct {
	index *spatial.Index
}

// Open opens databasePath read-only, loads indexPath's spatial index, and
// verifies every indexed id is present in the database's pois table.
func Open(ctx context.Context, databasePath, indexPath string) (*PoiStore, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?mode=ro", databasePath))
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": databasePath})
	}
	defer db.Close()

	entries, err := spatial.LoadEntries(indexPath)
	if err != nil {
		return nil, err
	}

	if err := ensureIndexPOIsExist(ctx, db, entries); err != nil {
		return nil, err
	}

	return &PoiStore{index: spatial.Build(entries)}, nil
}

// GetPOIsInBBox returns POIs intersecting bbox, sorted by id ascending.
func (s *PoiStore) GetPOIsInBBox(bbox orb.Bound) []domain.PointOfInterest {
	return s.index.GetPOIsInBBox(bbox)
}

// Get returns the POI with the given id, if indexed.
func (s *PoiStore) Get(id uint64) (domain.PointOfInterest, bool) {
	return s.index.Get(id)
}

// Size returns the number of indexed POIs.
func (s *PoiStore) Size() int {
	return s.index.Size()
}

func ensureIndexPOIsExist(ctx context.Context, db *sql.DB, entries []domain.PointOfInterest) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(entries))
	seen := make(map[uint64]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		ids = append(ids, e.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for start := 0; start < len(ids); start += sqliteMaxVariableNumber {
		end := start + sqliteMaxVariableNumber
		if end > len(ids) {
			end = len(ids)
		}
		chunk := ids[start:end]
		found, err := loadPOIsChunk(ctx, db, chunk)
		if err != nil {
			return err
		}
		if missing, ok := findMissing(chunk, found); ok {
			return apperrors.ErrMissingIndexedPOI.WithDetails(map[string]any{"id": missing})
		}
	}
	return nil
}

func findMissing(ids []uint64, found map[uint64]struct{}) (uint64, bool) {
	if len(found) == len(ids) {
		return 0, false
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

func loadPOIsChunk(ctx context.Context, db *sql.DB, ids []uint64) (map[uint64]struct{}, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]any, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',', ' ')
		}
		placeholders = append(placeholders, '?')
		args[i] = int64(id)
	}

	query := fmt.Sprintf("SELECT id, tags FROM pois WHERE id IN (%s)", placeholders)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err)
	}
	defer rows.Close()

	found := make(map[uint64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		var tagsJSON string
		if err := rows.Scan(&id, &tagsJSON); err != nil {
			return nil, apperrors.ErrCorruptPayload.WithCause(err)
		}
		var tags map[string]string
		if err := jsoncodec.Unmarshal([]byte(tagsJSON), &tags); err != nil {
			return nil, apperrors.ErrInvalidTagJSON.WithCause(err).WithDetails(map[string]any{"id": id})
		}
		found[uint64(id)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.ErrCorruptPayload.WithCause(err)
	}
	return found, nil
}
