// Package ingestusecase implements the offline ingest driver: it validates
// input files, runs OSM and Wikidata ingestion, persists POIs and claims to
// SQLite, writes the spatial index, and computes popularity scores. It
// follows the teacher's usecase-validates-then-delegates-to-repository
// shape (internal/usecase/poi_usecase.go), generalised from a single
// repository call to an ingestion pipeline.
package ingestusecase

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wildside/wildside/internal/config"
	"github.com/wildside/wildside/internal/domain"
	"github.com/wildside/wildside/internal/ingest/osm"
	"github.com/wildside/wildside/internal/ingest/wikidata"
	"github.com/wildside/wildside/internal/ingest/wikidata/dumpsource"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
	"github.com/wildside/wildside/internal/repository/sqlite"
	"github.com/wildside/wildside/internal/score/popularity"
	"github.com/wildside/wildside/internal/spatial"
)

// Outcome reports the ingest driver's result: the number of POIs ingested
// and the size in bytes of the written spatial index artefact.
type Outcome struct {
	POICount  int
	IndexSize int64
}

// Run executes the full ingest pipeline against cfg. The spatial index
// write and the POI-persist/Wikidata-ETL/claims-persist chain run
// concurrently, since the index only depends on the in-memory POI list
// produced by OSM ingestion, not on anything written to SQLite.
func Run(ctx context.Context, cfg config.IngestConfig, logger *zap.Logger) (Outcome, error) {
	if err := requireRegularFile(cfg.OsmPBF); err != nil {
		return Outcome{}, err
	}
	if err := requireRegularFile(cfg.WikidataDump); err != nil {
		return Outcome{}, err
	}
	if cfg.WikidataDumpStatus != "" {
		if err := verifyWikidataDumpName(cfg); err != nil {
			return Outcome{}, err
		}
	}
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return Outcome{}, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": cfg.OutputDir})
	}

	logger.Info("ingesting OSM PBF", zap.String("path", cfg.OsmPBF))
	report, err := osm.IngestPBF(ctx, cfg.OsmPBF)
	if err != nil {
		return Outcome{}, err
	}
	logger.Info("osm ingestion complete",
		zap.Uint64("nodes", report.Summary.Nodes),
		zap.Uint64("ways", report.Summary.Ways),
		zap.Uint64("relations", report.Summary.Relations),
		zap.Int("pois", len(report.POIs)))

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return spatial.WriteTo(cfg.GetSpatialIndexPath(), report.POIs)
	})
	group.Go(func() error {
		return persistPOIsAndClaims(groupCtx, cfg, report.POIs, logger)
	})
	if err := group.Wait(); err != nil {
		return Outcome{}, err
	}

	logger.Info("computing popularity scores")
	scores, err := popularity.WriteFile(ctx, cfg.GetPoisDBPath(), cfg.GetPopularityPath(), popularity.DefaultWeights())
	if err != nil {
		return Outcome{}, err
	}
	logger.Info("popularity pass complete", zap.Int("scored_pois", len(scores)))

	indexInfo, err := os.Stat(cfg.GetSpatialIndexPath())
	if err != nil {
		return Outcome{}, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": cfg.GetSpatialIndexPath()})
	}

	return Outcome{POICount: len(report.POIs), IndexSize: indexInfo.Size()}, nil
}

// persistPOIsAndClaims upserts pois into cfg's database, builds the
// Wikidata link map, runs the Wikidata ETL against cfg.WikidataDump, and
// persists the resulting claims, all against the same *sql.DB.
func persistPOIsAndClaims(ctx context.Context, cfg config.IngestConfig, pois []domain.PointOfInterest, logger *zap.Logger) error {
	db, err := sql.Open("sqlite", cfg.GetPoisDBPath())
	if err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": cfg.GetPoisDBPath()})
	}
	defer db.Close()

	if err := sqlite.PersistPOIs(ctx, db, pois); err != nil {
		return err
	}

	links := wikidata.FromPOIs(pois)
	if links.IsEmpty() {
		logger.Info("no wikidata-linked POIs found, skipping claims ETL")
		return nil
	}

	dump, err := wikidata.OpenDump(cfg.WikidataDump)
	if err != nil {
		return err
	}
	defer dump.Close()

	claims, err := wikidata.ExtractLinkedEntityClaims(dump, links)
	if err != nil {
		return err
	}
	logger.Info("wikidata etl complete", zap.Int("entities", len(claims)))

	return sqlite.PersistClaims(ctx, db, claims)
}

// verifyWikidataDumpName checks cfg.WikidataDump's base name against the
// unique "-all.json.bz2" entry dumpsource.Resolve selects from cfg's
// dumpstatus.json manifest (spec.md §6), catching a pre-downloaded dump
// that doesn't match what the manifest currently advertises as current.
func verifyWikidataDumpName(cfg config.IngestConfig) error {
	statusJSON, err := os.ReadFile(cfg.WikidataDumpStatus)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": cfg.WikidataDumpStatus})
		}
		return apperrors.ErrPermissionDenied.WithCause(err).WithDetails(map[string]any{"path": cfg.WikidataDumpStatus})
	}

	want, err := dumpsource.Resolve(statusJSON)
	if err != nil {
		return err
	}

	got := filepath.Base(cfg.WikidataDump)
	if got != want {
		return apperrors.ErrDumpMismatch.WithDetails(map[string]any{"configured": got, "resolved": want})
	}
	return nil
}

func requireRegularFile(path string) error {
	if path == "" {
		return apperrors.ErrMissingArgument.WithDetails(map[string]any{"field": "path"})
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
		}
		return apperrors.ErrPermissionDenied.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	if info.IsDir() {
		return apperrors.ErrNotAFile.WithDetails(map[string]any{"path": path})
	}
	return nil
}
