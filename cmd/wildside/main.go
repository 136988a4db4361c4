// Command wildside is the CLI entrypoint for the two offline/online
// subcommands described by spec.md §6: "ingest" builds the persisted
// artefact set from an OSM PBF extract and a Wikidata dump; "solve" loads
// that artefact set and answers a single orienteering request.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wildside/wildside/internal/config"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
	"github.com/wildside/wildside/internal/pkg/logger"
	"github.com/wildside/wildside/internal/usecase/ingestusecase"
	"github.com/wildside/wildside/internal/usecase/solveusecase"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
}

// newRootCmd wires both subcommands behind the shared --log-level and
// --config flags, matching the teacher's config-then-logger bootstrap
// order (cmd/api/main.go steps 1-2) collapsed into per-command RunE
// closures since there is no long-lived server to keep alive between them.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "wildside",
		Short:         "Personalised walking-tour ingestion and solving",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newIngestCmd(), newSolveCmd())
	return root
}

func newIngestCmd() *cobra.Command {
	var (
		configFile         string
		osmPBF             string
		wikidataDump       string
		wikidataDumpStatus string
		outputDir          string
		logLevel           string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Ingest an OSM PBF extract and Wikidata dump into a queryable artefact set",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadIngestConfig(configFile, osmPBF, wikidataDump, wikidataDumpStatus, outputDir, logLevel)
			if cfg.OsmPBF == "" {
				return apperrors.ErrMissingArgument.WithDetails(map[string]any{"field": "osm-pbf", "env": "WILDSIDE_OSM_PBF"})
			}
			if cfg.WikidataDump == "" {
				return apperrors.ErrMissingArgument.WithDetails(map[string]any{"field": "wikidata-dump", "env": "WILDSIDE_WIKIDATA_DUMP"})
			}

			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("initialise logger: %w", err)
			}
			defer log.Sync()

			log.Info("starting ingest",
				zap.String("osm_pbf", cfg.OsmPBF),
				zap.String("wikidata_dump", cfg.WikidataDump),
				zap.String("output_dir", cfg.OutputDir))

			outcome, err := ingestusecase.Run(cmd.Context(), cfg, log)
			if err != nil {
				log.Error("ingest failed", zap.Error(err))
				return err
			}

			log.Info("ingest complete",
				zap.Int("poi_count", outcome.POICount),
				zap.Int64("index_size_bytes", outcome.IndexSize))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "optional configuration file")
	flags.StringVar(&osmPBF, "osm-pbf", "", "path to the OSM PBF extract")
	flags.StringVar(&wikidataDump, "wikidata-dump", "", "path to the Wikidata JSON dump")
	flags.StringVar(&wikidataDumpStatus, "wikidata-dump-status", "", "optional dumpstatus.json manifest to validate --wikidata-dump's file name against")
	flags.StringVar(&outputDir, "output-dir", "", "directory to write the persisted artefact set to")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

func newSolveCmd() *cobra.Command {
	var (
		configFile   string
		artefactsDir string
		poisDB       string
		spatialIndex string
		popularity   string
		osrmBaseURL  string
		logLevel     string
	)

	cmd := &cobra.Command{
		Use:   "solve REQUEST_PATH",
		Short: "Solve a single orienteering request against a persisted artefact set",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadSolveConfig(configFile, args[0], artefactsDir, poisDB, spatialIndex, popularity, osrmBaseURL, logLevel)

			log, err := logger.New(cfg.LogLevel)
			if err != nil {
				return fmt.Errorf("initialise logger: %w", err)
			}
			defer log.Sync()

			log.Info("starting solve", zap.String("request", cfg.RequestPath))

			if err := solveusecase.Run(cmd.Context(), cfg, os.Stdout, log); err != nil {
				log.Error("solve failed", zap.Error(err))
				return err
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "optional configuration file")
	flags.StringVar(&artefactsDir, "artefacts-dir", "", "directory containing the persisted artefact set")
	flags.StringVar(&poisDB, "pois-db", "", "path to pois.db (defaults under --artefacts-dir)")
	flags.StringVar(&spatialIndex, "spatial-index", "", "path to pois.rstar (defaults under --artefacts-dir)")
	flags.StringVar(&popularity, "popularity", "", "path to popularity.bin (defaults under --artefacts-dir)")
	flags.StringVar(&osrmBaseURL, "osrm-base-url", "", "base URL of the OSRM Table API backend")
	flags.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	return cmd
}

// exitCodeFor maps a failed command's error onto the process exit status
// per spec.md §7's taxonomy: each AppError category carries its own exit
// code; anything else (a bug, not a modelled failure) exits 1.
func exitCodeFor(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		fmt.Fprintln(os.Stderr, appErr.Error())
		return appErr.ExitCode
	}
	fmt.Fprintln(os.Stderr, err.Error())
	return 1
}
