// Package config loads Wildside's two subcommand configurations, layering
// CLI flags over environment variables (WILDSIDE_*) over a config file over
// defaults, reusing the teacher's viper-based Load() pattern.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// IngestConfig configures the offline ingest driver.
type IngestConfig struct {
	OsmPBF             string
	WikidataDump       string
	WikidataDumpStatus string
	OutputDir          string
	LogLevel           string
}

// GetPoisDBPath returns the path of the pois.db artefact inside OutputDir.
func (c IngestConfig) GetPoisDBPath() string {
	return filepath.Join(c.OutputDir, "pois.db")
}

// GetSpatialIndexPath returns the path of the pois.rstar artefact inside
// OutputDir.
func (c IngestConfig) GetSpatialIndexPath() string {
	return filepath.Join(c.OutputDir, "pois.rstar")
}

// GetPopularityPath returns the path of the popularity.bin artefact inside
// OutputDir.
func (c IngestConfig) GetPopularityPath() string {
	return filepath.Join(c.OutputDir, "popularity.bin")
}

// SolveConfig configures the online solve driver. Any artefact path left
// empty is derived from ArtefactsDir by Resolve.
type SolveConfig struct {
	RequestPath   string
	ArtefactsDir  string
	PoisDB        string
	SpatialIndex  string
	Popularity    string
	OsrmBaseURL   string
	LogLevel      string
}

// Resolve fills in any unset artefact path from ArtefactsDir, mirroring the
// teacher's defaulting-block style in the old Load().
func (c SolveConfig) Resolve() SolveConfig {
	resolved := c
	if resolved.PoisDB == "" {
		resolved.PoisDB = filepath.Join(resolved.ArtefactsDir, "pois.db")
	}
	if resolved.SpatialIndex == "" {
		resolved.SpatialIndex = filepath.Join(resolved.ArtefactsDir, "pois.rstar")
	}
	if resolved.Popularity == "" {
		resolved.Popularity = filepath.Join(resolved.ArtefactsDir, "popularity.bin")
	}
	return resolved
}

// GetPoisDBPath returns the resolved pois.db path.
func (c SolveConfig) GetPoisDBPath() string {
	return c.Resolve().PoisDB
}

// GetSpatialIndexPath returns the resolved spatial index path.
func (c SolveConfig) GetSpatialIndexPath() string {
	return c.Resolve().SpatialIndex
}

// GetPopularityPath returns the resolved popularity.bin path.
func (c SolveConfig) GetPopularityPath() string {
	return c.Resolve().Popularity
}

// envPrefix namespaces every environment-variable override, per spec.md §6
// ("flags > environment variables (WILDSIDE_*) > configuration file >
// defaults").
const envPrefix = "WILDSIDE"

// newViper builds a viper instance layered flags > env > file > defaults,
// reused by both subcommands' loaders.
func newViper(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
		// A missing config file is not an error: flags/env/defaults still
		// apply, matching the teacher's optional .env semantics.
		_ = v.ReadInConfig()
	}
	return v
}

// LoadIngestConfig builds an IngestConfig from the given flag values, env
// vars, and optional config file, in that priority order. wikidataDumpStatus
// is optional: when set, the ingest driver validates the configured dump's
// file name against this dumpstatus.json manifest before reading it.
func LoadIngestConfig(configFile, osmPBF, wikidataDump, wikidataDumpStatus, outputDir, logLevel string) IngestConfig {
	v := newViper(configFile)
	v.SetDefault("osm-pbf", "")
	v.SetDefault("wikidata-dump", "")
	v.SetDefault("wikidata-dump-status", "")
	v.SetDefault("output-dir", ".")
	v.SetDefault("log-level", "info")

	return IngestConfig{
		OsmPBF:             firstNonEmpty(osmPBF, v.GetString("osm-pbf")),
		WikidataDump:       firstNonEmpty(wikidataDump, v.GetString("wikidata-dump")),
		WikidataDumpStatus: firstNonEmpty(wikidataDumpStatus, v.GetString("wikidata-dump-status")),
		OutputDir:          firstNonEmpty(outputDir, v.GetString("output-dir")),
		LogLevel:           firstNonEmpty(logLevel, v.GetString("log-level")),
	}
}

// LoadSolveConfig builds a SolveConfig from the given flag values, env
// vars, and optional config file, in that priority order.
func LoadSolveConfig(configFile, requestPath, artefactsDir, poisDB, spatialIndex, popularity, osrmBaseURL, logLevel string) SolveConfig {
	v := newViper(configFile)
	v.SetDefault("artefacts-dir", ".")
	v.SetDefault("pois-db", "")
	v.SetDefault("spatial-index", "")
	v.SetDefault("popularity", "")
	v.SetDefault("osrm-base-url", "http://localhost:5000")
	v.SetDefault("log-level", "info")

	return SolveConfig{
		RequestPath:  requestPath,
		ArtefactsDir: firstNonEmpty(artefactsDir, v.GetString("artefacts-dir")),
		PoisDB:       firstNonEmpty(poisDB, v.GetString("pois-db")),
		SpatialIndex: firstNonEmpty(spatialIndex, v.GetString("spatial-index")),
		Popularity:   firstNonEmpty(popularity, v.GetString("popularity")),
		OsrmBaseURL:  firstNonEmpty(osrmBaseURL, v.GetString("osrm-base-url")),
		LogLevel:     firstNonEmpty(logLevel, v.GetString("log-level")),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
