package relevance

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
	_ "modernc.org/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildside/wildside/internal/domain"
)

const (
	testProperty = "P999"
	testValue    = "Q_TEST_ART"
)

func seedClaimsDatabase(t *testing.T, path string) {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	statements := []struct {
		sql  string
		args []any
	}{
		{sql: `CREATE TABLE poi_wikidata_links (poi_id INTEGER NOT NULL, entity_id TEXT NOT NULL)`},
		{sql: `CREATE TABLE wikidata_entity_claims (entity_id TEXT NOT NULL, property_id TEXT NOT NULL, value_entity_id TEXT NOT NULL)`},
		{sql: `CREATE VIEW poi_wikidata_claims AS
			SELECT links.poi_id AS poi_id, claims.entity_id AS entity_id, claims.property_id AS property_id, claims.value_entity_id AS value_entity_id
			FROM poi_wikidata_links AS links JOIN wikidata_entity_claims AS claims ON claims.entity_id = links.entity_id`},
		{sql: `INSERT INTO poi_wikidata_links (poi_id, entity_id) VALUES (1, 'Q_ART')`},
		{sql: `INSERT INTO wikidata_entity_claims (entity_id, property_id, value_entity_id) VALUES ('Q_ART', ?, ?)`, args: []any{testProperty, testValue}},
		{sql: `INSERT INTO wikidata_entity_claims (entity_id, property_id, value_entity_id) VALUES ('Q_ART', 'P1435', 'Q9259')`},
	}
	for _, stmt := range statements {
		_, err := db.Exec(stmt.sql, stmt.args...)
		require.NoError(t, err)
	}
}

func writePopularityFixture(t *testing.T, dir string, poiID uint64, score float32) string {
	t.Helper()
	path := filepath.Join(dir, "popularity.bin")
	payload, err := cbor.Marshal(map[uint64]float32{poiID: score})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0o644))
	return path
}

func TestDefaultsIncludeHistoryMapping(t *testing.T) {
	mapping := DefaultThemeClaimMapping()
	_, ok := mapping.Selectors(domain.ThemeHistory)
	assert.True(t, ok)
}

func TestNewClaimSelectorRejectsEmptyFields(t *testing.T) {
	_, err := NewClaimSelector("", testValue)
	assert.Error(t, err)
}

func TestScoreWeightsRejectsZeroTotal(t *testing.T) {
	err := ScoreWeights{Popularity: 0, UserRelevance: 0}.Validate()
	assert.Error(t, err)
}

func TestScoringBlendsPopularityAndInterest(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pois.db")
	seedClaimsDatabase(t, dbPath)
	popularityPath := writePopularityFixture(t, dir, 1, 0.25)

	mapping := NewThemeClaimMapping()
	selector, err := NewClaimSelector(testProperty, testValue)
	require.NoError(t, err)
	mapping.Insert(domain.ThemeArt, selector)

	scorer, err := FromPaths(dbPath, popularityPath, mapping, DefaultScoreWeights())
	require.NoError(t, err)
	defer scorer.Close()

	poi := domain.WithEmptyTags(1, domain.PointOfInterest{}.Location)
	profile := domain.InterestProfile{domain.ThemeArt: 0.8}

	score := scorer.Score(poi, profile)
	expected := float32((0.25 + 0.8) / 2)
	assert.InDelta(t, expected, score, 0.0001)
}

func TestNonMatchingInterestYieldsPopularityOnly(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pois.db")
	seedClaimsDatabase(t, dbPath)
	popularityPath := writePopularityFixture(t, dir, 1, 0.6)

	scorer, err := WithDefaults(dbPath, popularityPath)
	require.NoError(t, err)
	defer scorer.Close()

	poi := domain.WithEmptyTags(1, domain.PointOfInterest{}.Location)
	profile := domain.InterestProfile{domain.ThemeArt: 1.0}

	score := scorer.Score(poi, profile)
	assert.InDelta(t, float32(0.6), score, 0.0001)
}

func TestMissingPopularityFallsBackToInterest(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "pois.db")
	seedClaimsDatabase(t, dbPath)
	// Popularity file only has an entry for POI 2, so POI 1 defaults to 0.
	popularityPath := writePopularityFixture(t, dir, 2, 0.0)

	mapping := DefaultThemeClaimMapping()
	scorer, err := FromPaths(dbPath, popularityPath, mapping, ScoreWeights{Popularity: 0.3, UserRelevance: 0.7})
	require.NoError(t, err)
	defer scorer.Close()

	poi := domain.WithEmptyTags(1, domain.PointOfInterest{}.Location)
	profile := domain.InterestProfile{domain.ThemeHistory: 1.0}

	score := scorer.Score(poi, profile)
	assert.InDelta(t, float32(0.7), score, 0.0001)
}
