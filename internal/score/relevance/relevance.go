// Package relevance implements request-time user relevance scoring: it
// blends per-theme interest matches (resolved against Wikidata claims
// stored in pois.db) with the pre-computed global popularity score loaded
// from popularity.bin.
package relevance

import (
	"database/sql"
	"fmt"
	"math"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
	"github.com/wildside/wildside/internal/score/popularity"
)

const claimLookupSQL = "SELECT 1 FROM poi_wikidata_claims WHERE poi_id = ? AND property_id = ? AND value_entity_id = ? LIMIT 1"

// defaultHistoryProperty/defaultHistoryValue seed the default theme
// mapping: History maps to the UNESCO World Heritage Site claim.
const (
	defaultHistoryProperty = "P1435"
	defaultHistoryValue    = "Q9259"
)

// ClaimSelector identifies a Wikidata claim by property and value id.
type ClaimSelector struct {
	PropertyID    string
	ValueEntityID string
}

// NewClaimSelector validates that both identifiers are non-empty.
func NewClaimSelector(propertyID, valueEntityID string) (ClaimSelector, error) {
	if emptyOrWhitespace(propertyID) || emptyOrWhitespace(valueEntityID) {
		return ClaimSelector{}, fmt.Errorf("claim selector must include non-empty property and value identifiers")
	}
	return ClaimSelector{PropertyID: propertyID, ValueEntityID: valueEntityID}, nil
}

func emptyOrWhitespace(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}

// ThemeClaimMapping declares, per theme, the set of claims a POI must carry
// at least one of to be considered a match for that theme.
type ThemeClaimMapping struct {
	selectors map[domain.Theme][]ClaimSelector
}

// NewThemeClaimMapping returns an empty mapping.
func NewThemeClaimMapping() ThemeClaimMapping {
	return ThemeClaimMapping{selectors: make(map[domain.Theme][]ClaimSelector)}
}

// Insert adds selector to theme's selector list.
func (m ThemeClaimMapping) Insert(theme domain.Theme, selector ClaimSelector) {
	m.selectors[theme] = append(m.selectors[theme], selector)
}

// WithSelector inserts selector and returns the mapping, for chaining.
func (m ThemeClaimMapping) WithSelector(theme domain.Theme, selector ClaimSelector) ThemeClaimMapping {
	m.Insert(theme, selector)
	return m
}

// Selectors returns the selectors configured for theme.
func (m ThemeClaimMapping) Selectors(theme domain.Theme) ([]ClaimSelector, bool) {
	s, ok := m.selectors[theme]
	return s, ok
}

// DefaultThemeClaimMapping maps domain.ThemeHistory to the UNESCO World
// Heritage Site claim (P1435=Q9259).
func DefaultThemeClaimMapping() ThemeClaimMapping {
	m := NewThemeClaimMapping()
	m.Insert(domain.ThemeHistory, ClaimSelector{PropertyID: defaultHistoryProperty, ValueEntityID: defaultHistoryValue})
	return m
}

// ScoreWeights is the relative weighting between global popularity and
// user relevance in the blended score.
type ScoreWeights struct {
	Popularity    float32
	UserRelevance float32
}

// DefaultScoreWeights splits popularity and user relevance evenly.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{Popularity: 0.5, UserRelevance: 0.5}
}

// Validate rejects non-finite, negative, or all-zero weights.
func (w ScoreWeights) Validate() error {
	if isNaNOrInf(w.Popularity) || isNaNOrInf(w.UserRelevance) {
		return fmt.Errorf("weights must be finite and sum to a positive value")
	}
	if w.Popularity < 0 || w.UserRelevance < 0 {
		return fmt.Errorf("weights must be finite and sum to a positive value")
	}
	if w.Popularity+w.UserRelevance == 0 {
		return fmt.Errorf("weights must be finite and sum to a positive value")
	}
	return nil
}

func isNaNOrInf(f float32) bool {
	return math.IsNaN(float64(f)) || math.IsInf(float64(f), 0)
}

// blend combines popularity and userRelevance. A zero user-relevance
// component drops the user-relevance weight from the denominator entirely,
// so an unmatched POI falls back to pure popularity rather than being
// diluted by an unearned zero.
func (w ScoreWeights) blend(popularityScore, userRelevance float32) float32 {
	userWeight := float32(0)
	if userRelevance > 0 {
		userWeight = w.UserRelevance
	}
	total := w.Popularity + userWeight
	if total == 0 {
		return 0
	}
	return (popularityScore*w.Popularity + userRelevance*userWeight) / total
}

// Scorer blends per-user theme interests with pre-computed global
// popularity. It implements domain.Scorer.
type Scorer struct {
	mu         sync.Mutex
	db         *sql.DB
	mapping    ThemeClaimMapping
	weights    ScoreWeights
	popularity popularity.Scores
}

// WithDefaults constructs a Scorer using the default theme mapping and
// score weights.
func WithDefaults(databasePath, popularityPath string) (*Scorer, error) {
	return FromPaths(databasePath, popularityPath, DefaultThemeClaimMapping(), DefaultScoreWeights())
}

// FromPaths constructs a Scorer from artefact paths, a theme mapping, and
// score weights.
func FromPaths(databasePath, popularityPath string, mapping ThemeClaimMapping, weights ScoreWeights) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", "file:"+databasePath+"?mode=ro")
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": databasePath})
	}
	if _, err := db.Prepare(claimLookupSQL); err != nil {
		db.Close()
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"step": "prepare claim lookup"})
	}

	scores, err := popularity.LoadFile(popularityPath)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Scorer{db: db, mapping: mapping, weights: weights, popularity: scores}, nil
}

// Close releases the scorer's database handle.
func (s *Scorer) Close() error {
	return s.db.Close()
}

// Score implements domain.Scorer.
func (s *Scorer) Score(poi domain.PointOfInterest, profile domain.InterestProfile) float32 {
	popularityScore := domain.SanitiseScore(s.popularityFor(poi.ID))
	userRelevance := s.userRelevance(poi, profile)
	blended := s.weights.blend(popularityScore, userRelevance)
	return domain.SanitiseScore(blended)
}

func (s *Scorer) popularityFor(id uint64) float32 {
	v, _ := s.popularity.Get(id)
	return v
}

func (s *Scorer) userRelevance(poi domain.PointOfInterest, profile domain.InterestProfile) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var relevance float32
	for theme, selectors := range s.mapping.selectors {
		weight := profile.Weight(theme)
		if weight <= 0 || isNaNOrInf64(weight) {
			continue
		}
		matched := false
		for _, selector := range selectors {
			if s.claimExists(poi.ID, selector) {
				matched = true
				break
			}
		}
		if matched {
			relevance += float32(weight)
		}
	}
	return domain.SanitiseScore(relevance)
}

func isNaNOrInf64(f float64) bool {
	return math.IsNaN(f) || math.IsInf(f, 0)
}

func (s *Scorer) claimExists(poiID uint64, selector ClaimSelector) bool {
	var exists int
	err := s.db.QueryRow(claimLookupSQL, int64(poiID), selector.PropertyID, selector.ValueEntityID).Scan(&exists)
	return err == nil
}
