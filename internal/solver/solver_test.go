package solver

import (
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildside/wildside/internal/domain"
	"github.com/wildside/wildside/internal/travel"
)

func poi(id uint64, lon, lat float64) domain.PointOfInterest {
	return domain.WithEmptyTags(id, orb.Point{lon, lat})
}

func symmetricMatrix(n int, edge time.Duration) travel.Matrix {
	m := make(travel.Matrix, n)
	for i := range m {
		m[i] = make([]time.Duration, n)
		for j := range m[i] {
			if i != j {
				m[i][j] = edge
			}
		}
	}
	return m
}

// linearMatrix models n collinear points spaced step apart, so
// matrix[i][j] = |i-j| * step, matching a depot/POIs-along-an-axis layout.
func linearMatrix(n int, step time.Duration) travel.Matrix {
	m := make(travel.Matrix, n)
	for i := range m {
		m[i] = make([]time.Duration, n)
		for j := range m[i] {
			diff := i - j
			if diff < 0 {
				diff = -diff
			}
			m[i][j] = time.Duration(diff) * step
		}
	}
	return m
}

// Scenario 1: trivial single POI.
func TestSolveTrivialSinglePOI(t *testing.T) {
	req := Request{
		Depot:      poi(0, 0, 0),
		Candidates: []ScoredPOI{{POI: poi(1, 0, 0), Score: 0.5}},
		Matrix:     travel.Matrix{{0, 60 * time.Second}, {60 * time.Second, 0}},
		Budget:     30 * time.Minute,
		Seed:       1,
	}
	result, err := Solve(req)
	require.NoError(t, err)
	require.Len(t, result.POIs, 1)
	assert.Equal(t, uint64(1), result.POIs[0].ID)
	assert.InDelta(t, 0.5, result.Score, 0.0001)
	assert.LessOrEqual(t, result.TotalDuration, 1800*time.Second)
}

// Scenario 2: linear three POIs, generous budget visits all three. On this
// round trip several visit orders share the shortest duration, so the order
// itself is not asserted.
func TestSolveLinearThreePOIsVisitsAll(t *testing.T) {
	matrix := linearMatrix(4, 60*time.Second)
	req := Request{
		Depot: poi(0, 0, 0),
		Candidates: []ScoredPOI{
			{POI: poi(1, 1, 0), Score: 0.3},
			{POI: poi(2, 2, 0), Score: 0.3},
			{POI: poi(3, 3, 0), Score: 0.3},
		},
		Matrix: matrix,
		Budget: 10 * time.Minute,
		Seed:   42,
	}
	result, err := Solve(req)
	require.NoError(t, err)
	require.Len(t, result.POIs, 3)
	assert.InDelta(t, 0.9, result.Score, 0.0001)
	assert.LessOrEqual(t, result.TotalDuration, 10*time.Minute)
}

// Scenario 3: budget constrained, expect at most two POIs.
func TestSolveBudgetConstrained(t *testing.T) {
	matrix := linearMatrix(4, 600*time.Second)
	req := Request{
		Depot: poi(0, 0, 0),
		Candidates: []ScoredPOI{
			{POI: poi(1, 1, 0), Score: 0.3},
			{POI: poi(2, 2, 0), Score: 0.3},
			{POI: poi(3, 3, 0), Score: 0.3},
		},
		Matrix: matrix,
		Budget: 15 * time.Minute,
		Seed:   7,
	}
	result, err := Solve(req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.POIs), 2)
	assert.LessOrEqual(t, result.TotalDuration, 15*time.Minute)
}

// Scenario 4: point-to-point with a distinct end.
func TestSolvePointToPointDistinctEnd(t *testing.T) {
	depot := poi(0, 0, 0)
	end := poi(4, 0.01, 0.01)
	candidates := []ScoredPOI{
		{POI: poi(1, 0.002, 0.002), Score: 0.2},
		{POI: poi(2, 0.005, 0.005), Score: 0.2},
		{POI: poi(3, 0.008, 0.008), Score: 0.2},
	}
	matrix := symmetricMatrix(5, 120*time.Second)
	req := Request{
		Depot:      depot,
		End:        &end,
		Candidates: candidates,
		Matrix:     matrix,
		Budget:     30 * time.Minute,
		Seed:       3,
	}
	result, err := Solve(req)
	require.NoError(t, err)
	for _, visited := range result.POIs {
		assert.NotEqual(t, depot.ID, visited.ID)
		assert.NotEqual(t, end.ID, visited.ID)
	}
}

// Scenario 5: max_nodes-style pruning is the candidate-selection driver's
// job, but the solver must still respect however many candidates it's
// handed (a 3-candidate pool never yields a >3-node route).
func TestSolveRespectsSmallCandidatePool(t *testing.T) {
	matrix := symmetricMatrix(4, 30*time.Second)
	req := Request{
		Depot: poi(0, 0, 0),
		Candidates: []ScoredPOI{
			{POI: poi(1, 1, 0), Score: 0.9},
			{POI: poi(2, 2, 0), Score: 0.8},
			{POI: poi(3, 3, 0), Score: 0.7},
		},
		Matrix: matrix,
		Budget: time.Hour,
		Seed:   9,
	}
	result, err := Solve(req)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(result.POIs), 3)
}

// Scenario 6a: empty candidates, round trip.
func TestSolveEmptyCandidatesRoundTrip(t *testing.T) {
	req := Request{
		Depot:  poi(0, 0, 0),
		Budget: 10 * time.Minute,
	}
	result, err := Solve(req)
	require.NoError(t, err)
	assert.Empty(t, result.POIs)
	assert.Equal(t, float32(0), result.Score)
	assert.Equal(t, time.Duration(0), result.TotalDuration)
}

// Scenario 6b: empty candidates, distinct end.
func TestSolveEmptyCandidatesDistinctEnd(t *testing.T) {
	depot := poi(0, 0, 0)
	end := poi(1, 1, 1)
	req := Request{
		Depot:  depot,
		End:    &end,
		Budget: 10 * time.Minute,
		Matrix: travel.Matrix{{0, 90 * time.Second}, {90 * time.Second, 0}},
	}
	result, err := Solve(req)
	require.NoError(t, err)
	assert.Empty(t, result.POIs)
	assert.Equal(t, float32(0), result.Score)
	assert.Equal(t, 90*time.Second, result.TotalDuration)
}

func TestSolveIsDeterministicForAFixedSeed(t *testing.T) {
	matrix := symmetricMatrix(6, 90*time.Second)
	candidates := []ScoredPOI{
		{POI: poi(1, 1, 0), Score: 0.4},
		{POI: poi(2, 2, 0), Score: 0.9},
		{POI: poi(3, 3, 0), Score: 0.1},
		{POI: poi(4, 4, 0), Score: 0.6},
		{POI: poi(5, 5, 0), Score: 0.3},
	}
	build := func() Result {
		req := Request{
			Depot:      poi(0, 0, 0),
			Candidates: candidates,
			Matrix:     matrix,
			Budget:     12 * time.Minute,
			Seed:       1234,
		}
		result, err := Solve(req)
		require.NoError(t, err)
		return result
	}
	first, second := build(), build()
	assert.Equal(t, first.Score, second.Score)
	assert.Equal(t, first.TotalDuration, second.TotalDuration)
	require.Equal(t, len(first.POIs), len(second.POIs))
	for i := range first.POIs {
		assert.Equal(t, first.POIs[i].ID, second.POIs[i].ID)
	}
}

func TestSolveNoFeasibleInsertionYieldsEmptyRoute(t *testing.T) {
	matrix := symmetricMatrix(3, time.Hour)
	req := Request{
		Depot: poi(0, 0, 0),
		Candidates: []ScoredPOI{
			{POI: poi(1, 1, 0), Score: 0.5},
			{POI: poi(2, 2, 0), Score: 0.5},
		},
		Matrix: matrix,
		Budget: time.Minute,
		Seed:   1,
	}
	result, err := Solve(req)
	require.NoError(t, err)
	assert.Empty(t, result.POIs)
	assert.Equal(t, time.Duration(0), result.TotalDuration)
}
