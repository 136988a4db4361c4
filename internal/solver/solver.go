// Package solver implements the single-walker orienteering metaheuristic:
// given scored candidate POIs, a depot, an optional distinct end node, a
// travel-time matrix, and a duration budget, it constructs and refines an
// ordered visit sequence maximising total score without exceeding budget.
package solver

import (
	"math/rand"
	"time"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
	"github.com/wildside/wildside/internal/travel"
)

// DefaultGenerations bounds the ruin-and-recreate loop so the solver always
// terminates without a wall-clock timeout.
const DefaultGenerations = 50

// ScoredPOI pairs a candidate POI with its precomputed relevance score.
type ScoredPOI struct {
	POI   domain.PointOfInterest
	Score float32
}

// Request is the solver's input. Matrix indices are depot=0,
// candidates=1..=len(Candidates), and end=len(Candidates)+1 when End is
// set; Matrix must have exactly that many rows/columns.
type Request struct {
	Depot       domain.PointOfInterest
	End         *domain.PointOfInterest
	Candidates  []ScoredPOI
	Matrix      travel.Matrix
	Budget      time.Duration
	Seed        uint64
	Generations int
}

// Result is the solved tour: the ordered POIs visited (excluding depot and
// end markers), its total score, and its total travel duration including
// the final leg to End (or back to Depot on a round trip).
type Result struct {
	POIs          []domain.PointOfInterest
	Score         float32
	TotalDuration time.Duration
}

// endIndex returns the matrix index of the terminal node: len(candidates)+1
// for a distinct end, or 0 (the depot) for a round trip.
func (r Request) endIndex() int {
	if r.End != nil {
		return len(r.Candidates) + 1
	}
	return 0
}

// Solve runs the metaheuristic and returns the best tour found. It never
// fails on a well-formed Request; a request with no feasible insertion
// yields an empty route.
func Solve(req Request) (Result, error) {
	if req.Budget < 0 {
		return Result{}, apperrors.ErrSolverInvalidRequest.WithDetails(map[string]any{"reason": "negative budget"})
	}
	end := req.endIndex()
	if len(req.Candidates) == 0 {
		return Result{TotalDuration: req.directDuration(end)}, nil
	}
	if err := req.validateMatrix(end); err != nil {
		return Result{}, err
	}

	generations := req.Generations
	if generations <= 0 {
		generations = DefaultGenerations
	}
	rng := rand.New(rand.NewSource(int64(req.Seed)))

	best := greedyConstruct(req, end, nil, allCandidateIndices(len(req.Candidates)))
	for i := 0; i < generations; i++ {
		candidate := ruinAndRecreate(req, end, best, rng)
		if req.better(candidate, best, end) {
			best = candidate
		}
	}

	return req.toResult(best, end), nil
}

func (r Request) directDuration(end int) time.Duration {
	if end == 0 {
		return 0
	}
	if len(r.Matrix) == 0 {
		return 0
	}
	return r.Matrix.At(0, end)
}

func (r Request) validateMatrix(end int) error {
	wantSize := len(r.Candidates) + 1
	if end != 0 {
		wantSize++
	}
	if len(r.Matrix) != wantSize {
		return apperrors.ErrSolverInvalidRequest.WithDetails(map[string]any{
			"reason": "matrix size does not match candidate count", "want": wantSize, "got": len(r.Matrix),
		})
	}
	for _, row := range r.Matrix {
		if len(row) != wantSize {
			return apperrors.ErrSolverInvalidRequest.WithDetails(map[string]any{"reason": "matrix is not square"})
		}
	}
	return nil
}

func (r Request) toResult(tour []int, end int) Result {
	pois := make([]domain.PointOfInterest, len(tour))
	var score float32
	for i, candidateIdx := range tour {
		pois[i] = r.Candidates[candidateIdx].POI
		score += r.Candidates[candidateIdx].Score
	}
	return Result{
		POIs:          pois,
		Score:         score,
		TotalDuration: r.tourDuration(tour, end),
	}
}

// tourDuration walks depot -> candidates... -> end, summing matrix edges.
func (r Request) tourDuration(tour []int, end int) time.Duration {
	prev := 0
	var total time.Duration
	for _, candidateIdx := range tour {
		node := candidateIdx + 1
		total += r.Matrix.At(prev, node)
		prev = node
	}
	total += r.Matrix.At(prev, end)
	return total
}

func allCandidateIndices(n int) []int {
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	return all
}

// better applies the lexicographic objective: total score first (higher
// wins), total travel time second (lower wins) as a tiebreaker.
func (r Request) better(candidate, incumbent []int, end int) bool {
	candidateScore := r.tourScore(candidate)
	incumbentScore := r.tourScore(incumbent)
	if candidateScore != incumbentScore {
		return candidateScore > incumbentScore
	}
	return r.tourDuration(candidate, end) < r.tourDuration(incumbent, end)
}

func (r Request) tourScore(tour []int) float32 {
	var score float32
	for _, candidateIdx := range tour {
		score += r.Candidates[candidateIdx].Score
	}
	return score
}
