package solver

import (
	"sort"
	"time"

	"github.com/wildside/wildside/internal/travel"
)

// greedyConstruct extends initialTour by repeatedly inserting the
// candidate/position pair from pool (0-based indices into req.Candidates)
// with the best score-per-added-time ratio, stopping once no remaining
// candidate has a feasible insertion. remaining is kept as a slice of
// candidate indices in ascending order, not a map, so that a tie in ratio is always broken the same way
// regardless of Go's randomised map iteration order: the lowest candidate
// index among the tied best ratios wins, every run, for a given seed.
func greedyConstruct(req Request, end int, initialTour, pool []int) []int {
	tour := append([]int(nil), initialTour...)
	remaining := append([]int(nil), pool...)
	sort.Ints(remaining)

	for len(remaining) > 0 {
		bestSlot, bestPos, bestRatio, found := -1, -1, 0.0, false
		for slot, idx := range remaining {
			pos, cost, ok := cheapestFeasibleInsertion(req, end, tour, idx)
			if !ok {
				continue
			}
			ratio := insertionRatio(req.Candidates[idx].Score, cost)
			if !found || ratio > bestRatio {
				bestSlot, bestPos, bestRatio, found = slot, pos, ratio, true
			}
		}
		if !found {
			break
		}
		tour = insertAt(tour, bestPos, remaining[bestSlot])
		remaining = append(remaining[:bestSlot], remaining[bestSlot+1:]...)
	}
	return tour
}

// insertionRatio scores an insertion by score gained per second added; a
// zero-cost insertion (two depot-adjacent nodes collapsing free travel) is
// treated as maximally attractive.
func insertionRatio(score float32, cost time.Duration) float64 {
	if cost <= 0 {
		return float64(score) * 1e9
	}
	return float64(score) / cost.Seconds()
}

// cheapestFeasibleInsertion finds the position in tour where inserting
// candidateIdx keeps total duration within budget, preferring the
// lowest-cost (least time added) position. Returns ok=false if no position
// is feasible.
func cheapestFeasibleInsertion(req Request, end int, tour []int, candidateIdx int) (pos int, cost time.Duration, ok bool) {
	currentDuration := req.tourDuration(tour, end)
	bestPos, bestCost, found := -1, time.Duration(0), false

	for position := 0; position <= len(tour); position++ {
		delta := insertionDelta(req, tour, position, candidateIdx, end)
		if delta >= travel.Unreachable || currentDuration+delta > req.Budget {
			continue
		}
		if !found || delta < bestCost {
			bestPos, bestCost, found = position, delta, true
		}
	}
	return bestPos, bestCost, found
}

// insertionDelta computes the change in total tour duration from inserting
// candidateIdx at position, per the feasibility formula in spec.md §4.9:
// t(prev, job) + t(job, next) - t(prev, next). An insertion that requires
// an unreachable leg is reported as travel.Unreachable so it is always
// rejected by the budget check, rather than risking signed-overflow
// arithmetic on travel.Unreachable's near-MaxInt64 sentinel value.
func insertionDelta(req Request, tour []int, position, candidateIdx, end int) time.Duration {
	prevNode := matrixNode(tour, position-1, 0)
	nextNode := matrixNode(tour, position, end)
	jobNode := candidateIdx + 1

	toJob := req.Matrix.At(prevNode, jobNode)
	fromJob := req.Matrix.At(jobNode, nextNode)
	if toJob >= travel.Unreachable || fromJob >= travel.Unreachable {
		return travel.Unreachable
	}
	existing := req.Matrix.At(prevNode, nextNode)
	if existing >= travel.Unreachable {
		existing = 0
	}
	return toJob + fromJob - existing
}

// matrixNode resolves the matrix index of tour[i], or boundary when i falls
// outside [0, len(tour)).
func matrixNode(tour []int, i, boundary int) int {
	if i < 0 || i >= len(tour) {
		return boundary
	}
	return tour[i] + 1
}

func insertAt(tour []int, pos, value int) []int {
	out := make([]int, 0, len(tour)+1)
	out = append(out, tour[:pos]...)
	out = append(out, value)
	out = append(out, tour[pos:]...)
	return out
}
