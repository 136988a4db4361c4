package solver

import "math/rand"

// ruinAndRecreateFraction is the share of the incumbent tour removed before
// each recreate pass; a fixed fraction keeps the perturbation large enough
// to escape local optima without discarding the whole solution.
const ruinAndRecreateFraction = 0.3

// ruinAndRecreate perturbs incumbent by removing a random subset of its
// visited candidates ("ruin"), then greedily reinserts every unvisited
// candidate, including the ones just removed, back into the tour
// ("recreate"). The result is always a feasible tour (possibly identical to
// incumbent if nothing better can be reinserted).
func ruinAndRecreate(req Request, end int, incumbent []int, rng *rand.Rand) []int {
	survivors, removed := ruin(incumbent, rng)
	pool := append(unvisitedCandidates(req, incumbent), removed...)
	return greedyConstruct(req, end, survivors, pool)
}

// ruin splits tour into a randomly chosen removed subset and the remaining
// survivors, preserving the relative order of both.
func ruin(tour []int, rng *rand.Rand) (survivors, removed []int) {
	if len(tour) == 0 {
		return nil, nil
	}
	removeCount := int(float64(len(tour))*ruinAndRecreateFraction + 0.5)
	if removeCount < 1 {
		removeCount = 1
	}
	if removeCount > len(tour) {
		removeCount = len(tour)
	}

	shuffled := append([]int(nil), tour...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	removedSet := make(map[int]struct{}, removeCount)
	for _, idx := range shuffled[:removeCount] {
		removedSet[idx] = struct{}{}
	}

	for _, idx := range tour {
		if _, gone := removedSet[idx]; gone {
			removed = append(removed, idx)
			continue
		}
		survivors = append(survivors, idx)
	}
	return survivors, removed
}

// unvisitedCandidates returns every candidate index from req not present in
// tour, so a recreate pass can also consider candidates the incumbent never
// visited at all.
func unvisitedCandidates(req Request, tour []int) []int {
	visited := make(map[int]struct{}, len(tour))
	for _, idx := range tour {
		visited[idx] = struct{}{}
	}
	var unvisited []int
	for i := range req.Candidates {
		if _, ok := visited[i]; !ok {
			unvisited = append(unvisited, i)
		}
	}
	return unvisited
}
