// Package solveusecase implements the online solve driver: it loads and
// validates a solve request, selects and scores candidate POIs around the
// requested area, assembles a travel-time matrix, invokes the orienteering
// solver, and pretty-prints the resulting route as JSON. It follows the
// teacher's usecase-validates-then-delegates-to-repository shape
// (internal/usecase/poi_usecase.go).
package solveusecase

import (
	"context"
	"io"
	"sort"
	"time"

	"github.com/paulmach/orb"
	"go.uber.org/zap"

	"github.com/wildside/wildside/internal/config"
	"github.com/wildside/wildside/internal/domain"
	"github.com/wildside/wildside/internal/pkg/geoutil"
	"github.com/wildside/wildside/internal/repository/sqlite"
	"github.com/wildside/wildside/internal/score/relevance"
	"github.com/wildside/wildside/internal/solver"
	"github.com/wildside/wildside/internal/travel"
)

// averageWalkingSpeedKmh is the assumed visitor speed used to size the
// candidate-selection bounding box, matching the reference solver's
// default (wildside-solver-vrp's average_speed_kmh: 5.0).
const averageWalkingSpeedKmh = 5.0

// markerID is the synthetic id used for the depot/end matrix rows; neither
// is ever looked up by id, only positioned by matrix index, so a shared
// fixed value is safe regardless of real POI id collisions.
const markerID = uint64(0)

// Run executes the solve pipeline against cfg and writes the resulting
// response JSON to w.
func Run(ctx context.Context, cfg config.SolveConfig, w io.Writer, logger *zap.Logger) error {
	started := time.Now()
	resolved := cfg.Resolve()

	request, err := LoadRequest(resolved.RequestPath)
	if err != nil {
		return err
	}

	store, err := sqlite.Open(ctx, resolved.PoisDB, resolved.SpatialIndex)
	if err != nil {
		return err
	}

	scorer, err := relevance.WithDefaults(resolved.PoisDB, resolved.Popularity)
	if err != nil {
		return err
	}
	defer scorer.Close()

	provider := travel.NewHTTPProvider(resolved.OsrmBaseURL, logger)

	candidates := selectCandidates(store, scorer, request)
	depot := domain.WithEmptyTags(markerID, request.Start)

	var end *domain.PointOfInterest
	var matrixPOIs []domain.PointOfInterest
	matrixPOIs = append(matrixPOIs, depot)
	for _, c := range candidates {
		matrixPOIs = append(matrixPOIs, c.POI)
	}
	if request.End != nil {
		endPOI := domain.WithEmptyTags(markerID, *request.End)
		end = &endPOI
		matrixPOIs = append(matrixPOIs, endPOI)
	}

	matrix, err := provider.GetTravelTimeMatrix(ctx, matrixPOIs)
	if err != nil {
		return err
	}

	result, err := solver.Solve(solver.Request{
		Depot:      depot,
		End:        end,
		Candidates: candidates,
		Matrix:     matrix,
		Budget:     time.Duration(request.DurationMinutes) * time.Minute,
		Seed:       request.Seed,
	})
	if err != nil {
		return err
	}

	response := domain.SolveResponse{
		Route: domain.Route{
			Start:         request.Start,
			End:           routeEnd(request),
			POIs:          result.POIs,
			TotalDuration: result.TotalDuration,
		},
		Score: result.Score,
		Diagnostics: domain.Diagnostics{
			SolveTime:           time.Since(started),
			CandidatesEvaluated: len(candidates),
		},
	}

	return WriteResponse(w, response)
}

// routeEnd is the response route's terminal coordinate: the request's
// distinct end if set, else the start (a round trip).
func routeEnd(request domain.SolveRequest) orb.Point {
	if request.End != nil {
		return *request.End
	}
	return request.Start
}

// selectCandidates implements spec.md §4.9's candidate-selection algorithm:
// expand a bbox around start (and end, if present) by the distance
// coverable at walking speed within the request's duration, query the
// store, score each POI, sort by (score desc, id asc), and truncate to
// max_nodes when set.
func selectCandidates(store *sqlite.PoiStore, scorer *relevance.Scorer, request domain.SolveRequest) []solver.ScoredPOI {
	durationHours := float64(request.DurationMinutes) / 60
	radiusKm := averageWalkingSpeedKmh * durationHours

	centres := []orb.Point{request.Start}
	if request.End != nil {
		centres = append(centres, *request.End)
	}
	bbox := geoutil.BoundingBox(radiusKm, centres...)

	pois := store.GetPOIsInBBox(bbox)
	scored := make([]solver.ScoredPOI, len(pois))
	for i, poi := range pois {
		scored[i] = solver.ScoredPOI{POI: poi, Score: scorer.Score(poi, request.Interests)}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].POI.ID < scored[j].POI.ID
	})

	if request.MaxNodes != nil && int(*request.MaxNodes) < len(scored) {
		scored = scored[:*request.MaxNodes]
	}
	return scored
}
