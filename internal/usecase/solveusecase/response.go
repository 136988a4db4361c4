package solveusecase

import (
	"io"

	jsoncodec "github.com/goccy/go-json"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// poiJSON is the wire shape of a routed POI: {id, location, tags}.
type poiJSON struct {
	ID       uint64            `json:"id"`
	Location pointJSON         `json:"location"`
	Tags     map[string]string `json:"tags"`
}

// routeJSON is the wire shape of a solved route.
type routeJSON struct {
	Start               pointJSON `json:"start"`
	End                 pointJSON `json:"end"`
	POIs                []poiJSON `json:"pois"`
	TotalDurationSeconds float64  `json:"total_duration_seconds"`
}

// diagnosticsJSON is the wire shape of solver telemetry.
type diagnosticsJSON struct {
	SolveTimeSeconds    float64 `json:"solve_time_seconds"`
	CandidatesEvaluated int     `json:"candidates_evaluated"`
}

// responseJSON is the wire shape of a solve response:
// {route, score, diagnostics}.
type responseJSON struct {
	Route       routeJSON       `json:"route"`
	Score       float32         `json:"score"`
	Diagnostics diagnosticsJSON `json:"diagnostics"`
}

// WriteResponse pretty-prints response as JSON to w, followed by a trailing
// newline, per spec.md §6.
func WriteResponse(w io.Writer, response domain.SolveResponse) error {
	wire := toResponseJSON(response)
	encoded, err := jsoncodec.MarshalIndent(wire, "", "  ")
	if err != nil {
		return apperrors.ErrSolverInternal.WithCause(err)
	}
	if _, err := w.Write(encoded); err != nil {
		return apperrors.ErrSolverInternal.WithCause(err)
	}
	_, err = w.Write([]byte("\n"))
	return err
}

func toResponseJSON(response domain.SolveResponse) responseJSON {
	pois := make([]poiJSON, len(response.Route.POIs))
	for i, poi := range response.Route.POIs {
		pois[i] = poiJSON{ID: poi.ID, Location: fromOrb(poi.Location), Tags: poi.Tags}
	}
	return responseJSON{
		Route: routeJSON{
			Start:                fromOrb(response.Route.Start),
			End:                  fromOrb(response.Route.End),
			POIs:                 pois,
			TotalDurationSeconds: response.Route.TotalDuration.Seconds(),
		},
		Score: response.Score,
		Diagnostics: diagnosticsJSON{
			SolveTimeSeconds:    response.Diagnostics.SolveTime.Seconds(),
			CandidatesEvaluated: response.Diagnostics.CandidatesEvaluated,
		},
	}
}
