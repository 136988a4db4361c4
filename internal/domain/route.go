package domain

import (
	"fmt"
	"time"

	"github.com/paulmach/orb"

	pkgvalidator "github.com/wildside/wildside/internal/pkg/validator"
)

// Route is an ordered sequence of POIs between a start and end coordinate
// (possibly equal), plus the total travel duration. Each POI id appears at
// most once.
type Route struct {
	Start         orb.Point
	End           orb.Point
	POIs          []PointOfInterest
	TotalDuration time.Duration
}

// Validate checks the no-duplicate-id invariant.
func (r Route) Validate() error {
	seen := make(map[uint64]struct{}, len(r.POIs))
	for _, poi := range r.POIs {
		if _, ok := seen[poi.ID]; ok {
			return fmt.Errorf("poi id %d appears more than once in route", poi.ID)
		}
		seen[poi.ID] = struct{}{}
	}
	return nil
}

// SolveRequest is the visitor-facing request: start/optional-end location,
// time budget, themed interests, a determinism seed, and an optional node
// cap.
type SolveRequest struct {
	Start           orb.Point
	End             *orb.Point
	DurationMinutes uint16
	Interests       InterestProfile
	Seed            uint64
	MaxNodes        *uint16
}

// solveRequestFields mirrors SolveRequest's scalar fields under
// go-playground/validator struct tags, since orb.Point and *uint16 don't
// tag cleanly in place: Lon/Lat are unpacked and End is only present when
// set, matching the teacher's DTO-validation pattern
// (internal/usecase/dto/request.go's Lat/Lon tags).
type solveRequestFields struct {
	DurationMinutes uint16   `validate:"required"`
	StartLon        float64  `validate:"finite,min=-180,max=180"`
	StartLat        float64  `validate:"finite,min=-90,max=90"`
	EndLon          *float64 `validate:"omitempty,finite,min=-180,max=180"`
	EndLat          *float64 `validate:"omitempty,finite,min=-90,max=90"`
	MaxNodes        *uint16  `validate:"omitempty,gt=0"`
}

// Validate rejects zero duration, non-finite coordinates, an unknown theme,
// and max_nodes == 0.
func (r SolveRequest) Validate() error {
	fields := solveRequestFields{
		DurationMinutes: r.DurationMinutes,
		StartLon:        r.Start.Lon(),
		StartLat:        r.Start.Lat(),
		MaxNodes:        r.MaxNodes,
	}
	if r.End != nil {
		lon, lat := r.End.Lon(), r.End.Lat()
		fields.EndLon, fields.EndLat = &lon, &lat
	}

	if err := pkgvalidator.Validate(&fields); err != nil {
		return fmt.Errorf("invalid solve request: %w", err)
	}
	if err := r.Interests.Validate(); err != nil {
		return fmt.Errorf("invalid interests: %w", err)
	}
	return nil
}

// Diagnostics reports solver telemetry alongside a SolveResponse.
type Diagnostics struct {
	SolveTime          time.Duration
	CandidatesEvaluated int
}

// SolveResponse is the solved tour, its total score, and diagnostics.
type SolveResponse struct {
	Route       Route
	Score       float32
	Diagnostics Diagnostics
}
