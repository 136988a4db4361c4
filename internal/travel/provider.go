// Package travel provides travel-time matrices between points of interest,
// either from a real OSRM Table API backend or from an in-memory fixture
// for tests.
package travel

import (
	"context"
	"time"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// Unreachable marks a matrix cell the underlying service could not compute
// a duration for (null, negative, NaN, or infinite in the wire response).
const Unreachable = time.Duration(1<<63 - 1)

// Matrix is an n×n table of travel durations; Matrix[i][j] is the time from
// pois[i] to pois[j]. Matrix[i][i] is always zero.
type Matrix [][]time.Duration

// At returns the duration from index i to index j.
func (m Matrix) At(i, j int) time.Duration {
	return m[i][j]
}

// Provider returns an n×n travel-time matrix for an ordered list of POIs.
type Provider interface {
	GetTravelTimeMatrix(ctx context.Context, pois []domain.PointOfInterest) (Matrix, error)
}

// validateInput rejects an empty POI list, the one precondition shared by
// every Provider implementation.
func validateInput(pois []domain.PointOfInterest) error {
	if len(pois) == 0 {
		return apperrors.ErrEmptyInput
	}
	return nil
}
