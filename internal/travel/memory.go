package travel

import (
	"context"
	"time"

	"github.com/wildside/wildside/internal/domain"
)

// MemoryProvider is an in-memory Provider backed by a fixed id→id duration
// lookup, a test double that needs no network.
type MemoryProvider struct {
	durations map[uint64]map[uint64]time.Duration
}

// NewMemoryProvider builds a MemoryProvider from an explicit id→id→duration
// table. Missing pairs default to Unreachable; a node's distance to itself
// defaults to zero even if unset.
func NewMemoryProvider(durations map[uint64]map[uint64]time.Duration) *MemoryProvider {
	return &MemoryProvider{durations: durations}
}

// GetTravelTimeMatrix implements Provider.
func (m *MemoryProvider) GetTravelTimeMatrix(ctx context.Context, pois []domain.PointOfInterest) (Matrix, error) {
	if err := validateInput(pois); err != nil {
		return nil, err
	}
	matrix := make(Matrix, len(pois))
	for i, from := range pois {
		matrix[i] = make([]time.Duration, len(pois))
		for j, to := range pois {
			if i == j {
				continue
			}
			matrix[i][j] = m.lookup(from.ID, to.ID)
		}
	}
	return matrix, nil
}

func (m *MemoryProvider) lookup(from, to uint64) time.Duration {
	row, ok := m.durations[from]
	if !ok {
		return Unreachable
	}
	d, ok := row[to]
	if !ok {
		return Unreachable
	}
	return d
}
