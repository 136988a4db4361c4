package travel

import (
	"context"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildside/wildside/internal/domain"
)

func TestMemoryProviderDefaultsUnknownPairsToUnreachable(t *testing.T) {
	provider := NewMemoryProvider(map[uint64]map[uint64]time.Duration{
		1: {2: 60 * time.Second},
	})
	pois := []domain.PointOfInterest{
		domain.WithEmptyTags(1, orb.Point{0, 0}),
		domain.WithEmptyTags(2, orb.Point{1, 1}),
		domain.WithEmptyTags(3, orb.Point{2, 2}),
	}

	matrix, err := provider.GetTravelTimeMatrix(context.Background(), pois)
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), matrix.At(0, 0))
	assert.Equal(t, 60*time.Second, matrix.At(0, 1))
	assert.Equal(t, Unreachable, matrix.At(0, 2))
	assert.Equal(t, Unreachable, matrix.At(1, 0))
}
