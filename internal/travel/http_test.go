package travel

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildside/wildside/internal/domain"
)

func twoPOIs() []domain.PointOfInterest {
	return []domain.PointOfInterest{
		domain.WithEmptyTags(1, orb.Point{0, 0}),
		domain.WithEmptyTags(2, orb.Point{1, 1}),
	}
}

func TestHTTPProviderDecodesDurationsAndUnreachableCells(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":"Ok","durations":[[0,null],[-1,0]]}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, nil)
	matrix, err := provider.GetTravelTimeMatrix(context.Background(), twoPOIs())
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), matrix.At(0, 0))
	assert.Equal(t, Unreachable, matrix.At(0, 1))
	assert.Equal(t, Unreachable, matrix.At(1, 0))
}

func TestHTTPProviderServiceErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":"NoRoute","message":"no route found"}`))
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, nil)
	_, err := provider.GetTravelTimeMatrix(context.Background(), twoPOIs())
	require.Error(t, err)
}

func TestHTTPProviderEmptyInput(t *testing.T) {
	provider := NewHTTPProvider("http://example.invalid", nil)
	_, err := provider.GetTravelTimeMatrix(context.Background(), nil)
	require.Error(t, err)
}

func TestHTTPProviderHTTPStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	provider := NewHTTPProvider(server.URL, nil)
	_, err := provider.GetTravelTimeMatrix(context.Background(), twoPOIs())
	require.Error(t, err)
}
