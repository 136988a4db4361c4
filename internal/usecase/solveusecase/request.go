package solveusecase

import (
	"os"

	jsoncodec "github.com/goccy/go-json"
	"github.com/paulmach/orb"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// pointJSON is the wire shape of a coordinate: {"x": lon, "y": lat}, per
// spec.md §6's solve request/response JSON contract.
type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p pointJSON) toOrb() orb.Point {
	return orb.Point{p.X, p.Y}
}

func fromOrb(p orb.Point) pointJSON {
	return pointJSON{X: p.Lon(), Y: p.Lat()}
}

// requestJSON is the wire shape of a solve request:
// {start, end?, duration_minutes, interests, seed, max_nodes?}.
type requestJSON struct {
	Start           pointJSON          `json:"start"`
	End             *pointJSON         `json:"end,omitempty"`
	DurationMinutes uint16             `json:"duration_minutes"`
	Interests       map[string]float64 `json:"interests"`
	Seed            uint64             `json:"seed"`
	MaxNodes        *uint16            `json:"max_nodes,omitempty"`
}

// LoadRequest reads and validates the solve request JSON at path.
func LoadRequest(path string) (domain.SolveRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.SolveRequest{}, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
		}
		return domain.SolveRequest{}, apperrors.ErrPermissionDenied.WithCause(err).WithDetails(map[string]any{"path": path})
	}

	var wire requestJSON
	if err := jsoncodec.Unmarshal(data, &wire); err != nil {
		return domain.SolveRequest{}, apperrors.ErrInvalidRequest.WithCause(err).WithDetails(map[string]any{"path": path})
	}

	interests, err := toInterestProfile(wire.Interests)
	if err != nil {
		return domain.SolveRequest{}, err
	}

	request := domain.SolveRequest{
		Start:           wire.Start.toOrb(),
		DurationMinutes: wire.DurationMinutes,
		Interests:       interests,
		Seed:            wire.Seed,
		MaxNodes:        wire.MaxNodes,
	}
	if wire.End != nil {
		end := wire.End.toOrb()
		request.End = &end
	}

	if err := request.Validate(); err != nil {
		return domain.SolveRequest{}, apperrors.ErrInvalidRequest.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	return request, nil
}

func toInterestProfile(raw map[string]float64) (domain.InterestProfile, error) {
	profile := make(domain.InterestProfile, len(raw))
	for name, weight := range raw {
		theme, err := domain.ParseTheme(name)
		if err != nil {
			return nil, apperrors.ErrUnknownTheme.WithCause(err).WithDetails(map[string]any{"theme": name})
		}
		profile[theme] = weight
	}
	return profile, nil
}
