package spatial

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/paulmach/orb"

	"github.com/wildside/wildside/internal/domain"
)

// wireEntry is the CBOR-facing representation of a PointOfInterest: a flat,
// versioned-independent shape so the payload format is stable regardless of
// how domain.PointOfInterest's Go struct evolves internally.
type wireEntry struct {
	ID  uint64            `cbor:"id"`
	Lon float64           `cbor:"lon"`
	Lat float64           `cbor:"lat"`
	Tags map[string]string `cbor:"tags"`
}

func encodeEntries(pois []domain.PointOfInterest) ([]byte, error) {
	wire := make([]wireEntry, len(pois))
	for i, poi := range pois {
		wire[i] = wireEntry{
			ID:   poi.ID,
			Lon:  poi.Location.Lon(),
			Lat:  poi.Location.Lat(),
			Tags: poi.Tags,
		}
	}
	return cbor.Marshal(wire)
}

func decodeEntries(payload []byte) ([]domain.PointOfInterest, error) {
	var wire []wireEntry
	if err := cbor.Unmarshal(payload, &wire); err != nil {
		return nil, err
	}
	pois := make([]domain.PointOfInterest, len(wire))
	for i, w := range wire {
		pois[i] = domain.NewPointOfInterest(w.ID, orb.Point{w.Lon, w.Lat}, w.Tags)
	}
	return pois, nil
}
