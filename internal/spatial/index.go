// Package spatial implements the bulk-loaded spatial index over POIs and
// its persisted WSPI binary artefact format.
package spatial

import (
	"fmt"
	"os"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// Index is a bulk-loaded R*-tree over POIs supporting bounding-box queries.
// Once built it is immutable and safe to share by reference across
// goroutines.
type Index struct {
	tree *rtreego.Rtree
	byID map[uint64]domain.PointOfInterest
}

// entry adapts a PointOfInterest to rtreego.Spatial, representing it as a
// degenerate (zero-area) bounding box at its coordinate.
type entry struct {
	poi domain.PointOfInterest
}

func (e entry) Bounds() *rtreego.Rect {
	point := rtreego.Point{e.poi.Location.Lon(), e.poi.Location.Lat()}
	rect, err := rtreego.NewRect(point, []float64{minRectSize, minRectSize})
	if err != nil {
		// Only possible if minRectSize were non-positive, which it is not.
		panic(fmt.Sprintf("spatial: invalid degenerate rect: %v", err))
	}
	return rect
}

// minRectSize is a vanishingly small side length so rtreego accepts a
// point as a zero-area rectangle; it has no observable effect on bbox
// query results at the coordinate precision POIs are stored with.
const minRectSize = 1e-12

// Build bulk-loads an Index from the supplied POIs.
func Build(pois []domain.PointOfInterest) *Index {
	entries := make([]rtreego.Spatial, len(pois))
	byID := make(map[uint64]domain.PointOfInterest, len(pois))
	for i, poi := range pois {
		entries[i] = entry{poi: poi}
		byID[poi.ID] = poi
	}
	tree := rtreego.NewTree(2, 25, 50, entries...)
	return &Index{tree: tree, byID: byID}
}

// Size returns the number of indexed POIs.
func (idx *Index) Size() int {
	return len(idx.byID)
}

// GetPOIsInBBox returns POIs whose point intersects bbox, sorted by id
// ascending for deterministic downstream behaviour. Boundary points are
// included. Antimeridian crossing is not modelled; callers must split and
// union bounding boxes themselves.
func (idx *Index) GetPOIsInBBox(bbox orb.Bound) []domain.PointOfInterest {
	queryRect, err := rtreego.NewRect(
		rtreego.Point{bbox.Min.Lon(), bbox.Min.Lat()},
		[]float64{bbox.Max.Lon() - bbox.Min.Lon(), bbox.Max.Lat() - bbox.Min.Lat()},
	)
	if err != nil {
		// A degenerate or inverted bbox yields no results rather than a panic.
		return nil
	}
	results := idx.tree.SearchIntersect(queryRect)
	pois := make([]domain.PointOfInterest, 0, len(results))
	for _, r := range results {
		pois = append(pois, r.(entry).poi)
	}
	sort.Slice(pois, func(i, j int) bool { return pois[i].ID < pois[j].ID })
	return pois
}

// Get returns the POI with the given id, if indexed.
func (idx *Index) Get(id uint64) (domain.PointOfInterest, bool) {
	poi, ok := idx.byID[id]
	return poi, ok
}

// File identifier and version for the persisted WSPI spatial index format.
var (
	magic          = [4]byte{'W', 'S', 'P', 'I'}
	currentVersion uint16 = 2
)

// WriteTo persists entries as a WSPI artefact: 4-byte magic, little-endian
// u16 version, then a CBOR-encoded entry payload. The file is fsynced
// before return.
func WriteTo(path string, pois []domain.PointOfInterest) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	defer file.Close()

	if _, err := file.Write(magic[:]); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path, "step": "write magic"})
	}
	versionBytes := []byte{byte(currentVersion), byte(currentVersion >> 8)}
	if _, err := file.Write(versionBytes); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path, "step": "write version"})
	}

	payload, err := encodeEntries(pois)
	if err != nil {
		return apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	if _, err := file.Write(payload); err != nil {
		return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path, "step": "write payload"})
	}
	return file.Sync()
}

// LoadEntries reads a WSPI artefact's POI entries, validating the header.
func LoadEntries(path string) ([]domain.PointOfInterest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	if len(data) < 6 {
		return nil, apperrors.ErrInvalidMagic.WithDetails(map[string]any{"path": path})
	}
	var gotMagic [4]byte
	copy(gotMagic[:], data[:4])
	if gotMagic != magic {
		return nil, apperrors.ErrInvalidMagic.WithDetails(map[string]any{
			"path": path, "expected": string(magic[:]), "found": string(gotMagic[:]),
		})
	}
	version := uint16(data[4]) | uint16(data[5])<<8
	if version != currentVersion {
		return nil, apperrors.ErrUnsupportedVersion.WithDetails(map[string]any{
			"path": path, "found": version, "supported": currentVersion,
		})
	}
	entries, err := decodeEntries(data[6:])
	if err != nil {
		return nil, apperrors.ErrCorruptPayload.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	return entries, nil
}

// Open loads entries from a WSPI artefact and bulk-loads them into an Index.
func Open(path string) (*Index, error) {
	entries, err := LoadEntries(path)
	if err != nil {
		return nil, err
	}
	return Build(entries), nil
}

