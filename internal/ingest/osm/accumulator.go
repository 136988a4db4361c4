// Package osm implements the two-phase parallel OSM PBF ingester: a single
// streaming pass accumulates tagged nodes and buffers way candidates, and a
// second pass over nodes only resolves any way node references still
// pending coordinates.
package osm

import (
	"sort"

	"github.com/paulmach/orb"

	"github.com/wildside/wildside/internal/domain"
)

// relevantKeys marks the OSM tag keys that promote an element to a POI.
// Extend this set when new tag families must be supported.
var relevantKeys = map[string]struct{}{
	"historic": {},
	"tourism":  {},
}

func hasRelevantKey(tags map[string]string) bool {
	for key := range tags {
		if _, ok := relevantKeys[key]; ok {
			return true
		}
	}
	return false
}

// Summary reports raw OSM element counts and the bounding box of all valid
// node coordinates seen during ingestion.
type Summary struct {
	Nodes     uint64
	Ways      uint64
	Relations uint64
	Bounds    *orb.Bound
}

func (s *Summary) includeBounds(b orb.Bound) {
	if s.Bounds == nil {
		merged := b
		s.Bounds = &merged
		return
	}
	merged := s.Bounds.Union(b)
	s.Bounds = &merged
}

func (s *Summary) recordNode(lon, lat float64) {
	s.Nodes++
	if domain.ValidCoordinate(lon, lat) {
		s.includeBounds(orb.Bound{Min: orb.Point{lon, lat}, Max: orb.Point{lon, lat}})
	}
}

func (s *Summary) combine(other Summary) {
	s.Nodes += other.Nodes
	s.Ways += other.Ways
	s.Relations += other.Relations
	if other.Bounds != nil {
		s.includeBounds(*other.Bounds)
	}
}

// Report is the outcome of ingesting a PBF file: raw element counts and the
// derived, id-ascending-sorted POI list.
type Report struct {
	Summary Summary
	POIs    []domain.PointOfInterest
}

type wayCandidate struct {
	id       uint64
	nodeRefs []uint64
	tags     domain.Tags
}

// accumulator is the pure, testable core of ingestion: it has no dependency
// on the PBF decoder and operates on plain node/way/relation callbacks so it
// can be driven directly from unit tests or from a real osmpbf.Scanner.
type accumulator struct {
	summary         Summary
	nodes           map[uint64]orb.Point
	pendingWayNodes map[uint64]struct{}
	nodePOIs        []domain.PointOfInterest
	wayCandidates   []wayCandidate
}

func newAccumulator() *accumulator {
	return &accumulator{
		nodes:           make(map[uint64]orb.Point),
		pendingWayNodes: make(map[uint64]struct{}),
	}
}

// processNode ingests a single node (or dense node). rawID is the raw OSM
// id, pre-encoding.
func (a *accumulator) processNode(rawID int64, lon, lat float64, tags map[string]string) {
	a.summary.recordNode(lon, lat)
	encodedID, ok := domain.EncodeElementID(domain.ElementKindNode, rawID)
	if !ok {
		return
	}
	isRelevant := hasRelevantKey(tags)
	_, wasPending := a.pendingWayNodes[encodedID]
	delete(a.pendingWayNodes, encodedID)

	if !domain.ValidCoordinate(lon, lat) {
		return
	}
	if !isRelevant && !wasPending {
		return
	}
	location := orb.Point{lon, lat}
	a.nodes[encodedID] = location
	if isRelevant {
		a.nodePOIs = append(a.nodePOIs, domain.NewPointOfInterest(encodedID, location, tags))
	}
}

// processWay ingests a way. nodeRefs are raw OSM node ids, in way order.
func (a *accumulator) processWay(rawID int64, nodeRefs []int64, tags map[string]string) {
	a.summary.Ways++
	if !hasRelevantKey(tags) {
		return
	}
	encodedID, ok := domain.EncodeElementID(domain.ElementKindWay, rawID)
	if !ok {
		return
	}
	encodedRefs := make([]uint64, 0, len(nodeRefs))
	for _, ref := range nodeRefs {
		encodedRef, ok := domain.EncodeElementID(domain.ElementKindNode, ref)
		if !ok {
			continue
		}
		encodedRefs = append(encodedRefs, encodedRef)
		if _, known := a.nodes[encodedRef]; !known {
			a.pendingWayNodes[encodedRef] = struct{}{}
		}
	}
	a.wayCandidates = append(a.wayCandidates, wayCandidate{id: encodedID, nodeRefs: encodedRefs, tags: tags})
}

// processRelation only counts the relation; it is encoded solely to
// validate the id range and emit the same skip behaviour as nodes/ways.
func (a *accumulator) processRelation(rawID int64) {
	a.summary.Relations++
	_, _ = domain.EncodeElementID(domain.ElementKindRelation, rawID)
}

func (a *accumulator) hasPendingNodes() bool {
	return len(a.pendingWayNodes) > 0
}

func (a *accumulator) pendingWayNodeCount() int {
	return len(a.pendingWayNodes)
}

// resolvePendingNode is called during the second pass to hydrate a node
// coordinate still required by a buffered way candidate.
func (a *accumulator) resolvePendingNode(rawID int64, lon, lat float64) {
	encodedID, ok := domain.EncodeElementID(domain.ElementKindNode, rawID)
	if !ok {
		return
	}
	if _, pending := a.pendingWayNodes[encodedID]; !pending {
		return
	}
	delete(a.pendingWayNodes, encodedID)
	if domain.ValidCoordinate(lon, lat) {
		a.nodes[encodedID] = orb.Point{lon, lat}
	}
}

// combine merges other into a, used to reduce per-partition accumulators.
func (a *accumulator) combine(other *accumulator) {
	a.summary.combine(other.summary)
	for id, coord := range other.nodes {
		if _, ok := a.nodes[id]; !ok {
			a.nodes[id] = coord
		}
	}
	a.nodePOIs = append(a.nodePOIs, other.nodePOIs...)
	a.wayCandidates = append(a.wayCandidates, other.wayCandidates...)
	for id := range other.pendingWayNodes {
		if _, known := a.nodes[id]; !known {
			a.pendingWayNodes[id] = struct{}{}
		}
	}
	for id := range a.pendingWayNodes {
		if _, known := a.nodes[id]; known {
			delete(a.pendingWayNodes, id)
		}
	}
}

// intoReport anchors way candidates to their first resolved node reference,
// dropping candidates whose references never resolved, and returns the
// combined, id-ascending POI list.
func (a *accumulator) intoReport() Report {
	pois := append([]domain.PointOfInterest(nil), a.nodePOIs...)
	for _, candidate := range a.wayCandidates {
		for _, ref := range candidate.nodeRefs {
			if location, ok := a.nodes[ref]; ok {
				pois = append(pois, domain.NewPointOfInterest(candidate.id, location, candidate.tags))
				break
			}
		}
	}
	sort.Slice(pois, func(i, j int) bool { return pois[i].ID < pois[j].ID })
	return Report{Summary: a.summary, POIs: pois}
}
