package osm

import (
	"context"
	"io"
	"os"
	"runtime"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// IngestPBF reads the OSM PBF file at path in two passes: the first
// accumulates tagged nodes, ways and relations; the second re-scans node
// elements only, to resolve the coordinates of any way node references that
// were not yet known during the first pass (OSM PBF node blocks are not
// guaranteed to precede every way that references them). It returns the
// combined, id-ascending-sorted POI list and ingestion summary.
func IngestPBF(ctx context.Context, path string) (Report, error) {
	acc := newAccumulator()

	if err := scanPBF(ctx, path, func(obj osm.Object) {
		applyObject(acc, obj)
	}); err != nil {
		return Report{}, err
	}

	if acc.hasPendingNodes() {
		pending := acc.pendingWayNodeCount()
		if err := scanPBF(ctx, path, func(obj osm.Object) {
			if !acc.hasPendingNodes() {
				return
			}
			if node, ok := obj.(*osm.Node); ok {
				acc.resolvePendingNode(int64(node.ID), node.Lon, node.Lat)
			}
		}); err != nil {
			return Report{}, err
		}
		_ = pending
	}

	return acc.intoReport(), nil
}

// applyObject dispatches a single decoded OSM object into the accumulator.
func applyObject(acc *accumulator, obj osm.Object) {
	switch o := obj.(type) {
	case *osm.Node:
		acc.processNode(int64(o.ID), o.Lon, o.Lat, o.Tags.Map())
	case *osm.Way:
		refs := make([]int64, len(o.Nodes))
		for i, ref := range o.Nodes {
			refs[i] = int64(ref.ID)
		}
		acc.processWay(int64(o.ID), refs, o.Tags.Map())
	case *osm.Relation:
		acc.processRelation(int64(o.ID))
	}
}

// scanPBF opens path and streams every decoded object in it to visit, using
// up to GOMAXPROCS blob decoder goroutines. The scanner library itself
// distributes blob decompression and protobuf decoding across procs
// goroutines; visit is always invoked from the calling goroutine, so it
// requires no synchronisation of its own.
func scanPBF(ctx context.Context, path string, visit func(osm.Object)) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return apperrors.ErrMissingFile.WithCause(err).WithDetails(map[string]any{"path": path})
		}
		return apperrors.ErrOsmOpen.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	defer file.Close()

	procs := runtime.GOMAXPROCS(0)
	if procs < 1 {
		procs = 1
	}

	scanner := osmpbf.New(ctx, file, procs)
	defer scanner.Close()

	for scanner.Scan() {
		visit(scanner.Object())
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return apperrors.ErrOsmDecode.WithCause(err).WithDetails(map[string]any{"path": path})
	}
	return nil
}
