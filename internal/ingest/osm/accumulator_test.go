package osm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildside/wildside/internal/domain"
)

func TestProcessNodeEmitsPOIForRelevantTags(t *testing.T) {
	acc := newAccumulator()
	acc.processNode(1, 10.0, 20.0, map[string]string{"tourism": "museum"})

	report := acc.intoReport()
	require.Len(t, report.POIs, 1)
	assert.Equal(t, uint64(1), report.POIs[0].ID)
	assert.Equal(t, "museum", report.POIs[0].Tags["tourism"])
	assert.EqualValues(t, 1, report.Summary.Nodes)
}

func TestProcessNodeRetainsPendingCoordinatesForIrrelevantTags(t *testing.T) {
	acc := newAccumulator()
	acc.pendingWayNodes[1] = struct{}{}
	acc.processNode(1, 10.0, 20.0, map[string]string{"highway": "residential"})

	report := acc.intoReport()
	assert.Empty(t, report.POIs)
	location, ok := acc.nodes[1]
	require.True(t, ok)
	assert.Equal(t, 10.0, location.Lon())
	assert.Equal(t, 20.0, location.Lat())
	assert.False(t, acc.hasPendingNodes())
}

func TestProcessNodeClearsPendingForInvalidCoordinates(t *testing.T) {
	acc := newAccumulator()
	acc.pendingWayNodes[1] = struct{}{}
	acc.processNode(1, 200.0, 20.0, map[string]string{"highway": "residential"})

	assert.False(t, acc.hasPendingNodes())
	_, known := acc.nodes[1]
	assert.False(t, known)
}

func TestProcessNodeSkipsNonRelevantWithoutPending(t *testing.T) {
	acc := newAccumulator()
	acc.processNode(1, 10.0, 20.0, map[string]string{"highway": "residential"})

	report := acc.intoReport()
	assert.Empty(t, report.POIs)
	assert.EqualValues(t, 1, report.Summary.Nodes)
}

func TestProcessWayBuffersCandidateAwaitingNodes(t *testing.T) {
	acc := newAccumulator()
	acc.processWay(5, []int64{1, 2}, map[string]string{"historic": "monument"})

	assert.True(t, acc.hasPendingNodes())
	assert.Equal(t, 2, acc.pendingWayNodeCount())
	assert.Empty(t, acc.intoReport().POIs)
}

func TestProcessWaySkipsIrrelevantTags(t *testing.T) {
	acc := newAccumulator()
	acc.processWay(5, []int64{1, 2}, map[string]string{"highway": "residential"})

	assert.False(t, acc.hasPendingNodes())
	assert.Empty(t, acc.wayCandidates)
}

func TestWayAnchorsToFirstResolvedNodeReference(t *testing.T) {
	acc := newAccumulator()
	acc.processWay(5, []int64{1, 2, 3}, map[string]string{"historic": "monument"})
	// Node 1 never resolves; node 2 resolves first.
	acc.processNode(2, 10.0, 20.0, map[string]string{})
	acc.processNode(3, 11.0, 21.0, map[string]string{})

	report := acc.intoReport()
	require.Len(t, report.POIs, 1)
	wayID, ok := domain.EncodeElementID(domain.ElementKindWay, 5)
	require.True(t, ok)
	assert.Equal(t, wayID, report.POIs[0].ID)
	assert.Equal(t, 10.0, report.POIs[0].Location.Lon())
	assert.Equal(t, 20.0, report.POIs[0].Location.Lat())
}

func TestWayCandidateDroppedWhenNoReferenceResolves(t *testing.T) {
	acc := newAccumulator()
	acc.processWay(5, []int64{1, 2}, map[string]string{"historic": "monument"})

	report := acc.intoReport()
	assert.Empty(t, report.POIs)
}

func TestResolvePendingNodeIgnoresUnrequestedNode(t *testing.T) {
	acc := newAccumulator()
	acc.resolvePendingNode(42, 1.0, 1.0)
	_, known := acc.nodes[42]
	assert.False(t, known)
}

func TestIntoReportSortsByIDAscending(t *testing.T) {
	acc := newAccumulator()
	acc.processNode(9, 1.0, 1.0, map[string]string{"tourism": "hotel"})
	acc.processNode(1, 2.0, 2.0, map[string]string{"tourism": "hotel"})
	acc.processNode(5, 3.0, 3.0, map[string]string{"tourism": "hotel"})

	report := acc.intoReport()
	require.Len(t, report.POIs, 3)
	assert.Equal(t, []uint64{1, 5, 9}, []uint64{report.POIs[0].ID, report.POIs[1].ID, report.POIs[2].ID})
}

func TestProcessRelationCountsOnly(t *testing.T) {
	acc := newAccumulator()
	acc.processRelation(7)
	assert.EqualValues(t, 1, acc.summary.Relations)
	assert.Empty(t, acc.intoReport().POIs)
}

func TestCombineMergesPartitions(t *testing.T) {
	left := newAccumulator()
	left.processNode(1, 10.0, 20.0, map[string]string{"tourism": "museum"})

	right := newAccumulator()
	right.processNode(2, 11.0, 21.0, map[string]string{"tourism": "hotel"})

	left.combine(right)
	report := left.intoReport()
	require.Len(t, report.POIs, 2)
	assert.EqualValues(t, 2, report.Summary.Nodes)
}

func TestCombineResolvesPendingFromOtherPartition(t *testing.T) {
	left := newAccumulator()
	left.processWay(5, []int64{1}, map[string]string{"historic": "monument"})
	assert.True(t, left.hasPendingNodes())

	// A partition only records coordinates for relevant (or its own pending)
	// nodes, so node 1 is tagged here; it yields a node POI of its own.
	right := newAccumulator()
	right.processNode(1, 10.0, 20.0, map[string]string{"tourism": "museum"})

	left.combine(right)
	assert.False(t, left.hasPendingNodes())

	report := left.intoReport()
	require.Len(t, report.POIs, 2)
}

func TestSummaryIncludeBoundsUnion(t *testing.T) {
	acc := newAccumulator()
	acc.processNode(1, 1.0, 1.0, map[string]string{"tourism": "hotel"})
	acc.processNode(2, -5.0, 8.0, map[string]string{"tourism": "hotel"})

	require.NotNil(t, acc.summary.Bounds)
	assert.Equal(t, -5.0, acc.summary.Bounds.Min.Lon())
	assert.Equal(t, 8.0, acc.summary.Bounds.Max.Lat())
}

func TestSummaryIgnoresInvalidCoordinatesForBounds(t *testing.T) {
	acc := newAccumulator()
	acc.processNode(1, 500.0, 1.0, map[string]string{"tourism": "hotel"})

	assert.Nil(t, acc.summary.Bounds)
}

func TestEncodeElementIDRejectsOutOfRange(t *testing.T) {
	_, ok := domain.EncodeElementID(domain.ElementKindNode, -1)
	assert.False(t, ok)

	_, ok = domain.EncodeElementID(domain.ElementKindNode, 1<<62)
	assert.False(t, ok)
}
