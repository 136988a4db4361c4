package wikidata

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildside/wildside/internal/domain"
)

func berlinPOI() domain.PointOfInterest {
	return domain.NewPointOfInterest(11, domain.PointOfInterest{}.Location, domain.Tags{"wikidata": "Q64"})
}

func TestNormaliseIDAcceptsBareID(t *testing.T) {
	id, ok := NormaliseID("Q64")
	require.True(t, ok)
	assert.Equal(t, "Q64", id)
}

func TestNormaliseIDAcceptsLowercasePrefix(t *testing.T) {
	id, ok := NormaliseID("q64")
	require.True(t, ok)
	assert.Equal(t, "Q64", id)
}

func TestNormaliseIDAcceptsURL(t *testing.T) {
	id, ok := NormaliseID("https://www.wikidata.org/wiki/Q64")
	require.True(t, ok)
	assert.Equal(t, "Q64", id)

	id, ok = NormaliseID("http://www.wikidata.org/entity/Q64")
	require.True(t, ok)
	assert.Equal(t, "Q64", id)
}

func TestNormaliseIDAcceptsCURIE(t *testing.T) {
	id, ok := NormaliseID("wd:Q64")
	require.True(t, ok)
	assert.Equal(t, "Q64", id)
}

func TestNormaliseIDRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "   ", "Q", "X64", "Q12a", "wd:"} {
		_, ok := NormaliseID(input)
		assert.False(t, ok, "input %q should not normalise", input)
	}
}

func TestFromPOIsBuildsSortedDedupedLinks(t *testing.T) {
	poiA := domain.NewPointOfInterest(2, domain.PointOfInterest{}.Location, domain.Tags{"wikidata": "Q64"})
	poiB := domain.NewPointOfInterest(1, domain.PointOfInterest{}.Location, domain.Tags{"wikidata": "Q64"})
	poiC := domain.NewPointOfInterest(1, domain.PointOfInterest{}.Location, domain.Tags{"wikidata": "Q64"})
	poiNoTag := domain.NewPointOfInterest(3, domain.PointOfInterest{}.Location, domain.Tags{})

	links := FromPOIs([]domain.PointOfInterest{poiA, poiB, poiC, poiNoTag})
	require.True(t, links.Contains("Q64"))
	ids, ok := links.LinkedPOIIDs("Q64")
	require.True(t, ok)
	assert.Equal(t, []uint64{1, 2}, ids)
	assert.False(t, links.Contains("Q1"))
}

func TestExtractLinkedEntityClaimsReturnsEmptyWhenNoLinks(t *testing.T) {
	claims, err := ExtractLinkedEntityClaims(strings.NewReader(`{"id":"Q64"}`), PoiLinks{})
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestExtractLinkedEntityClaimsRecordsHeritageDesignation(t *testing.T) {
	links := FromPOIs([]domain.PointOfInterest{berlinPOI()})
	dump := `[
{"id":"Q64","claims":{"P1435":[{"mainsnak":{"snaktype":"value","datavalue":{"type":"wikibase-entityid","value":{"id":"Q9259"}}}}]}},
]`

	claims, err := ExtractLinkedEntityClaims(strings.NewReader(dump), links)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, EntityClaims{
		EntityID:             "Q64",
		LinkedPOIIDs:         []uint64{11},
		HeritageDesignations: []string{"Q9259"},
	}, claims[0])
}

func TestExtractLinkedEntityClaimsSkipsUnlinkedEntities(t *testing.T) {
	links := FromPOIs([]domain.PointOfInterest{berlinPOI()})
	dump := `{"id":"Q1","claims":{"P1435":[{"mainsnak":{"snaktype":"value","datavalue":{"type":"wikibase-entityid","value":{"id":"Q9259"}}}}]}}`

	claims, err := ExtractLinkedEntityClaims(strings.NewReader(dump), links)
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestExtractLinkedEntityClaimsIgnoresNonValueSnaks(t *testing.T) {
	links := FromPOIs([]domain.PointOfInterest{berlinPOI()})
	dump := `{"id":"Q64","claims":{"P1435":[{"mainsnak":{"snaktype":"somevalue"}}]}}`

	claims, err := ExtractLinkedEntityClaims(strings.NewReader(dump), links)
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Empty(t, claims[0].HeritageDesignations)
}

func TestExtractLinkedEntityClaimsReportsParseError(t *testing.T) {
	links := FromPOIs([]domain.PointOfInterest{berlinPOI()})
	dump := `{"id":"Q64","claims": [`

	_, err := ExtractLinkedEntityClaims(strings.NewReader(dump), links)
	require.Error(t, err)
}

func TestPreprocessJSONLineSkipsStructuralLines(t *testing.T) {
	for _, line := range []string{"", "  ", "[", "]"} {
		_, ok := preprocessJSONLine(line)
		assert.False(t, ok, "line %q should be skipped", line)
	}
}

func TestPreprocessJSONLineTrimsLeadingAndTrailingCommas(t *testing.T) {
	result, ok := preprocessJSONLine(`,{"id":"Q1"},`)
	require.True(t, ok)
	assert.Equal(t, `{"id":"Q1"}`, result)
}
