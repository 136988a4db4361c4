// Package wikidata extracts claims from a Wikidata JSON dump for the
// entities linked from previously ingested OpenStreetMap points of
// interest. The dump is streamed line by line; only entities referenced by
// a "wikidata" tag survive, and only the heritage designation claim
// (P1435) is captured.
package wikidata

import (
	"bufio"
	"io"
	"sort"
	"strings"

	jsoncodec "github.com/goccy/go-json"

	"github.com/wildside/wildside/internal/domain"
	apperrors "github.com/wildside/wildside/internal/pkg/errors"
)

// HeritageProperty is the Wikidata property id for heritage designation
// claims (e.g. a UNESCO World Heritage Site, Q9259).
const HeritageProperty = "P1435"

// PoiLinks maps a normalised Wikidata entity id to the POI ids that
// reference it via a "wikidata" tag.
type PoiLinks struct {
	links map[string][]uint64
}

// FromPOIs builds the mapping from a set of POIs, reading each one's
// "wikidata" tag. POI ids under each entity are sorted and deduplicated.
func FromPOIs(pois []domain.PointOfInterest) PoiLinks {
	links := make(map[string][]uint64)
	for _, poi := range pois {
		raw, ok := poi.Tags["wikidata"]
		if !ok {
			continue
		}
		entityID, ok := NormaliseID(raw)
		if !ok {
			continue
		}
		links[entityID] = append(links[entityID], poi.ID)
	}
	for entityID, ids := range links {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		links[entityID] = dedupSortedUint64(ids)
	}
	return PoiLinks{links: links}
}

func dedupSortedUint64(sorted []uint64) []uint64 {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether entityID has at least one linked POI.
func (l PoiLinks) Contains(entityID string) bool {
	_, ok := l.links[entityID]
	return ok
}

// LinkedPOIIDs returns the POI ids linked to entityID, if any.
func (l PoiLinks) LinkedPOIIDs(entityID string) ([]uint64, bool) {
	ids, ok := l.links[entityID]
	return ids, ok
}

// IsEmpty reports whether the mapping has no entries.
func (l PoiLinks) IsEmpty() bool {
	return len(l.links) == 0
}

// EntityClaims is the set of claims extracted for one Wikidata entity
// referenced by one or more POIs.
type EntityClaims struct {
	// EntityID is the normalised Wikidata entity id, e.g. "Q64".
	EntityID string
	// LinkedPOIIDs are the POI ids that reference this entity.
	LinkedPOIIDs []uint64
	// HeritageDesignations are P1435 claim targets, e.g. "Q9259".
	HeritageDesignations []string
}

// ExtractLinkedEntityClaims streams reader line by line, extracting claims
// for every entity present in links. Blank lines and the dump's array
// bracket lines are skipped, and one leading or trailing comma is trimmed;
// a remaining line that does not decode as JSON is a fatal parse error.
func ExtractLinkedEntityClaims(reader io.Reader, links PoiLinks) ([]EntityClaims, error) {
	if links.IsEmpty() {
		return nil, nil
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var extracted []EntityClaims
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		preprocessed, ok := preprocessJSONLine(scanner.Text())
		if !ok {
			continue
		}
		claims, err := processEntityClaims(preprocessed, links, lineNumber)
		if err != nil {
			return nil, err
		}
		if claims != nil {
			extracted = append(extracted, *claims)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, apperrors.ErrWikidataReadLine.WithCause(err).WithDetails(map[string]any{"line": lineNumber + 1})
	}
	return extracted, nil
}

func preprocessJSONLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if isStructuralLine(trimmed) {
		return "", false
	}
	trimmed = strings.TrimSpace(strings.TrimPrefix(trimmed, ","))
	trimmed = strings.TrimSuffix(trimmed, ",")
	trimmed = strings.TrimSpace(trimmed)
	if trimmed == "" || isStructuralLine(trimmed) {
		return "", false
	}
	return trimmed, true
}

func isStructuralLine(line string) bool {
	return line == "" || line == "[" || line == "]"
}

func processEntityClaims(jsonSlice string, links PoiLinks, lineNumber int) (*EntityClaims, error) {
	var entity rawEntity
	if err := jsoncodec.Unmarshal([]byte(jsonSlice), &entity); err != nil {
		return nil, apperrors.ErrWikidataParseLine.WithCause(err).WithDetails(map[string]any{"line": lineNumber})
	}
	normalisedID, ok := NormaliseID(entity.ID)
	if !ok {
		return nil, nil
	}
	if !links.Contains(normalisedID) {
		return nil, nil
	}

	designations := entity.heritageDesignations()
	sort.Strings(designations)
	designations = dedupSortedStrings(designations)

	linkedPOIIDs, _ := links.LinkedPOIIDs(normalisedID)

	return &EntityClaims{
		EntityID:             normalisedID,
		LinkedPOIIDs:         append([]uint64(nil), linkedPOIIDs...),
		HeritageDesignations: designations,
	}, nil
}

func dedupSortedStrings(sorted []string) []string {
	if len(sorted) == 0 {
		return sorted
	}
	out := sorted[:1]
	for _, v := range sorted[1:] {
		if v != out[len(out)-1] {
			out = append(out, v)
		}
	}
	return out
}

// NormaliseID extracts a canonical "Q<digits>" entity id from a raw
// wikidata tag value. Accepted forms include a bare id ("Q64"), a
// wikidata.org URL ("https://www.wikidata.org/wiki/Q64" or
// "...entity/Q64"), and a prefixed CURIE ("wd:Q64"). Returns false if no
// well-formed id could be extracted.
func NormaliseID(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}
	lastSegment := trimmed
	if idx := strings.LastIndexAny(trimmed, "/#"); idx >= 0 {
		lastSegment = trimmed[idx+1:]
	}
	finalSegment := lastSegment
	if idx := strings.LastIndex(lastSegment, ":"); idx >= 0 {
		finalSegment = lastSegment[idx+1:]
	}
	finalSegment = strings.TrimSpace(finalSegment)
	if finalSegment == "" {
		return "", false
	}
	prefix := finalSegment[0]
	if prefix != 'Q' && prefix != 'q' {
		return "", false
	}
	digits := finalSegment[1:]
	if digits == "" {
		return "", false
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return "", false
		}
	}
	return "Q" + digits, true
}

type rawEntity struct {
	ID     string                `json:"id"`
	Claims map[string][]rawClaim `json:"claims"`
}

func (e rawEntity) heritageDesignations() []string {
	var out []string
	for _, claim := range e.Claims[HeritageProperty] {
		if target, ok := claim.MainSnak.entityTarget(); ok {
			out = append(out, target)
		}
	}
	return out
}

type rawClaim struct {
	MainSnak rawSnak `json:"mainsnak"`
}

type rawSnak struct {
	SnakType  string        `json:"snaktype"`
	DataValue *rawDataValue `json:"datavalue"`
}

func (s rawSnak) entityTarget() (string, bool) {
	if s.SnakType != "value" || s.DataValue == nil {
		return "", false
	}
	if s.DataValue.Type != "wikibase-entityid" || s.DataValue.Value == nil {
		return "", false
	}
	return NormaliseID(s.DataValue.Value.ID)
}

type rawDataValue struct {
	Type  string        `json:"type"`
	Value *rawEntityRef `json:"value"`
}

type rawEntityRef struct {
	ID string `json:"id"`
}
