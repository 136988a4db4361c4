package domain

// ElementKind identifies the OSM element a POI id was encoded from. The top
// two bits of a 64-bit id carry the kind; the remaining 62 bits carry the
// raw OSM id.
type ElementKind uint8

const (
	// ElementKindNode tags an id encoded from an OSM node (kind bits 00).
	ElementKindNode ElementKind = iota
	// ElementKindWay tags an id encoded from an OSM way (kind bits 01).
	ElementKindWay
	// ElementKindRelation tags an id encoded from an OSM relation (kind bits 10).
	ElementKindRelation
)

const (
	wayIDPrefix      uint64 = 1 << 62
	relationIDPrefix uint64 = 1 << 63
	typeIDMask       uint64 = (1 << 62) - 1
)

// EncodeElementID packs a raw non-negative OSM id (must fit in 62 bits) and
// an element kind into a single 64-bit id. It reports false when the raw id
// does not fit, so callers can warn and skip rather than silently wrapping.
func EncodeElementID(kind ElementKind, rawID int64) (uint64, bool) {
	if rawID < 0 {
		return 0, false
	}
	unsigned := uint64(rawID)
	if unsigned > typeIDMask {
		return 0, false
	}
	switch kind {
	case ElementKindNode:
		return unsigned, true
	case ElementKindWay:
		return wayIDPrefix | unsigned, true
	case ElementKindRelation:
		return relationIDPrefix | unsigned, true
	default:
		return 0, false
	}
}

// DecodeElementID splits an encoded 64-bit id back into its kind and payload.
func DecodeElementID(id uint64) (ElementKind, uint64) {
	switch {
	case id&relationIDPrefix == relationIDPrefix:
		return ElementKindRelation, id & typeIDMask
	case id&wayIDPrefix == wayIDPrefix:
		return ElementKindWay, id & typeIDMask
	default:
		return ElementKindNode, id & typeIDMask
	}
}
