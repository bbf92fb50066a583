package grammar

// SegmentKind identifies a typed slot in the standard-name grammar.
type SegmentKind string

const (
	SegmentComponent     SegmentKind = "component"
	SegmentCoordinate    SegmentKind = "coordinate"
	SegmentSubject       SegmentKind = "subject"
	SegmentGeometricBase SegmentKind = "geometric_base"
	SegmentPhysicalBase  SegmentKind = "physical_base"
	SegmentObject        SegmentKind = "object"
	SegmentSource        SegmentKind = "source"
	SegmentGeometry      SegmentKind = "geometry"
	SegmentPosition      SegmentKind = "position"
	SegmentProcess       SegmentKind = "process"
)

// prefixSegments are matched left-to-right before the base, in canonical order.
var prefixSegments = []SegmentKind{
	SegmentComponent,
	SegmentCoordinate,
	SegmentSubject,
}

// suffixSegments follow the base, in canonical order. Peeling happens in
// reverse (rightmost suffix first).
var suffixSegments = []SegmentKind{
	SegmentObject,
	SegmentSource,
	SegmentGeometry,
	SegmentPosition,
	SegmentProcess,
}

// baseSegments hold the single required base quantity. geometric_base is a
// closed vocabulary; physical_base is open.
var baseSegments = []SegmentKind{
	SegmentGeometricBase,
	SegmentPhysicalBase,
}

// exclusivePairs lists segments that may not co-occur in one name.
var exclusivePairs = [][2]SegmentKind{
	{SegmentComponent, SegmentCoordinate},
	{SegmentObject, SegmentSource},
	{SegmentGeometry, SegmentPosition},
}

// canonicalOrder is the full segment order used for composition.
var canonicalOrder = []SegmentKind{
	SegmentComponent,
	SegmentCoordinate,
	SegmentSubject,
	SegmentGeometricBase,
	SegmentPhysicalBase,
	SegmentObject,
	SegmentSource,
	SegmentGeometry,
	SegmentPosition,
	SegmentProcess,
}

// Kinds returns every segment kind in canonical order.
func Kinds() []SegmentKind {
	out := make([]SegmentKind, len(canonicalOrder))
	copy(out, canonicalOrder)
	return out
}

// IsBase reports whether k is one of the base segment kinds.
func (k SegmentKind) IsBase() bool {
	return k == SegmentGeometricBase || k == SegmentPhysicalBase
}

// render applies the segment template to a token.
func render(kind SegmentKind, token string) string {
	switch kind {
	case SegmentComponent:
		return token + "_component_of"
	case SegmentObject, SegmentGeometry:
		return "of_" + token
	case SegmentSource:
		return "from_" + token
	case SegmentPosition:
		return "at_" + token
	case SegmentProcess:
		return "due_to_" + token
	default:
		// coordinate, subject and both bases carry the bare token.
		return token
	}
}
