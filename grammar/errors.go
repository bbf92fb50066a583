package grammar

import "fmt"

// ParseErrorKind tags the category of a parse failure.
type ParseErrorKind string

const (
	// MalformedToken means the identifier violates the canonical token shape.
	MalformedToken ParseErrorKind = "malformed_token"
	// UnknownToken means a segment marker was present but its token is not
	// in the vocabulary for that segment.
	UnknownToken ParseErrorKind = "unknown_token"
	// ConflictingSegments means two mutually exclusive segments co-occur.
	ConflictingSegments ParseErrorKind = "conflicting_segments"
	// OutOfOrderSegments means a recognized segment appears outside its
	// canonical position.
	OutOfOrderSegments ParseErrorKind = "out_of_order_segments"
	// MissingBase means no base quantity remains after qualifier matching.
	MissingBase ParseErrorKind = "missing_base"
)

// ParseError describes why an identifier was rejected by the grammar.
type ParseError struct {
	Kind  ParseErrorKind
	Name  string
	Token string
	Msg   string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("parse %q: %s (%s: %q)", e.Name, e.Msg, e.Kind, e.Token)
	}
	return fmt.Sprintf("parse %q: %s (%s)", e.Name, e.Msg, e.Kind)
}
