package grammar

import "strings"

// SegmentValue is one matched (segment, token) pair.
type SegmentValue struct {
	Kind  SegmentKind
	Token string
}

// ParsedName is the typed decomposition of a standard name. Exactly one base
// segment is always present.
type ParsedName struct {
	values map[SegmentKind]string
}

// Get returns the token matched for a segment kind, if any.
func (p *ParsedName) Get(kind SegmentKind) (string, bool) {
	t, ok := p.values[kind]
	return t, ok
}

// Base returns the base segment kind and token.
func (p *ParsedName) Base() (SegmentKind, string) {
	if t, ok := p.values[SegmentGeometricBase]; ok {
		return SegmentGeometricBase, t
	}
	return SegmentPhysicalBase, p.values[SegmentPhysicalBase]
}

// Segments returns the matched pairs in canonical order.
func (p *ParsedName) Segments() []SegmentValue {
	out := make([]SegmentValue, 0, len(p.values))
	for _, kind := range canonicalOrder {
		if t, ok := p.values[kind]; ok {
			out = append(out, SegmentValue{Kind: kind, Token: t})
		}
	}
	return out
}

// String recomposes the original identifier. For any name accepted by
// Parser.Parse, String returns that name exactly.
func (p *ParsedName) String() string {
	parts := make([]string, 0, len(p.values))
	for _, kind := range canonicalOrder {
		if t, ok := p.values[kind]; ok {
			parts = append(parts, render(kind, t))
		}
	}
	return strings.Join(parts, "_")
}

// Parser decomposes candidate identifiers against a fixed Vocabulary.
// A Parser is immutable and safe for concurrent use.
type Parser struct {
	vocab *Vocabulary
}

// NewParser creates a Parser over the given vocabulary.
func NewParser(vocab *Vocabulary) *Parser {
	return &Parser{vocab: vocab}
}

// Vocabulary returns the vocabulary the parser was built with.
func (p *Parser) Vocabulary() *Vocabulary { return p.vocab }

// Parse decomposes name into typed segments. It has no side effects and
// returns a *ParseError describing the first fatal grammar violation.
func (p *Parser) Parse(name string) (*ParsedName, error) {
	if !ValidToken(name) {
		return nil, &ParseError{Kind: MalformedToken, Name: name, Msg: "identifier is not a canonical snake_case token"}
	}

	values := make(map[SegmentKind]string, 4)
	remaining := name

	// Peel suffix segments rightmost-first.
	for i := len(suffixSegments) - 1; i >= 0; i-- {
		kind := suffixSegments[i]
		for _, token := range p.vocab.Tokens(kind) {
			suffix := "_" + render(kind, token)
			if strings.HasSuffix(remaining, suffix) {
				remaining = strings.TrimSuffix(remaining, suffix)
				values[kind] = token
				break
			}
		}
	}

	// Peel prefix segments in canonical order.
	for _, kind := range prefixSegments {
		for _, token := range p.vocab.Tokens(kind) {
			prefix := render(kind, token) + "_"
			if strings.HasPrefix(remaining, prefix) {
				remaining = strings.TrimPrefix(remaining, prefix)
				values[kind] = token
				break
			}
		}
	}

	if remaining == "" {
		return nil, &ParseError{Kind: MissingBase, Name: name, Msg: "no base segment remains after qualifier matching"}
	}

	if err := p.checkResidualMarkers(name, remaining, values); err != nil {
		return nil, err
	}

	// Whatever remains is the base: closed geometric vocabulary first,
	// open physical vocabulary otherwise.
	if p.vocab.Contains(SegmentGeometricBase, remaining) {
		values[SegmentGeometricBase] = remaining
	} else {
		if !ValidToken(remaining) {
			return nil, &ParseError{Kind: MalformedToken, Name: name, Token: remaining, Msg: "base segment is not a canonical token"}
		}
		values[SegmentPhysicalBase] = remaining
	}

	for _, pair := range exclusivePairs {
		if _, l := values[pair[0]]; l {
			if _, r := values[pair[1]]; r {
				return nil, &ParseError{
					Kind: ConflictingSegments,
					Name: name,
					Msg:  "segments '" + string(pair[0]) + "' and '" + string(pair[1]) + "' cannot both be set",
				}
			}
		}
	}

	return &ParsedName{values: values}, nil
}

// checkResidualMarkers inspects the unmatched remainder for segment markers
// that survived peeling. A marker in the remainder means either a token
// outside its vocabulary or a segment out of canonical position.
func (p *Parser) checkResidualMarkers(name, base string, values map[SegmentKind]string) error {
	// A component marker embedded in the remainder: the rendering
	// '<token>_component_of_' was not peeled from the front. A known
	// component token here means the segment sits in the wrong position;
	// an unknown token is a vocabulary miss.
	if i := strings.Index(base, "_component_of_"); i >= 0 {
		if p.vocab.Contains(SegmentComponent, base[:i]) {
			return &ParseError{
				Kind:  OutOfOrderSegments,
				Name:  name,
				Token: base[:i],
				Msg:   "component segment is out of canonical position",
			}
		}
		return &ParseError{
			Kind:  UnknownToken,
			Name:  name,
			Token: base[:i],
			Msg:   "component marker present but token is not in the component vocabulary",
		}
	}

	// Known component/coordinate tokens appearing after the base
	// (e.g. '<base>_radial_component') are an ordering violation.
	for _, kind := range []SegmentKind{SegmentComponent, SegmentCoordinate} {
		for _, token := range p.vocab.Tokens(kind) {
			if strings.Contains(base, "_"+token+"_component") {
				return &ParseError{
					Kind:  OutOfOrderSegments,
					Name:  name,
					Token: token,
					Msg:   "component segment must precede the base",
				}
			}
		}
	}

	// Suffix markers stranded mid-name were not rightmost, so the segment
	// is out of canonical order; markers with unknown tokens are reported
	// as unknown.
	for _, probe := range []struct {
		marker string
		kind   SegmentKind
	}{
		{"_due_to_", SegmentProcess},
		{"_at_", SegmentPosition},
		{"_from_", SegmentSource},
	} {
		i := strings.Index(base, probe.marker)
		if i < 0 {
			continue
		}
		tail := base[i+len(probe.marker):]
		for _, token := range p.vocab.Tokens(probe.kind) {
			if tail == token || strings.HasPrefix(tail, token+"_") {
				return &ParseError{
					Kind:  OutOfOrderSegments,
					Name:  name,
					Token: token,
					Msg:   "segment '" + string(probe.kind) + "' is out of canonical order",
				}
			}
		}
		if probe.kind == SegmentProcess {
			// due_to_ is unambiguous, so an unmatched tail is an
			// unknown process token rather than part of the base.
			return &ParseError{
				Kind:  UnknownToken,
				Name:  name,
				Token: tail,
				Msg:   "process marker present but token is not in the process vocabulary",
			}
		}
	}

	// Component after subject: subject matched, component did not, and the
	// remainder still starts with a component token. This matches the bare
	// token, not the full '<token>_component_of_' rendering, so a physical
	// base must not begin with a word from the component vocabulary.
	if _, hasSubject := values[SegmentSubject]; hasSubject {
		if _, hasComponent := values[SegmentComponent]; !hasComponent {
			for _, token := range p.vocab.Tokens(SegmentComponent) {
				if strings.HasPrefix(base, token+"_") {
					return &ParseError{
						Kind:  OutOfOrderSegments,
						Name:  name,
						Token: token,
						Msg:   "component must precede subject",
					}
				}
			}
		}
	}

	return nil
}

// Compose renders segment values into a standard name without validating
// vocabulary membership. Values must include exactly one base segment.
func Compose(values map[SegmentKind]string) (string, error) {
	if _, g := values[SegmentGeometricBase]; !g {
		if _, ph := values[SegmentPhysicalBase]; !ph {
			return "", &ParseError{Kind: MissingBase, Msg: "one base segment must be set"}
		}
	}
	if _, g := values[SegmentGeometricBase]; g {
		if _, ph := values[SegmentPhysicalBase]; ph {
			return "", &ParseError{Kind: ConflictingSegments, Msg: "cannot set both geometric_base and physical_base"}
		}
	}
	parts := make([]string, 0, len(values))
	for _, kind := range canonicalOrder {
		if t, ok := values[kind]; ok && t != "" {
			if !ValidToken(t) {
				return "", &ParseError{Kind: MalformedToken, Token: t, Msg: "segment token is not a canonical token"}
			}
			parts = append(parts, render(kind, t))
		}
	}
	return strings.Join(parts, "_"), nil
}
