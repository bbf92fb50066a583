package model

import (
	"fmt"
	"sort"

	"github.com/plasmakit/stdnames/grammar"
	"github.com/plasmakit/stdnames/operator"
)

// StructuralErrorKind tags the category of a structural violation.
type StructuralErrorKind string

const (
	// InvalidName means the entry name violates the token grammar.
	InvalidName StructuralErrorKind = "invalid_name"
	// InvalidUnit means the unit string is malformed or not canonical.
	InvalidUnit StructuralErrorKind = "invalid_unit"
	// InvalidField means a field carries a value its kind or mode forbids.
	InvalidField StructuralErrorKind = "invalid_field"
	// MissingComponents means a vector entry declares fewer than two
	// frame components.
	MissingComponents StructuralErrorKind = "missing_components"
	// ComponentNameMismatch means a component reference does not follow
	// the <axis>_component_of_<vector> naming shape.
	ComponentNameMismatch StructuralErrorKind = "component_name_mismatch"
	// DanglingReference means a referenced entry does not exist.
	DanglingReference StructuralErrorKind = "dangling_reference"
	// WrongReferenceKind means a reference resolves to an entry of the
	// wrong arity class.
	WrongReferenceKind StructuralErrorKind = "wrong_reference_kind"
	// ProvenanceMismatch means the entry name and its provenance record
	// disagree about how the quantity was derived.
	ProvenanceMismatch StructuralErrorKind = "provenance_mismatch"
	// UnknownReduction means the provenance names an unregistered
	// reduction.
	UnknownReduction StructuralErrorKind = "unknown_reduction"
	// InvalidReductionDomain means the declared domain does not match the
	// reduction's registered domain.
	InvalidReductionDomain StructuralErrorKind = "invalid_reduction_domain"
	// IncompleteMagnitudeDependencies means a magnitude's dependency set
	// is not exactly the base vector's component set.
	IncompleteMagnitudeDependencies StructuralErrorKind = "incomplete_magnitude_dependencies"
	// MissingSupersededBy means a deprecated or superseded entry names no
	// successor.
	MissingSupersededBy StructuralErrorKind = "missing_superseded_by"
	// MalformedTagOrder means the tag list does not start with exactly
	// one primary tag.
	MalformedTagOrder StructuralErrorKind = "malformed_tag_order"
	// UnknownTag means a tag is in neither the primary nor the secondary
	// tag set.
	UnknownTag StructuralErrorKind = "unknown_tag"
	// KindMismatch means the entry's declared kind disagrees with the
	// rank its provenance produces.
	KindMismatch StructuralErrorKind = "kind_mismatch"
)

// StructuralError describes one structural violation on an entry.
type StructuralError struct {
	Kind StructuralErrorKind
	// Name is the entry being validated.
	Name string
	// Field locates the offending field, e.g. "components.radial" or
	// "provenance.base".
	Field string
	// Ref is the referenced name, when the violation is relational.
	Ref string
	Msg string
}

func (e *StructuralError) Error() string {
	s := fmt.Sprintf("entry %q: %s", e.Name, e.Kind)
	if e.Field != "" {
		s += " at " + e.Field
	}
	if e.Ref != "" {
		s += fmt.Sprintf(" (ref %q)", e.Ref)
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	return s
}

// Validator checks entries against the grammar, the operator and reduction
// registries and the tag vocabulary. Tag sets are optional; when nil, tags
// are not checked.
type Validator struct {
	Parser        *grammar.Parser
	Operators     *operator.Registry
	Reductions    *operator.Reductions
	PrimaryTags   map[string]struct{}
	SecondaryTags map[string]struct{}
}

// NewValidator builds a validator over the given grammar and registries.
func NewValidator(parser *grammar.Parser, ops *operator.Registry, reds *operator.Reductions) *Validator {
	return &Validator{Parser: parser, Operators: ops, Reductions: reds}
}

// ValidateEntry checks a single entry in the context of the catalog exposed
// through lookup. It returns every violation found; an empty slice means
// the entry is structurally sound.
func (v *Validator) ValidateEntry(e *Entry, lookup LookupFunc) []error {
	var errs []error
	add := func(kind StructuralErrorKind, field, ref, msg string) {
		errs = append(errs, &StructuralError{Kind: kind, Name: e.Name, Field: field, Ref: ref, Msg: msg})
	}

	if !grammar.ValidToken(e.Name) {
		add(InvalidName, "name", "", "name is not a valid lowercase token sequence")
	}
	if _, err := ParseKind(string(e.Kind)); err != nil {
		add(InvalidField, "kind", "", err.Error())
	}
	if e.Status != "" {
		if _, err := ParseStatus(string(e.Status)); err != nil {
			add(InvalidField, "status", "", err.Error())
		}
	}
	if canon, err := CanonicalUnit(e.Unit); err != nil {
		add(InvalidUnit, "unit", "", err.Error())
	} else if canon != e.Unit {
		add(InvalidUnit, "unit", "", fmt.Sprintf("unit %q is not canonical, want %q", e.Unit, canon))
	}

	v.checkLifecycle(e, lookup, add)
	v.checkGrammar(e, &errs)
	v.checkShape(e, lookup, add)
	v.checkProvenance(e, lookup, add, &errs)
	v.checkTags(e, add)

	return errs
}

func (v *Validator) checkLifecycle(e *Entry, lookup LookupFunc, add func(StructuralErrorKind, string, string, string)) {
	retired := e.Status == StatusDeprecated || e.Status == StatusSuperseded
	if retired && e.SupersededBy == "" {
		add(MissingSupersededBy, "superseded_by", "", string(e.Status)+" entry must name a successor")
	}
	if e.SupersededBy != "" {
		if _, ok := lookup(e.SupersededBy); !ok {
			add(DanglingReference, "superseded_by", e.SupersededBy, "successor does not exist")
		}
	}
	if e.Deprecates != "" {
		if _, ok := lookup(e.Deprecates); !ok {
			add(DanglingReference, "deprecates", e.Deprecates, "deprecated entry does not exist")
		}
	}
}

// checkGrammar parses the residual base of the entry name, after peeling
// operator and reduction prefixes, against the segment grammar.
func (v *Validator) checkGrammar(e *Entry, errs *[]error) {
	if v.Parser == nil || e.Kind == KindMetadata || !grammar.ValidToken(e.Name) {
		return
	}
	base := e.Name
	if v.Reductions != nil {
		for {
			_, rest, ok := v.Reductions.MatchPrefix(base)
			if !ok {
				break
			}
			base = rest
		}
	}
	if v.Operators != nil {
		_, base = v.Operators.ParseChain(base)
	}
	if _, err := v.Parser.Parse(base); err != nil {
		*errs = append(*errs, err)
	}
}

func (v *Validator) checkShape(e *Entry, lookup LookupFunc, add func(StructuralErrorKind, string, string, string)) {
	if e.Kind == KindVector {
		if e.Frame == "" {
			add(InvalidField, "frame", "", "vector entry must declare a frame")
		}
		if e.ParentVector != "" {
			add(InvalidField, "parent_vector", e.ParentVector, "vector entry cannot itself be a component")
		}
		if len(e.Components) < 2 {
			add(MissingComponents, "components", "", fmt.Sprintf("vector entry declares %d component(s), need at least 2", len(e.Components)))
		}
		for _, axis := range e.Axes() {
			field := "components." + axis
			name := e.Components[axis]
			if !grammar.ValidToken(axis) {
				add(InvalidField, field, "", "axis is not a valid token")
				continue
			}
			if want := axis + "_component_of_" + e.Name; name != want {
				add(ComponentNameMismatch, field, name, fmt.Sprintf("want %q", want))
				continue
			}
			ref, ok := lookup(name)
			if !ok {
				add(DanglingReference, field, name, "component entry does not exist")
				continue
			}
			if ref.Kind != KindScalar {
				add(WrongReferenceKind, field, name, fmt.Sprintf("component must be scalar, is %s", ref.Kind))
			}
		}
		return
	}

	if len(e.Components) > 0 {
		add(InvalidField, "components", "", string(e.Kind)+" entry cannot declare components")
	}
	if e.Frame != "" {
		add(InvalidField, "frame", "", string(e.Kind)+" entry cannot declare a frame")
	}
	if e.ParentVector != "" {
		ref, ok := lookup(e.ParentVector)
		switch {
		case !ok:
			add(DanglingReference, "parent_vector", e.ParentVector, "parent vector does not exist")
		case ref.Kind != KindVector:
			add(WrongReferenceKind, "parent_vector", e.ParentVector, "parent must be a vector")
		default:
			listed := false
			for _, name := range ref.Components {
				if name == e.Name {
					listed = true
					break
				}
			}
			if !listed {
				add(ComponentNameMismatch, "parent_vector", e.ParentVector, "parent vector does not list this entry as a component")
			}
		}
	}
}

func (v *Validator) checkProvenance(e *Entry, lookup LookupFunc, add func(StructuralErrorKind, string, string, string), errs *[]error) {
	switch p := e.Provenance.(type) {
	case nil:
	case *OperatorProvenance:
		v.checkOperatorProvenance(e, p, lookup, add, errs)
	case *ReductionProvenance:
		v.checkReductionProvenance(e, p, lookup, add)
	case *ExpressionProvenance:
		if p.Expression == "" {
			add(InvalidField, "provenance.expression", "", "expression is empty")
		}
		if len(p.Inputs) == 0 {
			add(InvalidField, "provenance.inputs", "", "expression provenance needs at least one input")
		}
		for i, input := range p.Inputs {
			if _, ok := lookup(input); !ok {
				add(DanglingReference, fmt.Sprintf("provenance.inputs[%d]", i), input, "input does not exist")
			}
		}
	}
}

func (v *Validator) checkOperatorProvenance(e *Entry, p *OperatorProvenance, lookup LookupFunc, add func(StructuralErrorKind, string, string, string), errs *[]error) {
	if len(p.Operators) == 0 {
		add(InvalidField, "provenance.operators", "", "operator provenance needs at least one operator")
		return
	}
	if p.Base == "" {
		add(InvalidField, "provenance.base", "", "operator provenance needs a base")
		return
	}
	base, ok := lookup(p.Base)
	if !ok {
		add(DanglingReference, "provenance.base", p.Base, "base entry does not exist")
		return
	}
	baseRank, ok := rankOf(base.Kind)
	if !ok {
		add(WrongReferenceKind, "provenance.base", p.Base, "base must be scalar or vector")
		return
	}
	if v.Operators == nil {
		return
	}

	result, err := v.Operators.CheckChain(p.Operators, baseRank)
	if err != nil {
		*errs = append(*errs, err)
	} else if want, ok := kindOf(result); ok && e.Kind != want {
		add(KindMismatch, "kind", "", fmt.Sprintf("chain produces %s, entry declares %s", result, e.Kind))
	}

	// Frame arity constraints apply to the declared base vector.
	if base.Kind == KindVector {
		for _, id := range p.Operators {
			op, ok := v.Operators.Get(id)
			if ok && op.MinFrameAxes > 0 && len(base.Components) < op.MinFrameAxes {
				*errs = append(*errs, &operator.RankError{
					Kind:     operator.InsufficientFrameRank,
					Operator: id,
					Chain:    p.Operators,
				})
			}
		}
	}

	if p.OperatorID != "" {
		chain, ok := v.Operators.Expand(p.OperatorID)
		if !ok {
			*errs = append(*errs, &operator.RankError{Kind: operator.UnknownOperator, Operator: p.OperatorID})
		} else if !equalStrings(chain, p.Operators) {
			add(ProvenanceMismatch, "provenance.operator_id", p.OperatorID, "expansion does not match declared chain")
		}
	}

	nameChain, nameBase := v.Operators.ParseChain(e.Name)
	if !equalStrings(nameChain, p.Operators) || nameBase != p.Base {
		add(ProvenanceMismatch, "provenance", p.Base, "name does not encode the declared operator chain and base")
	}
}

func (v *Validator) checkReductionProvenance(e *Entry, p *ReductionProvenance, lookup LookupFunc, add func(StructuralErrorKind, string, string, string)) {
	if v.Reductions == nil {
		return
	}
	red, ok := v.Reductions.Get(p.Reduction)
	if !ok {
		add(UnknownReduction, "provenance.reduction", p.Reduction, "reduction is not registered")
		return
	}
	wantDomain := red.Domain
	if wantDomain == "none" {
		wantDomain = ""
	}
	gotDomain := p.Domain
	if gotDomain == "none" {
		gotDomain = ""
	}
	if gotDomain != wantDomain {
		add(InvalidReductionDomain, "provenance.domain", "", fmt.Sprintf("reduction %q aggregates over %q, provenance declares %q", red.ID, red.Domain, p.Domain))
	}

	if p.Base == "" {
		add(InvalidField, "provenance.base", "", "reduction provenance needs a base")
		return
	}
	base, ok := lookup(p.Base)
	if !ok {
		add(DanglingReference, "provenance.base", p.Base, "base entry does not exist")
		return
	}
	if red.RequiresVector && base.Kind != KindVector {
		add(WrongReferenceKind, "provenance.base", p.Base, fmt.Sprintf("reduction %q requires a vector base, %q is %s", red.ID, p.Base, base.Kind))
	}

	if red.ID == "magnitude" {
		if e.Kind != KindScalar {
			add(KindMismatch, "kind", "", "magnitude produces a scalar")
		}
		if base.Kind == KindVector {
			components := make([]string, 0, len(base.Components))
			for _, name := range base.Components {
				components = append(components, name)
			}
			if !sameMultiset(p.Dependencies, components) {
				sort.Strings(components)
				add(IncompleteMagnitudeDependencies, "provenance.dependencies", p.Base,
					fmt.Sprintf("dependencies must be exactly the base component set %v", components))
			}
		}
		policy := v.Reductions.MagnitudeNaming()
		if got, ok := policy.Match(e.Name); !ok || got != p.Base {
			add(ProvenanceMismatch, "provenance", p.Base, "name does not follow the magnitude naming policy for the declared base")
		}
		return
	}

	// Non-magnitude reductions preserve the base kind.
	if base.Kind == KindScalar || base.Kind == KindVector {
		if e.Kind != base.Kind {
			add(KindMismatch, "kind", "", fmt.Sprintf("reduction preserves kind, base is %s", base.Kind))
		}
	}
	nameRed, rest, ok := v.Reductions.MatchPrefix(e.Name)
	if !ok || nameRed.ID != red.ID || rest != p.Base {
		add(ProvenanceMismatch, "provenance", p.Base, "name does not encode the declared reduction and base")
	}
}

func (v *Validator) checkTags(e *Entry, add func(StructuralErrorKind, string, string, string)) {
	if v.PrimaryTags == nil {
		return
	}
	if len(e.Tags) == 0 {
		add(MalformedTagOrder, "tags", "", "entry needs a primary tag")
		return
	}
	if _, ok := v.PrimaryTags[e.Tags[0]]; !ok {
		add(MalformedTagOrder, "tags", e.Tags[0], "first tag must be a primary tag")
	}
	for _, tag := range e.Tags[1:] {
		if _, primary := v.PrimaryTags[tag]; primary {
			add(MalformedTagOrder, "tags", tag, "only the first tag may be primary")
			continue
		}
		if _, secondary := v.SecondaryTags[tag]; !secondary {
			add(UnknownTag, "tags", tag, "tag is not registered")
		}
	}
}

func rankOf(k Kind) (operator.Rank, bool) {
	switch k {
	case KindScalar:
		return operator.RankScalar, true
	case KindVector:
		return operator.RankVector, true
	default:
		return "", false
	}
}

func kindOf(r operator.Rank) (Kind, bool) {
	switch r {
	case operator.RankScalar:
		return KindScalar, true
	case operator.RankVector:
		return KindVector, true
	default:
		return "", false
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func sameMultiset(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[string]int, len(a))
	for _, s := range a {
		counts[s]++
	}
	for _, s := range b {
		counts[s]--
		if counts[s] < 0 {
			return false
		}
	}
	return true
}
