package model

import (
	"fmt"
	"sort"
)

// Kind is the structural arity class of an entry.
type Kind string

const (
	// KindScalar marks a plain scalar quantity.
	KindScalar Kind = "scalar"
	// KindVector marks a vector quantity with named frame components.
	KindVector Kind = "vector"
	// KindMetadata marks a non-physical catalog record (conventions,
	// frame declarations and similar).
	KindMetadata Kind = "metadata"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindScalar, KindVector, KindMetadata:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown kind %q", s)
	}
}

// Status is the lifecycle state of an entry.
type Status string

const (
	StatusDraft      Status = "draft"
	StatusActive     Status = "active"
	StatusDeprecated Status = "deprecated"
	StatusSuperseded Status = "superseded"
)

// ParseStatus converts a string to a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusActive, StatusDeprecated, StatusSuperseded:
		return Status(s), nil
	default:
		return "", fmt.Errorf("unknown status %q", s)
	}
}

// Entry is one catalog record. The Name is the identity; everything else
// describes the quantity and its relations to other entries.
type Entry struct {
	// Name is the standard name and the primary key of the record.
	Name string
	// Kind is the arity class: scalar, vector or metadata.
	Kind Kind
	// Unit is the canonical unit string (dot-separated factors with
	// caret exponents, lexicographically ordered). Empty for
	// dimensionless quantities.
	Unit string
	// Status is the lifecycle state. Deprecated and superseded entries
	// must name a successor in SupersededBy.
	Status Status
	// Description is a one-line summary.
	Description string
	// Documentation is extended free-form prose.
	Documentation string
	// Tags classify the entry; the first tag is the primary tag and
	// decides the on-disk directory.
	Tags []string
	// Links are external references (papers, issues).
	Links []string
	// Frame names the coordinate frame of a vector entry.
	Frame string
	// Components maps frame axis to the component entry's name. Only
	// vector entries carry components.
	Components map[string]string
	// ParentVector names the vector this scalar is a component of.
	ParentVector string
	// Provenance records how a derived quantity was produced. Nil for
	// primitive quantities.
	Provenance Provenance
	// SupersededBy names the replacement entry.
	SupersededBy string
	// Deprecates names the entry this one replaced.
	Deprecates string
}

// PrimaryTag returns the first tag, or "" when the entry is untagged.
func (e *Entry) PrimaryTag() string {
	if len(e.Tags) == 0 {
		return ""
	}
	return e.Tags[0]
}

// Axes returns the component axes of a vector entry in sorted order.
func (e *Entry) Axes() []string {
	if len(e.Components) == 0 {
		return nil
	}
	axes := make([]string, 0, len(e.Components))
	for axis := range e.Components {
		axes = append(axes, axis)
	}
	sort.Strings(axes)
	return axes
}

// ComponentNames returns the component entry names of a vector entry,
// ordered by axis.
func (e *Entry) ComponentNames() []string {
	axes := e.Axes()
	if axes == nil {
		return nil
	}
	names := make([]string, len(axes))
	for i, axis := range axes {
		names[i] = e.Components[axis]
	}
	return names
}

// Clone returns a deep copy of the entry. Staged mutations operate on
// clones so an aborted unit of work never leaks partial edits.
func (e *Entry) Clone() *Entry {
	out := *e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.Links != nil {
		out.Links = append([]string(nil), e.Links...)
	}
	if e.Components != nil {
		out.Components = make(map[string]string, len(e.Components))
		for k, v := range e.Components {
			out.Components[k] = v
		}
	}
	if e.Provenance != nil {
		out.Provenance = e.Provenance.clone()
	}
	return &out
}

// Summary is the slice of an entry that relational validation needs to
// resolve a reference: identity, arity and vector shape.
type Summary struct {
	Name       string
	Kind       Kind
	Frame      string
	Components map[string]string
}

// Summarize extracts the relational summary of an entry.
func Summarize(e *Entry) Summary {
	return Summary{
		Name:       e.Name,
		Kind:       e.Kind,
		Frame:      e.Frame,
		Components: e.Components,
	}
}

// LookupFunc resolves a name to the summary of an existing entry. It is how
// validation sees the rest of the catalog without depending on its storage.
type LookupFunc func(name string) (Summary, bool)
