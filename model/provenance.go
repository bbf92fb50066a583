package model

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ProvenanceMode tags the variant of a provenance record.
type ProvenanceMode string

const (
	ProvenanceOperator   ProvenanceMode = "operator"
	ProvenanceReduction  ProvenanceMode = "reduction"
	ProvenanceExpression ProvenanceMode = "expression"
)

// Provenance records how a derived quantity was produced. It is a closed
// union: the only implementations are OperatorProvenance,
// ReductionProvenance and ExpressionProvenance.
type Provenance interface {
	Mode() ProvenanceMode
	// References returns every catalog name the provenance points at.
	References() []string

	clone() Provenance
}

// OperatorProvenance describes a quantity obtained by applying a chain of
// differential operators to a base quantity.
type OperatorProvenance struct {
	// Operators is the primitive chain, outermost-first.
	Operators []string
	// Base names the entry the innermost operator applies to.
	Base string
	// OperatorID optionally names the composite the chain was expanded
	// from, e.g. "second_time_derivative".
	OperatorID string
}

func (p *OperatorProvenance) Mode() ProvenanceMode { return ProvenanceOperator }

func (p *OperatorProvenance) References() []string {
	if p.Base == "" {
		return nil
	}
	return []string{p.Base}
}

func (p *OperatorProvenance) clone() Provenance {
	out := *p
	out.Operators = append([]string(nil), p.Operators...)
	return &out
}

// ReductionProvenance describes a quantity obtained by a standardized
// aggregation (time average, rms, integral, magnitude) of a base quantity.
type ReductionProvenance struct {
	// Reduction is the registered reduction id.
	Reduction string
	// Domain is the aggregation context (time, volume, flux_surface) or
	// empty for context-free reductions.
	Domain string
	// Base names the reduced entry.
	Base string
	// Dependencies lists the entries the reduced value is computed from.
	// For magnitude this must be exactly the base vector's component set.
	Dependencies []string
}

func (p *ReductionProvenance) Mode() ProvenanceMode { return ProvenanceReduction }

func (p *ReductionProvenance) References() []string {
	refs := make([]string, 0, 1+len(p.Dependencies))
	if p.Base != "" {
		refs = append(refs, p.Base)
	}
	refs = append(refs, p.Dependencies...)
	return refs
}

func (p *ReductionProvenance) clone() Provenance {
	out := *p
	out.Dependencies = append([]string(nil), p.Dependencies...)
	return &out
}

// ExpressionProvenance describes a quantity defined by a free-form formula
// over named inputs. The expression text is opaque to validation; only the
// inputs are resolved.
type ExpressionProvenance struct {
	Expression string
	Inputs     []string
}

func (p *ExpressionProvenance) Mode() ProvenanceMode { return ProvenanceExpression }

func (p *ExpressionProvenance) References() []string {
	return append([]string(nil), p.Inputs...)
}

func (p *ExpressionProvenance) clone() Provenance {
	out := *p
	out.Inputs = append([]string(nil), p.Inputs...)
	return &out
}

// provenanceDoc is the flat YAML shape of any provenance variant, keyed by
// mode.
type provenanceDoc struct {
	Mode         ProvenanceMode `yaml:"mode"`
	Operators    []string       `yaml:"operators,omitempty"`
	Base         string         `yaml:"base,omitempty"`
	OperatorID   string         `yaml:"operator_id,omitempty"`
	Reduction    string         `yaml:"reduction,omitempty"`
	Domain       string         `yaml:"domain,omitempty"`
	Dependencies []string       `yaml:"dependencies,omitempty"`
	Expression   string         `yaml:"expression,omitempty"`
	Inputs       []string       `yaml:"inputs,omitempty"`
}

func (d *provenanceDoc) toUnion() (Provenance, error) {
	switch d.Mode {
	case ProvenanceOperator:
		return &OperatorProvenance{
			Operators:  d.Operators,
			Base:       d.Base,
			OperatorID: d.OperatorID,
		}, nil
	case ProvenanceReduction:
		return &ReductionProvenance{
			Reduction:    d.Reduction,
			Domain:       d.Domain,
			Base:         d.Base,
			Dependencies: d.Dependencies,
		}, nil
	case ProvenanceExpression:
		return &ExpressionProvenance{
			Expression: d.Expression,
			Inputs:     d.Inputs,
		}, nil
	case "":
		return nil, fmt.Errorf("provenance without mode")
	default:
		return nil, fmt.Errorf("unknown provenance mode %q", d.Mode)
	}
}

func provenanceToDoc(p Provenance) *provenanceDoc {
	switch v := p.(type) {
	case *OperatorProvenance:
		return &provenanceDoc{
			Mode:       ProvenanceOperator,
			Operators:  v.Operators,
			Base:       v.Base,
			OperatorID: v.OperatorID,
		}
	case *ReductionProvenance:
		return &provenanceDoc{
			Mode:         ProvenanceReduction,
			Reduction:    v.Reduction,
			Domain:       v.Domain,
			Base:         v.Base,
			Dependencies: v.Dependencies,
		}
	case *ExpressionProvenance:
		return &provenanceDoc{
			Mode:       ProvenanceExpression,
			Expression: v.Expression,
			Inputs:     v.Inputs,
		}
	default:
		return nil
	}
}

// entryDoc is the on-disk YAML shape of an Entry.
type entryDoc struct {
	Name          string            `yaml:"name"`
	Kind          Kind              `yaml:"kind"`
	Unit          string            `yaml:"unit,omitempty"`
	Status        Status            `yaml:"status,omitempty"`
	Description   string            `yaml:"description,omitempty"`
	Documentation string            `yaml:"documentation,omitempty"`
	Tags          []string          `yaml:"tags,omitempty"`
	Links         []string          `yaml:"links,omitempty"`
	Frame         string            `yaml:"frame,omitempty"`
	Components    map[string]string `yaml:"components,omitempty"`
	ParentVector  string            `yaml:"parent_vector,omitempty"`
	Provenance    *provenanceDoc    `yaml:"provenance,omitempty"`
	SupersededBy  string            `yaml:"superseded_by,omitempty"`
	Deprecates    string            `yaml:"deprecates,omitempty"`
}

// UnmarshalYAML decodes an entry, dispatching the provenance union on its
// mode field.
func (e *Entry) UnmarshalYAML(node *yaml.Node) error {
	var doc entryDoc
	if err := node.Decode(&doc); err != nil {
		return err
	}
	*e = Entry{
		Name:          doc.Name,
		Kind:          doc.Kind,
		Unit:          doc.Unit,
		Status:        doc.Status,
		Description:   doc.Description,
		Documentation: doc.Documentation,
		Tags:          doc.Tags,
		Links:         doc.Links,
		Frame:         doc.Frame,
		Components:    doc.Components,
		ParentVector:  doc.ParentVector,
		SupersededBy:  doc.SupersededBy,
		Deprecates:    doc.Deprecates,
	}
	if doc.Provenance != nil {
		prov, err := doc.Provenance.toUnion()
		if err != nil {
			return fmt.Errorf("entry %q: %w", doc.Name, err)
		}
		e.Provenance = prov
	}
	return nil
}

// MarshalYAML encodes an entry with its provenance flattened to the
// mode-keyed document form.
func (e Entry) MarshalYAML() (interface{}, error) {
	doc := entryDoc{
		Name:          e.Name,
		Kind:          e.Kind,
		Unit:          e.Unit,
		Status:        e.Status,
		Description:   e.Description,
		Documentation: e.Documentation,
		Tags:          e.Tags,
		Links:         e.Links,
		Frame:         e.Frame,
		Components:    e.Components,
		ParentVector:  e.ParentVector,
		SupersededBy:  e.SupersededBy,
		Deprecates:    e.Deprecates,
	}
	if e.Provenance != nil {
		doc.Provenance = provenanceToDoc(e.Provenance)
		if doc.Provenance == nil {
			return nil, fmt.Errorf("entry %q: unsupported provenance type %T", e.Name, e.Provenance)
		}
	}
	return doc, nil
}
