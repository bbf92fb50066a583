package operator

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Operator describes one primitive rank-changing operator.
type Operator struct {
	// ID is the canonical operator token, e.g. "gradient".
	ID string
	// InputRank is the rank the operator consumes. Ignored when Preserving.
	InputRank Rank
	// OutputRank is the rank the operator produces. Ignored when Preserving.
	OutputRank Rank
	// Scalarizing marks operators that collapse to scalar and terminate the
	// vector-typed portion of a chain (divergence, laplacian, magnitude).
	Scalarizing bool
	// Preserving marks rank-preserving operators such as time_derivative:
	// any input rank is accepted and emitted unchanged.
	Preserving bool
	// MinFrameAxes is the minimum number of frame axes the base vector must
	// declare, when nonzero (curl requires 3). Enforced by catalog
	// validation, which can see the base entry's frame; the chain checker
	// itself is frame-agnostic.
	MinFrameAxes int
	// Description is a short human-readable summary.
	Description string
}

// Prefix returns the naming prefix an operator contributes to a derived
// standard name, e.g. "gradient_of_".
func (o Operator) Prefix() string {
	return o.ID + "_of_"
}

// composite maps a composite operator id to its primitive expansion,
// outermost-first.
type composite struct {
	id    string
	chain []string
}

// Registry is an immutable set of operators plus composite expansions.
type Registry struct {
	ops        map[string]Operator
	composites map[string][]string
	// byPrefixLen caches operator plus composite ids, longest prefix first,
	// for deterministic name matching.
	byPrefixLen []string
}

// NewRegistry builds a Registry from primitive operators and composite
// expansions. Composite chains must reference registered primitives.
func NewRegistry(ops []Operator, composites map[string][]string) (*Registry, error) {
	r := &Registry{
		ops:        make(map[string]Operator, len(ops)),
		composites: make(map[string][]string, len(composites)),
	}
	for _, op := range ops {
		if op.ID == "" {
			return nil, fmt.Errorf("operator with empty id")
		}
		if _, dup := r.ops[op.ID]; dup {
			return nil, fmt.Errorf("duplicate operator %q", op.ID)
		}
		r.ops[op.ID] = op
	}
	for id, chain := range composites {
		if len(chain) == 0 {
			return nil, fmt.Errorf("composite operator %q has an empty chain", id)
		}
		for _, prim := range chain {
			if _, ok := r.ops[prim]; !ok {
				return nil, fmt.Errorf("composite operator %q references unknown primitive %q", id, prim)
			}
		}
		r.composites[id] = chain
	}
	ids := make([]string, 0, len(r.ops)+len(r.composites))
	for id := range r.ops {
		ids = append(ids, id)
	}
	for id := range r.composites {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) > len(ids[j])
		}
		return ids[i] < ids[j]
	})
	r.byPrefixLen = ids
	return r, nil
}

// DefaultRegistry returns the built-in operator set.
func DefaultRegistry() *Registry {
	r, err := NewRegistry([]Operator{
		{ID: "gradient", InputRank: RankScalar, OutputRank: RankVector,
			Description: "Spatial gradient (vector result); input must be scalar."},
		{ID: "divergence", InputRank: RankVector, OutputRank: RankScalar, Scalarizing: true,
			Description: "Divergence (scalar result)."},
		{ID: "curl", InputRank: RankVector, OutputRank: RankVector, MinFrameAxes: 3,
			Description: "Curl (vector result); requires a 3-axis frame."},
		{ID: "laplacian", InputRank: RankScalar, OutputRank: RankScalar, Scalarizing: true,
			Description: "Laplacian (scalar result)."},
		{ID: "time_derivative", Preserving: true,
			Description: "First time derivative; preserves rank."},
		{ID: "magnitude", InputRank: RankVector, OutputRank: RankScalar, Scalarizing: true,
			Description: "Euclidean norm of a vector quantity."},
	}, map[string][]string{
		"second_time_derivative": {"time_derivative", "time_derivative"},
	})
	if err != nil {
		panic(err) // built-in set is static
	}
	return r
}

// Get returns the primitive operator with the given id.
func (r *Registry) Get(id string) (Operator, bool) {
	op, ok := r.ops[id]
	return op, ok
}

// Expand resolves an id to its primitive chain: a primitive expands to
// itself, a composite to its registered expansion.
func (r *Registry) Expand(id string) ([]string, bool) {
	if _, ok := r.ops[id]; ok {
		return []string{id}, true
	}
	if chain, ok := r.composites[id]; ok {
		out := make([]string, len(chain))
		copy(out, chain)
		return out, true
	}
	return nil, false
}

// MatchPrefix peels the outermost operator prefix from name, longest id
// first. It returns the matched id, its primitive expansion and the rest of
// the name.
func (r *Registry) MatchPrefix(name string) (id string, chain []string, rest string, ok bool) {
	for _, cand := range r.byPrefixLen {
		prefix := cand + "_of_"
		if strings.HasPrefix(name, prefix) {
			chain, _ = r.Expand(cand)
			return cand, chain, name[len(prefix):], true
		}
	}
	return "", nil, "", false
}

// ParseChain peels operator prefixes from name recursively, returning the
// primitive chain outermost-first and the residual base name.
func (r *Registry) ParseChain(name string) (chain []string, base string) {
	base = name
	for {
		_, expansion, rest, ok := r.MatchPrefix(base)
		if !ok {
			return chain, base
		}
		chain = append(chain, expansion...)
		base = rest
	}
}

// registryFile is the YAML shape for operator registry extension files.
type registryFile struct {
	Operators []struct {
		ID           string `yaml:"id"`
		InputRank    string `yaml:"input_rank"`
		OutputRank   string `yaml:"output_rank"`
		Scalarizing  bool   `yaml:"scalarizing"`
		Preserving   bool   `yaml:"preserving"`
		MinFrameAxes int    `yaml:"min_frame_axes"`
		Description  string `yaml:"description"`
	} `yaml:"operators"`
	Composites map[string][]string `yaml:"composites"`
}

// LoadRegistry reads a Registry from YAML.
func LoadRegistry(rd io.Reader) (*Registry, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, fmt.Errorf("read operator registry: %w", err)
	}
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode operator registry: %w", err)
	}
	ops := make([]Operator, 0, len(file.Operators))
	for _, raw := range file.Operators {
		op := Operator{
			ID:           raw.ID,
			Scalarizing:  raw.Scalarizing,
			Preserving:   raw.Preserving,
			MinFrameAxes: raw.MinFrameAxes,
			Description:  raw.Description,
		}
		if !raw.Preserving {
			if op.InputRank, err = ParseRank(raw.InputRank); err != nil {
				return nil, fmt.Errorf("operator %q: %w", raw.ID, err)
			}
			if op.OutputRank, err = ParseRank(raw.OutputRank); err != nil {
				return nil, fmt.Errorf("operator %q: %w", raw.ID, err)
			}
		}
		ops = append(ops, op)
	}
	return NewRegistry(ops, file.Composites)
}
