package operator

import (
	"fmt"
	"sort"
	"strings"
)

// Reduction describes a standardized aggregation applied to a base quantity.
type Reduction struct {
	// ID is the canonical reduction token (mean, rms, integral, magnitude).
	ID string
	// Domain is the context the reduction aggregates over: time, volume,
	// flux_surface or "none".
	Domain string
	// RequiresVector marks reductions defined only on vector bases.
	RequiresVector bool
	// Prefix is the naming prefix a derived name carries, e.g.
	// "time_average_of_".
	Prefix string
	// Description is a short human-readable summary.
	Description string
}

// Reductions is an immutable reduction registry.
type Reductions struct {
	byID       map[string]Reduction
	byPrefix   []Reduction // longest prefix first
	magnitudes MagnitudeNaming
}

// NewReductions builds a registry from the given reductions.
func NewReductions(list []Reduction, magnitudes MagnitudeNaming) (*Reductions, error) {
	r := &Reductions{
		byID:       make(map[string]Reduction, len(list)),
		magnitudes: magnitudes,
	}
	for _, red := range list {
		if red.ID == "" || red.Prefix == "" {
			return nil, fmt.Errorf("reduction with empty id or prefix")
		}
		if _, dup := r.byID[red.ID]; dup {
			return nil, fmt.Errorf("duplicate reduction %q", red.ID)
		}
		r.byID[red.ID] = red
		r.byPrefix = append(r.byPrefix, red)
	}
	sort.Slice(r.byPrefix, func(i, j int) bool {
		if len(r.byPrefix[i].Prefix) != len(r.byPrefix[j].Prefix) {
			return len(r.byPrefix[i].Prefix) > len(r.byPrefix[j].Prefix)
		}
		return r.byPrefix[i].Prefix < r.byPrefix[j].Prefix
	})
	return r, nil
}

// DefaultReductions returns the built-in reduction set with the canonical
// prefix-form magnitude naming.
func DefaultReductions() *Reductions {
	r, err := NewReductions([]Reduction{
		{ID: "mean", Domain: "time", Prefix: "time_average_of_",
			Description: "Time average (mean over time)."},
		{ID: "rms", Domain: "none", Prefix: "root_mean_square_of_",
			Description: "Root mean square of a scalar quantity."},
		{ID: "integral", Domain: "volume", Prefix: "volume_integral_of_",
			Description: "Volume integral."},
		{ID: "magnitude", Domain: "none", RequiresVector: true, Prefix: "magnitude_of_",
			Description: "Magnitude (norm) of a vector quantity."},
	}, MagnitudePrefixNaming)
	if err != nil {
		panic(err) // built-in set is static
	}
	return r
}

// Get returns the reduction with the given id.
func (r *Reductions) Get(id string) (Reduction, bool) {
	red, ok := r.byID[id]
	return red, ok
}

// MatchPrefix peels a reduction prefix from name, longest prefix first.
func (r *Reductions) MatchPrefix(name string) (Reduction, string, bool) {
	for _, red := range r.byPrefix {
		if strings.HasPrefix(name, red.Prefix) {
			return red, name[len(red.Prefix):], true
		}
	}
	return Reduction{}, "", false
}

// MagnitudeNaming returns the configured magnitude naming policy.
func (r *Reductions) MagnitudeNaming() MagnitudeNaming {
	return r.magnitudes
}

// MagnitudeNaming is the naming policy for derived magnitude entries. The
// source material is ambiguous between a prefix form (magnitude_of_<vector>)
// and a legacy suffix form (<vector>_magnitude); the policy is configurable
// rather than hard-coded, with the prefix form as the canonical default.
type MagnitudeNaming int

const (
	// MagnitudePrefixNaming renders magnitude names as magnitude_of_<vector>.
	MagnitudePrefixNaming MagnitudeNaming = iota
	// MagnitudeSuffixNaming renders magnitude names as <vector>_magnitude.
	MagnitudeSuffixNaming
)

// Render returns the magnitude name for a vector base.
func (m MagnitudeNaming) Render(base string) string {
	if m == MagnitudeSuffixNaming {
		return base + "_magnitude"
	}
	return "magnitude_of_" + base
}

// Match reports whether name follows this policy and returns the vector base.
func (m MagnitudeNaming) Match(name string) (string, bool) {
	if m == MagnitudeSuffixNaming {
		base, ok := strings.CutSuffix(name, "_magnitude")
		return base, ok && base != ""
	}
	base, ok := strings.CutPrefix(name, "magnitude_of_")
	return base, ok && base != ""
}
