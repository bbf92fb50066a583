package stdnames

import (
	"fmt"
	"sort"
	"strings"
)

// Report collects every validation violation found in one pass over a
// catalog. Violations are grouped per entry; graph-level problems
// (dangling dependencies, cycles) are listed separately.
type Report struct {
	// Violations maps a standard name to the violations found on its
	// entry.
	Violations map[string][]error
	// Graph holds catalog-wide dependency graph errors.
	Graph []error
}

func newReport() *Report {
	return &Report{Violations: make(map[string][]error)}
}

func (r *Report) add(name string, errs ...error) {
	if len(errs) == 0 {
		return
	}
	r.Violations[name] = append(r.Violations[name], errs...)
}

// Empty reports whether no violations were found.
func (r *Report) Empty() bool {
	return len(r.Violations) == 0 && len(r.Graph) == 0
}

// Count returns the total number of violations.
func (r *Report) Count() int {
	n := len(r.Graph)
	for _, errs := range r.Violations {
		n += len(errs)
	}
	return n
}

// All returns every violation in deterministic order: per-entry errors
// sorted by name, then graph errors.
func (r *Report) All() []error {
	names := make([]string, 0, len(r.Violations))
	for name := range r.Violations {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]error, 0, r.Count())
	for _, name := range names {
		out = append(out, r.Violations[name]...)
	}
	out = append(out, r.Graph...)
	return out
}

// String renders the report one violation per line.
func (r *Report) String() string {
	if r.Empty() {
		return "no violations"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d violation(s):", r.Count())
	for _, err := range r.All() {
		sb.WriteString("\n  ")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
