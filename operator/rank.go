package operator

import "fmt"

// Rank is the structural arity class of a quantity.
type Rank string

const (
	RankScalar    Rank = "scalar"
	RankVector    Rank = "vector"
	RankGeometric Rank = "geometric"
)

// ParseRank converts a string to a Rank.
func ParseRank(s string) (Rank, error) {
	switch Rank(s) {
	case RankScalar, RankVector, RankGeometric:
		return Rank(s), nil
	default:
		return "", fmt.Errorf("unknown rank %q", s)
	}
}
