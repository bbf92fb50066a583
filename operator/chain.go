package operator

import (
	"fmt"
	"strings"
)

// RankErrorKind tags the category of a rank-transition failure.
type RankErrorKind string

const (
	// UnknownOperator means the chain references an unregistered operator.
	UnknownOperator RankErrorKind = "unknown_operator"
	// InvalidOperatorInput means an operator's declared input rank does not
	// match the rank produced so far.
	InvalidOperatorInput RankErrorKind = "invalid_operator_input"
	// ScalarizedBeforeVectorOp means a vector-consuming operator follows a
	// scalarizing one.
	ScalarizedBeforeVectorOp RankErrorKind = "scalarized_before_vector_op"
	// InsufficientFrameRank means curl (or another frame-sensitive
	// operator) was applied over a frame with too few axes.
	InsufficientFrameRank RankErrorKind = "insufficient_frame_rank"
)

// RankError describes a rank-transition violation in an operator chain.
type RankError struct {
	Kind     RankErrorKind
	Operator string
	Chain    []string
	Current  Rank
	Want     Rank
}

func (e *RankError) Error() string {
	switch e.Kind {
	case UnknownOperator:
		return fmt.Sprintf("operator %q is not registered", e.Operator)
	case InvalidOperatorInput:
		return fmt.Sprintf("operator %q requires %s input but chain [%s] produces %s",
			e.Operator, e.Want, strings.Join(e.Chain, " "), e.Current)
	case ScalarizedBeforeVectorOp:
		return fmt.Sprintf("operator %q requires vector input after a scalarizing operator in chain [%s]",
			e.Operator, strings.Join(e.Chain, " "))
	case InsufficientFrameRank:
		return fmt.Sprintf("operator %q requires a frame with more axes", e.Operator)
	default:
		return fmt.Sprintf("rank error (%s) at operator %q", e.Kind, e.Operator)
	}
}

// CheckChain validates the rank transitions of a primitive operator chain
// applied to a base of the given rank. The chain is outermost-first, as
// stored in provenance; the fold runs from the innermost operator (closest
// to the base) outward. On success it returns the resulting rank.
func (r *Registry) CheckChain(chain []string, baseRank Rank) (Rank, error) {
	current := baseRank
	scalarized := false
	for i := len(chain) - 1; i >= 0; i-- {
		id := chain[i]
		op, ok := r.ops[id]
		if !ok {
			return "", &RankError{Kind: UnknownOperator, Operator: id, Chain: chain}
		}
		if op.Preserving {
			if op.Scalarizing {
				scalarized = true
			}
			continue
		}
		if op.InputRank == RankVector && scalarized {
			return "", &RankError{Kind: ScalarizedBeforeVectorOp, Operator: id, Chain: chain, Current: current}
		}
		if op.InputRank != current {
			return "", &RankError{Kind: InvalidOperatorInput, Operator: id, Chain: chain, Current: current, Want: op.InputRank}
		}
		current = op.OutputRank
		if op.Scalarizing {
			scalarized = true
		}
	}
	return current, nil
}
