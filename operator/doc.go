// Package operator defines the rank-changing operator registry and the
// rank-transition checker for operator chains.
//
// Operators carry rank signatures, much like function types: gradient maps a
// scalar to a vector, divergence maps a vector to a scalar, and so on. A
// chain of operators applied to a base quantity is valid only if every
// transition matches, folding from the innermost operator outward. Operators
// whose output is scalar may be marked scalarizing: once one has been
// applied, no vector-consuming operator may follow in the chain.
//
// The Registry is immutable after construction and safe for concurrent use.
package operator
