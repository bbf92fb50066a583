// Package bm25 provides a BM25-based keyword index over catalog entries.
//
// BM25 (Best Matching 25) is a ranking function for keyword search. The
// implementation keeps an in-memory inverted index keyed by standard name
// and tokenizes on underscores as well as whitespace, so multi-word
// queries match the snake_case naming convention.
//
// # Parameters
//
// Uses standard BM25 parameters: k1=1.2, b=0.75
//
// # Thread Safety
//
// The index is safe for concurrent reads and writes.
package bm25
