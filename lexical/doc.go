// Package lexical defines the interface for keyword search over catalog
// entries.
//
// The index is documentation-oriented: each entry contributes its name,
// description, documentation and tags as one searchable document keyed by
// the standard name. The bm25 subpackage provides the built-in in-memory
// implementation.
//
// Custom implementations satisfy:
//
//	type Index interface {
//	    Add(name, text string) error
//	    Delete(name string) error
//	    Search(query string, k int) ([]Hit, error)
//	    Close() error
//	}
package lexical
