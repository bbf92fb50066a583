package lexical

// Hit is one ranked search result.
type Hit struct {
	// Name is the standard name of the matched entry.
	Name string
	// Score is the relevance score; higher is better.
	Score float64
	// Snippet is a fragment of the matched document with query terms
	// wrapped in ASCII markers, for display.
	Snippet string
}

// Index is the interface for a keyword search index over catalog entries.
// Results are deterministic: ties on score break by name.
type Index interface {
	// Add indexes a document under the given standard name, replacing
	// any previous document with that name.
	Add(name, text string) error
	// Delete removes a document from the index.
	Delete(name string) error
	// Search returns the top k hits for the query, best first.
	Search(query string, k int) ([]Hit, error)
	// Close releases index resources.
	Close() error
}
