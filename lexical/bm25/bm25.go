package bm25

import (
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/plasmakit/stdnames/lexical"
)

const (
	k1 = 1.2
	b  = 0.75
)

type posting struct {
	name  string
	count int
}

type document struct {
	length int
	text   string
}

// MemoryIndex is an in-memory BM25 index over catalog entry documents.
type MemoryIndex struct {
	mu          sync.RWMutex
	inverted    map[string][]posting
	docs        map[string]document
	totalLength int64
}

// New creates an empty MemoryIndex.
func New() *MemoryIndex {
	return &MemoryIndex{
		inverted: make(map[string][]posting),
		docs:     make(map[string]document),
	}
}

var _ lexical.Index = (*MemoryIndex)(nil)

// tokenize lowercases and splits on whitespace and underscores, so a query
// for "electron temperature" matches the name electron_temperature.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return r == '_' || r == ' ' || r == '\t' || r == '\n' || r == '\r' ||
			r == '.' || r == ',' || r == ';' || r == ':' || r == '(' || r == ')'
	})
}

// Add indexes text under name, replacing any previous document.
func (idx *MemoryIndex) Add(name, text string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if _, ok := idx.docs[name]; ok {
		idx.deleteLocked(name)
	}

	tokens := tokenize(text)
	idx.docs[name] = document{length: len(tokens), text: text}
	idx.totalLength += int64(len(tokens))

	tf := make(map[string]int)
	for _, t := range tokens {
		tf[t]++
	}
	for t, count := range tf {
		idx.inverted[t] = append(idx.inverted[t], posting{name: name, count: count})
	}
	return nil
}

// Delete removes a document from the index.
func (idx *MemoryIndex) Delete(name string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.deleteLocked(name)
	return nil
}

func (idx *MemoryIndex) deleteLocked(name string) {
	doc, ok := idx.docs[name]
	if !ok {
		return
	}
	for _, t := range tokenize(doc.text) {
		postings := idx.inverted[t]
		for i, p := range postings {
			if p.name == name {
				idx.inverted[t] = append(postings[:i], postings[i+1:]...)
				break
			}
		}
		if len(idx.inverted[t]) == 0 {
			delete(idx.inverted, t)
		}
	}
	delete(idx.docs, name)
	idx.totalLength -= int64(doc.length)
}

// Search scores every document matching the query terms and returns the
// top k, ordered by score descending with ties broken by name.
func (idx *MemoryIndex) Search(query string, k int) ([]lexical.Hit, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	terms := tokenize(query)
	if len(terms) == 0 || len(idx.docs) == 0 || k <= 0 {
		return nil, nil
	}

	avgDL := float64(idx.totalLength) / float64(len(idx.docs))
	scores := make(map[string]float64)
	for _, t := range terms {
		postings, ok := idx.inverted[t]
		if !ok {
			continue
		}
		idf := idx.computeIDF(len(postings))
		for _, p := range postings {
			tf := float64(p.count)
			docLen := float64(idx.docs[p.name].length)
			num := tf * (k1 + 1)
			denom := tf + k1*(1-b+b*(docLen/avgDL))
			scores[p.name] += idf * (num / denom)
		}
	}

	hits := make([]lexical.Hit, 0, len(scores))
	for name, score := range scores {
		hits = append(hits, lexical.Hit{
			Name:    name,
			Score:   score,
			Snippet: snippet(idx.docs[name].text, terms),
		})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Name < hits[j].Name
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (idx *MemoryIndex) computeIDF(df int) float64 {
	// IDF = log(1 + (N - n + 0.5) / (n + 0.5))
	N := float64(len(idx.docs))
	n := float64(df)
	return math.Log(1 + (N-n+0.5)/(n+0.5))
}

// Close releases nothing; the index is purely in-memory.
func (idx *MemoryIndex) Close() error {
	return nil
}
