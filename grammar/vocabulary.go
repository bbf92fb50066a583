package grammar

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// Vocabulary is an immutable mapping from segment kind to the set of tokens
// admitted for that segment. It is constructed once at startup and passed to
// Parser instances; there is no hot reload.
type Vocabulary struct {
	tokens map[SegmentKind][]string // longest-first for greedy matching
	member map[SegmentKind]map[string]struct{}
}

// NewVocabulary builds a Vocabulary from a kind -> tokens mapping.
// Tokens that fail the canonical token shape are rejected.
func NewVocabulary(sets map[SegmentKind][]string) (*Vocabulary, error) {
	v := &Vocabulary{
		tokens: make(map[SegmentKind][]string, len(sets)),
		member: make(map[SegmentKind]map[string]struct{}, len(sets)),
	}
	for kind, toks := range sets {
		seen := make(map[string]struct{}, len(toks))
		ordered := make([]string, 0, len(toks))
		for _, t := range toks {
			if !ValidToken(t) {
				return nil, fmt.Errorf("vocabulary token %q for segment %q is not a valid token", t, kind)
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			ordered = append(ordered, t)
		}
		// Longest tokens first so greedy template matching cannot be
		// shadowed by a shorter token sharing a prefix or suffix.
		sort.Slice(ordered, func(i, j int) bool {
			if len(ordered[i]) != len(ordered[j]) {
				return len(ordered[i]) > len(ordered[j])
			}
			return ordered[i] < ordered[j]
		})
		v.tokens[kind] = ordered
		v.member[kind] = seen
	}
	return v, nil
}

// vocabularyFile is the on-disk YAML shape:
//
//	segments:
//	  component: [radial, toroidal, vertical]
//	  subject: [electron, ion]
type vocabularyFile struct {
	Segments map[string][]string `yaml:"segments"`
}

// LoadVocabulary reads a Vocabulary from YAML.
func LoadVocabulary(r io.Reader) (*Vocabulary, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read vocabulary: %w", err)
	}
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode vocabulary: %w", err)
	}
	sets := make(map[SegmentKind][]string, len(file.Segments))
	for name, toks := range file.Segments {
		kind := SegmentKind(name)
		if !knownKind(kind) {
			return nil, fmt.Errorf("unknown segment kind %q in vocabulary", name)
		}
		sets[kind] = toks
	}
	return NewVocabulary(sets)
}

func knownKind(k SegmentKind) bool {
	for _, kk := range canonicalOrder {
		if kk == k {
			return true
		}
	}
	return false
}

// Tokens returns the tokens admitted for a segment kind, longest first.
func (v *Vocabulary) Tokens(kind SegmentKind) []string {
	return v.tokens[kind]
}

// Contains reports whether token is admitted for the given segment kind.
func (v *Vocabulary) Contains(kind SegmentKind, token string) bool {
	_, ok := v.member[kind][token]
	return ok
}
