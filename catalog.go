package stdnames

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/plasmakit/stdnames/depgraph"
	"github.com/plasmakit/stdnames/grammar"
	"github.com/plasmakit/stdnames/lexical"
	"github.com/plasmakit/stdnames/lexical/bm25"
	"github.com/plasmakit/stdnames/model"
	"github.com/plasmakit/stdnames/snapshot"
	"github.com/plasmakit/stdnames/store"
)

// Catalog is an in-memory view of a standard-name catalog backed by a
// directory of YAML files. Reads are concurrent; mutations go through a
// single unit of work at a time (see Begin).
type Catalog struct {
	mu sync.RWMutex

	opts      options
	store     *store.FileStore
	validator *model.Validator
	entries   map[string]*model.Entry
	index     lexical.Index

	uowActive bool
	closed    bool
}

// Open loads the catalog rooted at dir, validates every entry and builds
// the lexical index. A catalog on disk that violates the naming rules
// fails to open with ErrValidationFailed.
func Open(ctx context.Context, dir string, optFns ...Option) (*Catalog, error) {
	o := applyOptions(optFns)

	st := store.NewFileStore(dir)

	start := time.Now()
	entries, err := st.Load(ctx)
	o.metricsCollector.RecordLoad(len(entries), time.Since(start), err)
	o.logger.LogLoad(ctx, dir, len(entries), err)
	if err != nil {
		return nil, err
	}

	var parser *grammar.Parser
	if o.vocabulary != nil {
		parser = grammar.NewParser(o.vocabulary)
	}
	validator := model.NewValidator(parser, o.operators, o.reductions)
	validator.PrimaryTags = tagSet(o.primaryTags)
	validator.SecondaryTags = tagSet(o.secondaryTags)

	c := &Catalog{
		opts:      o,
		store:     st,
		validator: validator,
		entries:   entries,
		index:     o.index,
	}
	if c.index == nil {
		c.index = bm25.New()
	}

	if report := c.validateAll(entries); !report.Empty() {
		return nil, fmt.Errorf("%w: %s", ErrValidationFailed, report)
	}

	for name, e := range entries {
		if err := c.index.Add(name, docText(e)); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Names returns all standard names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether the catalog contains the given standard name.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, ok := c.entries[name]
	return ok
}

// Get returns a copy of the entry for the given standard name. Mutating
// the returned entry does not affect the catalog; stage it through a
// unit of work instead.
func (c *Catalog) Get(name string) (*model.Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return e.Clone(), nil
}

// Parse parses a standard name against the configured vocabulary.
// Requires WithVocabulary.
func (c *Catalog) Parse(name string) (*grammar.ParsedName, error) {
	if c.validator.Parser == nil {
		return nil, fmt.Errorf("no vocabulary configured")
	}
	return c.validator.Parser.Parse(name)
}

// Search runs a keyword query over entry names, descriptions and tags
// and returns up to k hits ranked by relevance. Ordering is
// deterministic for a fixed catalog state.
func (c *Catalog) Search(ctx context.Context, query string, k int) ([]lexical.Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}
	if strings.TrimSpace(query) == "" {
		err := &ErrInvalidQuery{Query: query}
		c.opts.logger.LogSearch(ctx, query, k, 0, err)
		return nil, err
	}

	start := time.Now()
	hits, err := c.index.Search(query, k)
	c.opts.metricsCollector.RecordSearch(k, time.Since(start), err)
	c.opts.logger.LogSearch(ctx, query, k, len(hits), err)
	return hits, err
}

// Validate re-checks every entry against the grammar, rank and
// relational rules and returns a report of all violations found.
func (c *Catalog) Validate() *Report {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.validateAll(c.entries)
}

// Graph builds the dependency graph over the current entries. Dangling
// references are dropped from the graph and returned as errors.
func (c *Catalog) Graph() (*depgraph.Graph, []error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return depgraph.Build(c.entries)
}

// Snapshot builds an integrity-stamped snapshot of the catalog as it
// exists on disk.
func (c *Catalog) Snapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}

	start := time.Now()
	s, err := snapshot.Build(ctx, c.store, c.entries)
	c.opts.metricsCollector.RecordSnapshot(len(c.entries), time.Since(start), err)
	if err != nil {
		c.opts.logger.LogSnapshot(ctx, 0, "", err)
		return nil, err
	}
	c.opts.logger.LogSnapshot(ctx, len(c.entries), s.AggregateHash(), nil)
	return s, nil
}

// Begin opens a unit of work for staging mutations. Only one unit of
// work may be active at a time; a second Begin before Commit or Abort
// returns ErrUnitOfWorkActive.
func (c *Catalog) Begin() (*UnitOfWork, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCatalogClosed
	}
	if c.uowActive {
		return nil, ErrUnitOfWorkActive
	}
	c.uowActive = true
	return &UnitOfWork{
		catalog: c,
		state:   StateOpen,
		staged:  make(map[string]*model.Entry),
		removed: make(map[string]struct{}),
	}, nil
}

// Close releases the catalog. Subsequent operations return
// ErrCatalogClosed. Close is idempotent.
func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.index.Close()
}

// validateAll checks every entry against the candidate catalog state and
// folds in dependency graph errors. Caller holds at least a read lock.
func (c *Catalog) validateAll(entries map[string]*model.Entry) *Report {
	summaries := make(map[string]model.Summary, len(entries))
	for name, e := range entries {
		summaries[name] = model.Summarize(e)
	}
	lookup := func(name string) (model.Summary, bool) {
		s, ok := summaries[name]
		return s, ok
	}

	report := newReport()
	for name, e := range entries {
		report.add(name, c.validator.ValidateEntry(e, lookup)...)
	}

	g, graphErrs := depgraph.Build(entries)
	report.Graph = append(report.Graph, graphErrs...)
	if err := g.CheckAcyclic(); err != nil {
		report.Graph = append(report.Graph, err)
	}
	return report
}

// docText is what the lexical index sees for an entry.
func docText(e *model.Entry) string {
	parts := make([]string, 0, 4+len(e.Tags))
	parts = append(parts, e.Name)
	if e.Description != "" {
		parts = append(parts, e.Description)
	}
	if e.Documentation != "" {
		parts = append(parts, e.Documentation)
	}
	parts = append(parts, e.Tags...)
	return strings.Join(parts, " ")
}

func tagSet(tags []string) map[string]struct{} {
	if len(tags) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	return set
}
