package stdnames

import (
	"log/slog"

	"github.com/plasmakit/stdnames/grammar"
	"github.com/plasmakit/stdnames/lexical"
	"github.com/plasmakit/stdnames/operator"
)

type options struct {
	vocabulary       *grammar.Vocabulary
	operators        *operator.Registry
	reductions       *operator.Reductions
	primaryTags      []string
	secondaryTags    []string
	index            lexical.Index
	logger           *Logger
	metricsCollector MetricsCollector
}

// Option configures catalog behavior at Open time.
type Option func(*options)

// WithVocabulary supplies the segment vocabulary used for grammar
// validation of entry names. Without a vocabulary, grammar checks are
// skipped and only structural and rank rules apply.
func WithVocabulary(v *grammar.Vocabulary) Option {
	return func(o *options) {
		o.vocabulary = v
	}
}

// WithOperatorRegistry replaces the built-in operator registry.
func WithOperatorRegistry(r *operator.Registry) Option {
	return func(o *options) {
		if r != nil {
			o.operators = r
		}
	}
}

// WithReductions replaces the built-in reduction registry. Use this to
// change the magnitude naming policy or register new reductions.
func WithReductions(r *operator.Reductions) Option {
	return func(o *options) {
		if r != nil {
			o.reductions = r
		}
	}
}

// WithTagSets declares the allowed primary and secondary tags. Without
// tag sets, tags are not validated.
func WithTagSets(primary, secondary []string) Option {
	return func(o *options) {
		o.primaryTags = primary
		o.secondaryTags = secondary
	}
}

// WithLexicalIndex replaces the built-in BM25 index with a custom
// lexical.Index implementation.
func WithLexicalIndex(idx lexical.Index) Option {
	return func(o *options) {
		if idx != nil {
			o.index = idx
		}
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		operators:        operator.DefaultRegistry(),
		reductions:       operator.DefaultReductions(),
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
