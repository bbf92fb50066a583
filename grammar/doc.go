// Package grammar implements the standard-name grammar: tokenization of
// candidate identifiers into typed, ordered segments validated against a
// controlled vocabulary.
//
// A standard name is a snake_case identifier assembled from optional
// qualifier segments around a single required base quantity:
//
//	[<component>_component_of | <coordinate>]? [<subject>]?
//	<geometric_base | physical_base>
//	[of_<object> | from_<source>]? [of_<geometry> | at_<position>]?
//	[due_to_<process>]?
//
// Parsing is pure: a Parser holds an immutable Vocabulary and never mutates
// shared state, so a single Parser is safe for concurrent use. Reloading an
// updated vocabulary means constructing a new Parser, not mutating one.
package grammar
