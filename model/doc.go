// Package model defines the catalog entry record and its structural
// validation rules.
//
// An Entry is the persisted unit of the catalog: identity, kind, unit,
// lifecycle status, relations to other entries (vector components, parent
// vector, supersession) and optional provenance describing how a derived
// quantity was produced. Provenance is a closed tagged union with one
// variant per mode (operator, reduction, expression), so a variant can only
// carry the fields its mode defines.
//
// Structural validation is relational: it resolves references through a
// caller-supplied lookup and reports every violation found, not just the
// first, so a single validation pass surfaces a whole batch of problems.
package model
