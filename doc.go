// Package stdnames maintains a catalog of standardized scientific
// quantity names: a controlled vocabulary where every name is built from
// typed grammar segments and every derived quantity declares how it was
// produced.
//
// The Catalog is the entry point. It loads entry documents from a YAML
// store, validates them against the segment grammar, the operator and
// reduction registries and the relational rules, and serves lookups and
// ranked keyword search. All mutation happens through a unit of work:
//
//	cat, err := stdnames.Open(ctx, "./catalog",
//	    stdnames.WithVocabulary(vocab),
//	)
//	if err != nil { ... }
//	defer cat.Close()
//
//	uow, err := cat.Begin()
//	if err != nil { ... }
//	_ = uow.StageAdd(entry)
//	report, err := uow.Commit(ctx)
//	if err != nil {
//	    // report lists every violation across the whole catalog
//	}
//
// A commit revalidates the complete future catalog, so a batch of edits
// is accepted or rejected as a unit and the on-disk state never holds a
// structurally broken catalog. Read-only consumers build integrity-stamped
// snapshots (see the snapshot package) and can publish them to object
// storage (see the blobstore package).
package stdnames
