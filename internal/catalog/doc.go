// Package catalog reads the bulk card catalog and decides which entries are in
// scope for derivation.
//
// The catalog is a single JSON array of card objects. Fields are extracted
// with JSONPath expressions so that missing or oddly typed fields degrade to
// zero values instead of failing the whole document. Filter applies the
// ordered exclusion predicates; each dropped entry is tallied by Reason.
package catalog
