// Package card models one face of a two-faced card and the pairing between
// faces.
//
// Records are built once by the derive package and only corrected twice
// afterwards (artist override and watermark backfill). Siblings are resolved
// through a Pool by index, so records never hold pointers to each other. The
// override flags that decide which renderer overrides a face needs are
// computed on demand against the sibling.
package card
