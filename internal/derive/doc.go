// Package derive turns filtered catalog entries into paired card records.
//
// For every entry it builds a front and a back record, infers the rendering
// template, applies manual artist overrides, and links the two faces. Faces
// whose display name was already produced by an earlier printing are merged
// into that earlier record (watermark only) and dropped. After all entries
// are processed a single watermark backfill pass runs over the pool.
//
// Missing catalog fields are logged and never abort derivation; rejection of
// records that need data they lack happens later, when a batch validates its
// cards.
package derive
