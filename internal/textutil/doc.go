// Package textutil provides case-folded name matching and filename sanitization.
//
// Card names arrive from the catalog, the configuration file, renderer output,
// and file names on disk, each with its own capitalization. Every comparison
// between them goes through Fold so that "Bonecrusher Giant // Stomp" and
// "bonecrusher giant // stomp" are treated as the same card.
package textutil
