// Package reconcile picks the authoritative rendered image for every card face.
//
// The renderer writes numbered candidates such as "12 Bonecrusher Giant.png"
// or "13a Stomp.png" for every side of every item it renders. The ordinal's
// parity says which side a candidate shows, so the reconciler keeps the one
// that matches the card's face, copies it to the output directory under a
// stable name, and reports cards left without an image.
package reconcile
