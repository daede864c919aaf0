// Package render drives the external card renderer one batch at a time.
//
// A Batch collects validated card records, writes the renderer's two input
// artifacts (an item list and a shell invocation script) under the renderer
// working directory, runs the script, and classifies each line the renderer
// prints. Lines mentioning a failure are parsed for the card name so the
// caller can retry just that card. The renderer's exit status is logged but
// never decides success; the output stream does.
package render
