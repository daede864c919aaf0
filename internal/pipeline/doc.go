// Package pipeline runs one proxymill job from catalog to finished proxies.
//
// Run checks the environment, takes an exclusive lock on the renderer
// directory, loads and filters the catalog, derives card records, and then,
// for every configured pass, renders the pass's cards through a fresh
// orchestrator before reconciling the renderer's output. Each run is
// recorded in the ledger, and any card left without an image is written to
// a rerun list the operator can paste into cards.subset.
//
// Only two conditions abort a run: the environment is missing required
// files, or no legal card survives filtering. Everything else is reported
// in the Summary and in the returned error without undoing finished work.
package pipeline
