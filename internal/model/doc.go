// Package model defines the core data structures used throughout wikicorpus.
//
// This package contains the following main types:
//   - RunID and Marker: the per-run progress markers kept for every category
//   - Member: an entry of a category member listing
//   - Pair: one harvested article (title and extracted text)
//   - Stats: byte-size statistics of a written corpus
//   - Run: the state passed between the orchestration steps
//
// Models live in their own package so that the store, crawler, corpus and
// pipeline packages can share them without import cycles.
package model
