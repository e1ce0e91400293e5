// Package main provides the entry point for the wikicorpus CLI.
//
// wikicorpus harvests the plain-text extracts of every article reachable
// from a Wikipedia category into a single JSON corpus.
//
// Usage:
//
//	wikicorpus <category> <titles.json> <corpus.json> <stat.json>
//	wikicorpus verify <corpus.json> <stat.json>
//
// See --help for all available options.
package main

// main is the entry point for wikicorpus.
func main() {
	Execute()
}
