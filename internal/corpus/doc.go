// Package corpus writes and checks the on-disk artifacts of a crawl: the
// sorted titles array, the streamed corpus object and its statistics record.
//
// The corpus object is written incrementally, one pair at a time, so memory
// use does not grow with the size of the corpus.
package corpus
