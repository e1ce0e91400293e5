// Package pipeline runs a crawl as an ordered list of steps over one
// model.Run: traverse the category graph, export the sorted titles, fetch
// and stream the corpus, then write the statistics record.
//
// Each step reads what earlier steps left in the Run and adds its own
// results. The pipeline stops at the first failing step and records the
// error and the per-step timings in the Run.
package pipeline
