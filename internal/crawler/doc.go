// Package crawler harvests article texts reachable from a root category.
//
// # Components
//
//   - Traverser: depth-first walk of the category graph that stores every
//     discovered article title and uses per-run category markers to stop on
//     cycles and to skip categories already completed in the run
//   - Export: drains the title store into a sorted title list
//   - Fetcher: resolves titles to their extracted text in paced, concurrent
//     batches and yields the results lazily
//
// # Failure handling
//
// Transient failures are retried at the smallest scope that produced them:
// a category's whole member loop, a single text request (non-success status
// or malformed document), or a whole batch (transport errors). A page whose
// title does not match the requested title is a MismatchError, which stops
// the run. Titles without extractable text are logged and skipped.
//
// # Usage
//
//	tr := crawler.NewTraverser(client, stores.Titles, stores.Categories, runID)
//	if err := tr.Traverse(ctx, "Категория:Статьи"); err != nil { ... }
//
//	titles, err := crawler.Export(ctx, stores.Titles)
//	for pair, err := range crawler.NewFetcher(client).FetchAll(ctx, titles) { ... }
package crawler
