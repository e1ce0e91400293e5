// Package wiki is a small client for the MediaWiki action API.
//
// It covers the two calls the crawl needs:
//   - CategoryMembers lists the members of a category, following API
//     continuation until the listing is exhausted
//   - Extract requests the plain-text extract of one article and returns the
//     raw response document, which DecodeExtract turns into a page record
//
// Failures are reported so that callers can choose the retry scope:
// a non-2xx response is a *StatusError, a MediaWiki error object is an
// *APIError, and anything else is a transport error.
package wiki
