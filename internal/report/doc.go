// Package report renders the summary of a crawl run.
//
// Writers share the Writer interface so the CLI can print a plain-text
// summary to the terminal and save a Markdown or JSON copy with --report.
package report
