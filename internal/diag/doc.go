// Package diag defines the diagnostic model shared by all analyzers.
//
// A Diagnostic is one accessibility finding: a byte span into the checked
// document, a message, the WCAG citation it violates (Source), an optional
// external rule id, and suggestions carried as Notes on the same span.
//
// Analyzers emit through a Reporter so that storage, deduplication and the
// per-pass problem budget stay outside of them. BagReporter collects into a
// Bag; DedupReporter drops exact duplicates before they reach the budget.
//
// Package diag does no formatting or IO. Rendering lives in internal/diagfmt,
// conversion to editor ranges in internal/lsp.
package diag
