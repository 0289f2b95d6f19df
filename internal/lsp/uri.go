package lsp

import (
	"net/url"
	"path/filepath"
)

// uriToPath returns the local path of a file: URI, or "" for other schemes
// (untitled:, vscode-notebook-cell:, ...).
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	if parsed.Scheme != "" && parsed.Scheme != "file" {
		return ""
	}
	path := parsed.Path
	if parsed.Scheme == "" {
		path = uri
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	path = filepath.FromSlash(path)
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// canonicalURI folds equivalent spellings of a file: URI (escaping, "..")
// into one key. Other schemes are kept verbatim.
func canonicalURI(uri string) string {
	if path := uriToPath(uri); path != "" {
		return pathToURI(path)
	}
	return uri
}

// documentPath is the path the engine reports a document under. Documents
// without a local path keep their URI so relative image references simply
// fail to resolve.
func documentPath(uri string) string {
	if path := uriToPath(uri); path != "" {
		return path
	}
	return uri
}
