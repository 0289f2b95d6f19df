// Package validate runs the external markup validators and maps their
// findings onto WCAG diagnostics.
package validate

import (
	"context"
	"path/filepath"
	"strings"
)

// WHATWGMessage is one html-validate finding. Line, Column and Size are
// 1-based; Column and Size count UTF-16 code units.
type WHATWGMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Size     int    `json:"size"`
}

// W3CMessage is one Nu checker message.
type W3CMessage struct {
	Type        string `json:"type"`
	SubType     string `json:"subType,omitempty"`
	Message     string `json:"message"`
	Extract     string `json:"extract,omitempty"`
	FirstLine   int    `json:"firstLine,omitempty"`
	FirstColumn int    `json:"firstColumn,omitempty"`
	LastLine    int    `json:"lastLine"`
	LastColumn  int    `json:"lastColumn"`
}

// WHATWGValidator checks a document against the WHATWG rules.
type WHATWGValidator interface {
	Validate(ctx context.Context, text string) ([]WHATWGMessage, error)
}

// W3CValidator checks a document with the W3C Nu checker.
type W3CValidator interface {
	Validate(ctx context.Context, text string) ([]W3CMessage, error)
}

// ImageRef names an image as written in the document, with the directory
// relative sources resolve against.
type ImageRef struct {
	Src string
	Dir string
}

// IsURL reports whether the source is fetched over HTTP.
func (r ImageRef) IsURL() bool {
	return strings.HasPrefix(r.Src, "http://") || strings.HasPrefix(r.Src, "https://")
}

// Path returns the local file the source points at.
func (r ImageRef) Path() string {
	if r.IsURL() || filepath.IsAbs(r.Src) || r.Dir == "" {
		return r.Src
	}
	return filepath.Join(r.Dir, filepath.FromSlash(r.Src))
}

// Captioner proposes alt text for an image. The result is appended to the
// generic image suggestion, so it starts with punctuation. It never fails;
// implementations return a neutral sentence instead.
type Captioner interface {
	SuggestAltText(ctx context.Context, ref ImageRef) string
}
