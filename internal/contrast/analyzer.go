// Package contrast checks text against its background for the WCAG contrast
// minimums.
package contrast

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"ably/internal/diag"
	"ably/internal/pass"
	"ably/internal/source"
	"ably/internal/trace"
)

// Citation is the source of every contrast diagnostic.
const Citation = "WCAG 2.1 | Color Contrast (1.4.3, 1.4.6)"

// skipText belongs to the host's own image panel.
const skipText = "Process selected images"

var textElements = map[string]bool{
	"p": true, "span": true, "li": true, "a": true, "button": true, "label": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"small": true, "strong": true, "em": true, "div": true,
	"td": true, "th": true, "caption": true,
}

// Finding is one element that misses at least one threshold. Start and End
// delimit the opening tag in the document, without the angle brackets.
type Finding struct {
	Start      uint32
	End        uint32
	Issue      string
	Suggestion string
	Ratio      float64
	Foreground RGB
	Background RGB
	Large      bool
}

// Report is the outcome of one analysis.
type Report struct {
	Findings       []Finding
	Scheme         []SchemeSuggestion
	BodyBackground RGB
}

type Options struct {
	// Resolver builds the style resolver for a parsed document; nil selects
	// NewCascade.
	Resolver func(doc *html.Node) StyleResolver
	Scheme   SchemeSource
	Logger   *zerolog.Logger
}

type Analyzer struct {
	resolver func(doc *html.Node) StyleResolver
	scheme   SchemeSource
	log      zerolog.Logger
}

func New(opts Options) *Analyzer {
	a := &Analyzer{resolver: opts.Resolver, scheme: opts.Scheme, log: zerolog.Nop()}
	if a.resolver == nil {
		a.resolver = func(doc *html.Node) StyleResolver { return NewCascade(doc) }
	}
	if opts.Logger != nil {
		a.log = *opts.Logger
	}
	return a
}

// Analyze parses file and returns the elements failing a contrast threshold
// in document order. Occurrence counters of sc are advanced for every
// candidate element so identical tags resolve to distinct ranges.
func (a *Analyzer) Analyze(ctx context.Context, file *source.File, sc *pass.ScanContext) (*Report, error) {
	span, ctx := trace.Start(ctx, trace.ScopeAnalyzer, "contrast")
	defer span.End("")

	text := file.Text()
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file.Path, err)
	}
	styles := a.resolver(doc)
	loc := newLocator(text)
	rep := &Report{BodyBackground: White}

	var (
		body  *html.Node
		visit func(n *html.Node) error
	)
	visit = func(n *html.Node) error {
		if n.Type == html.ElementNode && n.Namespace == "" {
			if n.Data == "body" && body == nil {
				body = n
			}
			if textElements[n.Data] {
				if err := ctx.Err(); err != nil {
					return err
				}
				if f, ok := a.check(n, styles, loc, sc, file); ok {
					rep.Findings = append(rep.Findings, f)
				}
			}
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if err := visit(ch); err != nil {
				return err
			}
		}
		return nil
	}
	if err := visit(doc); err != nil {
		return nil, err
	}

	if body != nil {
		if bg, err := styles.EffectiveBackground(body); err == nil {
			rep.BodyBackground = bg
		}
	}
	if len(rep.Findings) > 0 {
		rep.Scheme = a.suggestScheme(ctx, rep.BodyBackground)
		sentence := schemeSentence(rep.Scheme)
		for i := range rep.Findings {
			rep.Findings[i].Suggestion = sentence
		}
	}
	span.WithExtra("findings", strconv.Itoa(len(rep.Findings)))
	return rep, nil
}

func (a *Analyzer) check(n *html.Node, styles StyleResolver, loc *locator, sc *pass.ScanContext, file *source.File) (Finding, bool) {
	pattern := openTagPattern(n)
	ordinal := sc.NextOccurrence("contrast:" + pattern.key())

	if !hasDirectText(n) {
		return Finding{}, false
	}
	content := collapseSpace(textContent(n))
	if content == skipText {
		return Finding{}, false
	}
	fg, err := styles.EffectiveColor(n)
	if err != nil {
		a.log.Debug().Err(err).Str("path", file.Path).Msg("element skipped")
		return Finding{}, false
	}
	bg, err := styles.EffectiveBackground(n)
	if err != nil {
		a.log.Debug().Err(err).Str("path", file.Path).Msg("element skipped")
		return Finding{}, false
	}
	ratio := Ratio(fg, bg)
	size := styles.ResolvedFontSizePx(n)
	fails := Failures(ratio, size)
	if len(fails) == 0 {
		return Finding{}, false
	}
	start, end, ok := loc.locate(pattern, ordinal)
	if !ok {
		a.log.Warn().Str("path", file.Path).Str("tag", n.Data).Int("ordinal", ordinal).Msg("contrast finding not located")
		return Finding{}, false
	}
	return Finding{
		Start:      uint32(start), // #nosec G115 -- offsets into an in-memory document
		End:        uint32(end),   // #nosec G115
		Issue:      issueText(content, ratio, fails),
		Ratio:      ratio,
		Foreground: fg,
		Background: bg,
		Large:      size >= LargeTextPx,
	}, true
}

func (a *Analyzer) suggestScheme(ctx context.Context, bg RGB) []SchemeSuggestion {
	if a.scheme == nil {
		return nil
	}
	colors, err := a.scheme.Suggest(ctx, bg.Hex())
	if err != nil {
		a.log.Debug().Err(err).Str("background", bg.Hex()).Msg("color scheme unavailable")
		return nil
	}
	return buildScheme(colors)
}

func issueText(content string, ratio float64, fails []Threshold) string {
	lines := make([]string, 0, len(fails))
	for _, t := range fails {
		lines = append(lines, fmt.Sprintf(
			"The text '%s' has a color contrast ratio of %.2f, which is below the WCAG minimum for Level %s - %s Text of %s",
			content, ratio, t.Level, t.Size, strconv.FormatFloat(t.Min, 'f', -1, 64)))
	}
	return strings.Join(lines, "\n")
}

// Emit reports the findings of rep against file and returns how many were
// accepted. It stops at the first rejection.
func Emit(file *source.File, rep *Report, r diag.Reporter) int {
	if rep == nil {
		return 0
	}
	n := 0
	for _, f := range rep.Findings {
		sp := source.Span{File: file.ID, Start: f.Start, End: f.End}
		b := diag.ReportWarning(r, diag.ConContrast, sp, f.Issue).WithSource(Citation)
		if f.Suggestion != "" {
			b.WithNote(sp, f.Suggestion)
		}
		if !b.Emit() {
			break
		}
		n++
	}
	return n
}

func hasDirectText(n *html.Node) bool {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.TextNode && strings.TrimSpace(ch.Data) != "" {
			return true
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			walk(ch)
		}
	}
	walk(n)
	return b.String()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
