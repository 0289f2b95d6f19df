package validate

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ably/internal/diag"
	"ably/internal/source"
	"ably/internal/wcag"
)

// maxEnrichers bounds concurrent caption lookups of one pass.
const maxEnrichers = 8

var (
	imgTagRE = regexp.MustCompile(`<img[^>]*>`)
	imgSrcRE = regexp.MustCompile("(?i)src\\s*=\\s*['\"`](.*?)['\"`]")
)

// W3CFinding is a Nu message resolved against the W3C dictionary.
type W3CFinding struct {
	Message    W3CMessage
	Mapping    wcag.RuleMapping
	Suggestion string
}

// ResolveW3C looks up every message and enriches missing-alt findings with a
// caption. Messages are processed concurrently; the result keeps message order
// and leaves out unmapped messages. captioner may be nil.
func ResolveW3C(ctx context.Context, file *source.File, msgs []W3CMessage, captioner Captioner, logger *zerolog.Logger) []W3CFinding {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	resolved := make([]*W3CFinding, len(msgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxEnrichers)
	for i, m := range msgs {
		i, m := i, m
		g.Go(func() error {
			mapping, ok := wcag.LookupW3C(m.Message)
			if !ok {
				return nil
			}
			f := &W3CFinding{Message: m, Mapping: mapping, Suggestion: mapping.Suggestion}
			if mapping.NeedsImageCaption() && captioner != nil {
				if src, ok := imageSource(m.Extract); ok {
					alt := captioner.SuggestAltText(gctx, ImageRef{Src: src, Dir: file.Dir()})
					f.Suggestion = wcag.ImageAltPrefix + alt
				} else {
					logger.Debug().Str("extract", m.Extract).Msg("no image source in extract")
				}
			}
			resolved[i] = f
			return nil
		})
	}
	_ = g.Wait() // tasks never fail

	out := make([]W3CFinding, 0, len(msgs))
	for _, f := range resolved {
		if f != nil {
			out = append(out, *f)
		}
	}
	return out
}

// imageSource extracts the src of the first <img> tag in a Nu extract.
func imageSource(extract string) (string, bool) {
	tag := imgTagRE.FindString(extract)
	if tag == "" {
		return "", false
	}
	m := imgSrcRE.FindStringSubmatch(tag)
	if m == nil || m[1] == "" {
		return "", false
	}
	return m[1], true
}

// W3CRange returns the editor range of a Nu message without the outer angle
// brackets of the extract: Nu columns are 1-based and inclusive, so
// firstColumn is the character after '<' and lastColumn-1 is the '>'. A
// missing firstLine means the message sits on lastLine.
func W3CRange(m W3CMessage) (start, end source.Position) {
	first := m.FirstLine
	if first == 0 {
		first = m.LastLine
	}
	start = source.Position{Line: first - 1, Character: m.FirstColumn}
	end = source.Position{Line: m.LastLine - 1, Character: max(m.LastColumn, 1) - 1}
	if first == m.LastLine && end.Character < start.Character {
		end.Character = start.Character
	}
	return start, end
}

// EmitW3C reports resolved findings in order and returns how many were
// accepted. It stops at the first rejection.
func EmitW3C(file *source.File, findings []W3CFinding, r diag.Reporter) int {
	accepted := 0
	for _, f := range findings {
		start, end := W3CRange(f.Message)
		sp := rangeSpan(file, start, end)
		ok := diag.ReportWarning(r, diag.W3CMapped, sp, f.Mapping.ErrorMessage).
			WithSource(f.Mapping.Citation).
			WithNote(sp, f.Suggestion).
			Emit()
		if !ok {
			break
		}
		accepted++
	}
	return accepted
}
