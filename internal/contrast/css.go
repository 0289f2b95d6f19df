package contrast

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/gorilla/css/scanner"
)

type declaration struct {
	prop      string
	value     string
	important bool
}

type cssRule struct {
	selectors cascadia.SelectorGroup
	decls     []declaration
	order     int
}

// parseDeclarations reads "prop: value; ..." as found in style attributes
// and rule bodies. Declarations without a property or colon are dropped.
func parseDeclarations(text string) []declaration {
	const (
		wantProp = iota
		wantColon
		inValue
		skipping
	)
	var (
		out   []declaration
		prop  string
		value strings.Builder
		state = wantProp
		depth = 0
	)
	flush := func() {
		if state == inValue && prop != "" {
			v, important := splitImportant(strings.TrimSpace(value.String()))
			if v != "" {
				out = append(out, declaration{prop: prop, value: v, important: important})
			}
		}
		prop = ""
		value.Reset()
		state = wantProp
		depth = 0
	}

	s := scanner.New(text)
	for {
		tok := s.Next()
		if tok.Type == scanner.TokenEOF || tok.Type == scanner.TokenError {
			flush()
			return out
		}
		if tok.Type == scanner.TokenComment {
			continue
		}
		if tok.Type == scanner.TokenChar && tok.Value == ";" && depth == 0 {
			flush()
			continue
		}
		switch state {
		case wantProp:
			switch tok.Type {
			case scanner.TokenS:
			case scanner.TokenIdent:
				prop = strings.ToLower(tok.Value)
				state = wantColon
			default:
				state = skipping
			}
		case wantColon:
			switch {
			case tok.Type == scanner.TokenS:
			case tok.Type == scanner.TokenChar && tok.Value == ":":
				state = inValue
			default:
				state = skipping
			}
		case inValue:
			switch {
			case tok.Type == scanner.TokenS:
				value.WriteByte(' ')
				continue
			case tok.Type == scanner.TokenFunction:
				depth++
			case tok.Type == scanner.TokenChar && tok.Value == "(":
				depth++
			case tok.Type == scanner.TokenChar && tok.Value == ")":
				if depth > 0 {
					depth--
				}
			}
			value.WriteString(tok.Value)
		}
	}
}

func splitImportant(v string) (string, bool) {
	lower := strings.ToLower(v)
	if !strings.HasSuffix(lower, "important") {
		return v, false
	}
	rest := strings.TrimSpace(v[:len(v)-len("important")])
	if !strings.HasSuffix(rest, "!") {
		return v, false
	}
	return strings.TrimSpace(rest[:len(rest)-1]), true
}

// parseStylesheet extracts style rules from a <style> body. At-rules are
// skipped together with their blocks. order numbers rules across sheets.
func parseStylesheet(text string, order *int) []cssRule {
	var (
		rules   []cssRule
		prelude strings.Builder
	)
	s := scanner.New(text)
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return rules
		case scanner.TokenComment, scanner.TokenCDO, scanner.TokenCDC, scanner.TokenBOM:
			continue
		case scanner.TokenAtKeyword:
			skipAtRule(s)
			prelude.Reset()
			continue
		case scanner.TokenChar:
			if tok.Value == "{" {
				body := readBlock(s)
				if sels := parseSelectorList(prelude.String()); len(sels) > 0 {
					rules = append(rules, cssRule{selectors: sels, decls: parseDeclarations(body), order: *order})
					*order++
				}
				prelude.Reset()
				continue
			}
		}
		prelude.WriteString(tok.Value)
	}
}

// readBlock returns the text up to the "}" closing an already opened block.
func readBlock(s *scanner.Scanner) string {
	var b strings.Builder
	depth := 1
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return b.String()
		case scanner.TokenComment:
			continue
		case scanner.TokenChar:
			switch tok.Value {
			case "{":
				depth++
			case "}":
				depth--
				if depth == 0 {
					return b.String()
				}
			}
		}
		b.WriteString(tok.Value)
	}
}

func skipAtRule(s *scanner.Scanner) {
	for {
		tok := s.Next()
		switch tok.Type {
		case scanner.TokenEOF, scanner.TokenError:
			return
		case scanner.TokenChar:
			switch tok.Value {
			case ";":
				return
			case "{":
				readBlock(s)
				return
			}
		}
	}
}
