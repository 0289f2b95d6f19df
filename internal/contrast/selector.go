package contrast

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// parseSelectorList compiles a rule prelude. A list with any selector the
// engine cannot parse (pseudo-elements, unknown pseudo-classes) invalidates
// the whole rule, as in browsers.
func parseSelectorList(text string) cascadia.SelectorGroup {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	group, err := cascadia.ParseGroup(text)
	if err != nil {
		return nil
	}
	return group
}

// matchSpecificity returns the highest specificity among the selectors of a
// rule that match n.
func matchSpecificity(group cascadia.SelectorGroup, n *html.Node) (cascadia.Specificity, bool) {
	var (
		best    cascadia.Specificity
		matched bool
	)
	for _, sel := range group {
		if !sel.Match(n) {
			continue
		}
		if sp := sel.Specificity(); !matched || best.Less(sp) {
			best = sp
		}
		matched = true
	}
	return best, matched
}

func elementParent(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode {
			return p
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}
