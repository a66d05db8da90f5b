package check

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/kxue43/tech-blog/models"
)

// postSelectors are the structural selectors every rendered post page must
// satisfy. They pin down the layout contract: a titled document containing
// a single dated article with its body in a known container.
var postSelectors = mustSelectors(
	"html > head > title",
	"article.post",
	"h1.post-title",
	"time[datetime]",
	"div.post-content",
)

// indexSelectors are the structural selectors for the front page.
var indexSelectors = mustSelectors(
	"html > head > title",
	"ul.post-list",
	"a.post-link",
)

type namedSelector struct {
	text string
	sel  cascadia.Selector
}

func mustSelectors(texts ...string) []namedSelector {
	out := make([]namedSelector, len(texts))
	for i, t := range texts {
		out[i] = namedSelector{text: t, sel: cascadia.MustCompile(t)}
	}
	return out
}

// checkStructure parses a rendered page and asserts each required selector
// matches at least one element.
func checkStructure(pageHTML, page string, selectors []namedSelector) models.StructureResult {
	result := models.StructureResult{Page: page, OK: true}

	doc, err := html.Parse(strings.NewReader(pageHTML))
	if err != nil {
		result.OK = false
		result.Missing = []string{"(unparsable HTML: " + err.Error() + ")"}
		return result
	}

	for _, ns := range selectors {
		if ns.sel.MatchFirst(doc) == nil {
			result.OK = false
			result.Missing = append(result.Missing, ns.text)
		}
	}
	return result
}
