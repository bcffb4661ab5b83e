package research

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/pep299/study-planner/internal/model"
)

// Subtrees that never carry article text
var skippedElements = map[string]bool{
	"script":   true,
	"style":    true,
	"nav":      true,
	"footer":   true,
	"header":   true,
	"aside":    true,
	"noscript": true,
}

// parseSearchResults reads a DuckDuckGo-style HTML listing.
func parseSearchResults(doc *html.Node, maxResults int) []model.SearchResult {
	var results []model.SearchResult

	for _, block := range findAll(doc, withClass("result")) {
		if maxResults > 0 && len(results) >= maxResults {
			break
		}

		titleEl := findFirst(block, withClass("result__title"))
		var title, href string
		if titleEl != nil {
			title = collapseSpaces(textOf(titleEl))
			if link := findFirst(titleEl, isElement("a")); link != nil {
				href = attr(link, "href")
			}
		}
		if href == "" {
			if link := findFirst(block, withClass("result__a")); link != nil {
				href = attr(link, "href")
			}
		}

		target, ok := resolveResultURL(href)
		if !ok {
			continue
		}
		if title == "" {
			title = "Unknown Title"
		}

		source := "Unknown Source"
		if el := findFirst(block, withClass("result__url")); el != nil {
			if s := collapseSpaces(textOf(el)); s != "" {
				source = s
			}
		}
		var snippet string
		if el := findFirst(block, withClass("result__snippet")); el != nil {
			snippet = collapseSpaces(textOf(el))
		}

		results = append(results, model.SearchResult{
			Title:   title,
			URL:     target,
			Snippet: snippet,
			Source:  source,
		})
	}
	return results
}

// resolveResultURL unwraps redirect links (/l/?uddg=<target>) and accepts only
// absolute http(s) URLs.
func resolveResultURL(href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" {
		return "", false
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if strings.HasPrefix(u.Path, "/l/") || u.Path == "/l" {
		target := u.Query().Get("uddg")
		if target == "" {
			return "", false
		}
		if u, err = url.Parse(target); err != nil {
			return "", false
		}
	}

	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	return u.String(), true
}

// ExtractText returns the visible text of a page, one trimmed chunk per line.
func ExtractText(doc *html.Node) string {
	var chunks []string

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			for _, line := range strings.Split(n.Data, "\n") {
				for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
					if phrase = strings.TrimSpace(phrase); phrase != "" {
						chunks = append(chunks, phrase)
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	return strings.Join(chunks, "\n")
}

type nodeMatcher func(*html.Node) bool

func isElement(tag string) nodeMatcher {
	return func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == tag
	}
}

func withClass(class string) nodeMatcher {
	return func(n *html.Node) bool {
		if n.Type != html.ElementNode {
			return false
		}
		for _, c := range strings.Fields(attr(n, "class")) {
			if c == class {
				return true
			}
		}
		return false
	}
}

func findFirst(n *html.Node, match nodeMatcher) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			return child
		}
		if found := findFirst(child, match); found != nil {
			return found
		}
	}
	return nil
}

// findAll does not descend into matched nodes.
func findAll(n *html.Node, match nodeMatcher) []*html.Node {
	var out []*html.Node
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if match(child) {
			out = append(out, child)
			continue
		}
		out = append(out, findAll(child, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
