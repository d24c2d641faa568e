package scrape

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

func findNodeByTag(n *html.Node, tag string) (*html.Node, error) {
	if n.Type == html.ElementNode && n.Data == tag {
		return n, nil
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if result, err := findNodeByTag(c, tag); err == nil {
			return result, nil
		}
	}

	return nil, fmt.Errorf("element with tag '%s' not found", tag)
}

// extractTitle extracts the title from the HTML document
func extractTitle(doc *html.Node) string {
	var title string
	var findTitle func(*html.Node) bool

	findTitle = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "svg" {
			// svg carries its own <title> elements
			return false
		}
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if findTitle(c) {
				return true
			}
		}
		return false
	}

	findTitle(doc)
	return title
}

// extractMeta returns the content of the first <meta> whose key attribute
// (name or property) equals value.
func extractMeta(doc *html.Node, key, value string) string {
	var content string
	var findMeta func(*html.Node) bool

	findMeta = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "meta" {
			var matched bool
			var val string
			for _, attr := range n.Attr {
				if attr.Key == key && strings.EqualFold(attr.Val, value) {
					matched = true
				}
				if attr.Key == "content" {
					val = attr.Val
				}
			}
			if matched && strings.TrimSpace(val) != "" {
				content = strings.TrimSpace(val)
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if findMeta(c) {
				return true
			}
		}
		return false
	}

	findMeta(doc)
	return content
}

// extractMetaDescription extracts the meta description from the HTML document
func extractMetaDescription(doc *html.Node) string {
	return extractMeta(doc, "name", "description")
}

// extractMetaProperty reads Open Graph style <meta property="..."> tags
func extractMetaProperty(doc *html.Node, property string) string {
	return extractMeta(doc, "property", property)
}

// extractMetaKeywords extracts the meta keywords from the HTML document
func extractMetaKeywords(doc *html.Node) []string {
	content := extractMeta(doc, "name", "keywords")
	if content == "" {
		return nil
	}

	var keywords []string
	for _, keyword := range strings.Split(content, ",") {
		trimmed := strings.TrimSpace(keyword)
		if trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}
	return keywords
}
