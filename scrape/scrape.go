package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/curate/metadata-smoke/invoker/vo"
	"golang.org/x/net/html"
)

const maxDescriptionRunes = 200

// Scrape downloads pageURL and extracts its link-preview metadata together
// with a markdown rendering of the main content.
func Scrape(ctx context.Context, client *http.Client, pageURL string) (*vo.Metadata, vo.Markdown, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download HTML: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP request failed with status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read response body: %w", err)
	}

	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var markdown vo.Markdown
	if contentNode := extractContentNode(doc); contentNode != nil {
		markdownBytes, err := htmltomarkdown.ConvertNode(contentNode)
		if err != nil {
			return nil, "", fmt.Errorf("failed to convert HTML to markdown: %w", err)
		}
		markdown = vo.Markdown(markdownBytes)
	}

	metadata := &vo.Metadata{
		Title:       extractTitle(doc),
		Description: extractMetaDescription(doc),
		Image:       resolveURL(pageURL, extractMetaProperty(doc, "og:image")),
		URL:         pageURL,
		Keywords:    extractMetaKeywords(doc),
	}
	if metadata.Title == "" {
		metadata.Title = extractMetaProperty(doc, "og:title")
	}
	if metadata.Description == "" {
		metadata.Description = extractMetaProperty(doc, "og:description")
	}
	if metadata.Description == "" {
		metadata.Description = firstParagraph(markdown)
	}

	return metadata, markdown, nil
}

// extractContentNode prefers <main> and falls back to <body>
func extractContentNode(doc *html.Node) *html.Node {
	if node, err := findNodeByTag(doc, "main"); err == nil {
		return node
	}
	if node, err := findNodeByTag(doc, "body"); err == nil {
		return node
	}
	return nil
}

// firstParagraph returns the first prose line of markdown, skipping headings,
// list items and images.
func firstParagraph(markdown vo.Markdown) string {
	for _, line := range strings.Split(string(markdown), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch line[0] {
		case '#', '-', '*', '!', '>', '|':
			continue
		}
		return truncate(line, maxDescriptionRunes)
	}
	return ""
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return strings.TrimSpace(string(runes[:n])) + "…"
}

func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
