package scrape

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/curate/metadata-smoke/invoker/vo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const examplePage = `<!doctype html>
<html>
<head>
  <title> Example Domain </title>
  <meta name="description" content="An example page.">
  <meta name="keywords" content="example, , domain ,test">
  <meta property="og:image" content="/img/logo.png">
</head>
<body>
  <nav>skip me</nav>
  <main>
    <h1>Example Domain</h1>
    <p>This domain is for use in illustrative examples.</p>
  </main>
</body>
</html>`

const openGraphPage = `<html>
<head>
  <meta property="og:title" content="OG Title">
</head>
<body>
  <h1>Heading</h1>
  <p>First paragraph text.</p>
  <p>Second paragraph text.</p>
  <svg><title>icon</title></svg>
</body>
</html>`

func newSite(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/example", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(examplePage))
	})
	mux.HandleFunc("/og", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(openGraphPage))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestScrape(t *testing.T) {
	site := newSite(t)

	metadata, markdown, err := Scrape(context.Background(), site.Client(), site.URL+"/example")
	require.NoError(t, err)

	assert.Equal(t, "Example Domain", metadata.Title)
	assert.Equal(t, "An example page.", metadata.Description)
	assert.Equal(t, site.URL+"/img/logo.png", metadata.Image)
	assert.Equal(t, site.URL+"/example", metadata.URL)
	assert.Equal(t, []string{"example", "domain", "test"}, metadata.Keywords)

	assert.Contains(t, string(markdown), "Example Domain")
	assert.Contains(t, string(markdown), "This domain is for use in illustrative examples.")
	assert.NotContains(t, string(markdown), "skip me")
}

func TestScrapeOpenGraphFallbacks(t *testing.T) {
	site := newSite(t)

	metadata, _, err := Scrape(context.Background(), nil, site.URL+"/og")
	require.NoError(t, err)

	assert.Equal(t, "OG Title", metadata.Title)
	assert.Equal(t, "First paragraph text.", metadata.Description)
	assert.Empty(t, metadata.Image)
	assert.Nil(t, metadata.Keywords)
}

func TestScrapeNotFound(t *testing.T) {
	site := newSite(t)

	_, _, err := Scrape(context.Background(), site.Client(), site.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 404")
}

func TestFirstParagraph(t *testing.T) {
	markdown := vo.Markdown("# Title\n\n- item\n\n![img](x.png)\n\n  Actual prose.  \n\nMore.")
	assert.Equal(t, "Actual prose.", firstParagraph(markdown))
	assert.Empty(t, firstParagraph(""))

	long := vo.Markdown(strings.Repeat("ä", maxDescriptionRunes+10))
	assert.Equal(t, strings.Repeat("ä", maxDescriptionRunes)+"…", firstParagraph(long))
}
