package vo

type Markdown string

// Invocation is a single smoke-test call against the extract function.
type Invocation struct {
	IDToken  string
	Endpoint string
	TestURL  string
}

type Response struct {
	StatusCode int
	Body       []byte // raw, undecoded
}

// Metadata is what the extract function returns for a URL.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	URL         string   `json:"url"`
	Keywords    []string `json:"keywords,omitempty"`
}

// ExtractRequest is the body posted to the extract function.
type ExtractRequest struct {
	URL string `json:"url"` // page to extract metadata from
}
