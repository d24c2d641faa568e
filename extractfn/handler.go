// Package extractfn serves the extract_metadata contract in-process: bearer
// authentication, a JSON {"url": ...} body and link-preview metadata in the
// response, falling back to the URL's host name when the page can't be read.
package extractfn

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/curate/metadata-smoke/invoker/vo"
	"github.com/curate/metadata-smoke/scrape"
	"go.uber.org/zap"
)

const unauthenticated = "User must be authenticated"

// TokenVerifier accepts or rejects a bearer token
type TokenVerifier func(ctx context.Context, idToken string) error

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	logger     *zap.Logger
	httpClient *http.Client
	verify     TokenVerifier
}

// NewHandler returns the extract function handler. A nil verifier accepts any
// non-empty token.
func NewHandler(logger *zap.Logger, httpClient *http.Client, verify TokenVerifier) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if verify == nil {
		verify = func(context.Context, string) error { return nil }
	}
	return &handler{
		logger:     logger,
		httpClient: httpClient,
		verify:     verify,
	}
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "Method not allowed"})
		return
	}

	idToken, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: unauthenticated})
		return
	}
	if err := h.verify(r.Context(), idToken); err != nil {
		h.logger.Info("rejected token", zap.Error(err))
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: unauthenticated})
		return
	}

	var req vo.ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.URL) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "URL is required"})
		return
	}

	metadata, _, err := scrape.Scrape(r.Context(), h.httpClient, req.URL)
	if err != nil {
		h.logger.Warn("metadata extraction failed, returning basic url info",
			zap.String("url", req.URL),
			zap.Error(err),
		)
		metadata = fallbackMetadata(req.URL)
	}

	writeJSON(w, http.StatusOK, metadata)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func fallbackMetadata(rawURL string) *vo.Metadata {
	title := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Hostname() != "" {
		title = u.Hostname()
	}
	return &vo.Metadata{
		Title: title,
		URL:   rawURL,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
