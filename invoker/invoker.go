package invoker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/curate/metadata-smoke/invoker/vo"
	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
)

const (
	DefaultEndpoint = "https://us-central1-curate-f809d.cloudfunctions.net/extract_metadata"
	DefaultTestURL  = "https://www.example.com"
)

var (
	ErrMissingToken = errors.New("missing id token")
	ErrRequest      = errors.New("request failed")
	ErrDecode       = errors.New("response is not valid JSON")
)

type Invoker interface {
	Invoke(ctx context.Context, idToken string) (*vo.Response, error)
}

// Settings holds the target of the smoke test
type Settings struct {
	Endpoint string
	TestURL  string
}

// DefaultSettings returns the deployed extract function and the fixed test page
func DefaultSettings() *Settings {
	return &Settings{
		Endpoint: DefaultEndpoint,
		TestURL:  DefaultTestURL,
	}
}

type invoker struct {
	logger     *zap.Logger
	httpClient *http.Client
	settings   *Settings
}

func NewInvoker(logger *zap.Logger, httpClient *http.Client, settings *Settings) Invoker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if settings == nil {
		settings = DefaultSettings()
	}
	return &invoker{
		logger:     logger,
		httpClient: httpClient,
		settings:   settings,
	}
}

func (i *invoker) newInvocation(idToken string) vo.Invocation {
	return vo.Invocation{
		IDToken:  idToken,
		Endpoint: i.settings.Endpoint,
		TestURL:  i.settings.TestURL,
	}
}

// Invoke posts the test URL to the extract function once. Any HTTP status is
// a successful invocation; only transport failures are errors.
func (i *invoker) Invoke(ctx context.Context, idToken string) (*vo.Response, error) {
	if idToken == "" {
		return nil, ErrMissingToken
	}
	invocation := i.newInvocation(idToken)

	payload, err := json.Marshal(vo.ExtractRequest{URL: invocation.TestURL})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, invocation.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+invocation.IDToken)

	i.logger.Debug("invoking extract function",
		zap.String("endpoint", invocation.Endpoint),
		zap.String("url", invocation.TestURL),
	)

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %w", ErrRequest, err)
	}

	i.logger.Debug("received response", zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))
	if ce := i.logger.Check(zap.DebugLevel, "response body"); ce != nil {
		var decoded any
		if err := json.Unmarshal(body, &decoded); err == nil {
			ce.Write(zap.String("dump", spew.Sdump(decoded)))
		} else {
			ce.Write(zap.ByteString("raw", body))
		}
	}

	return &vo.Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// Print writes the status code and the indented JSON body. The status lines
// are written before the body is decoded.
func Print(w io.Writer, resp *vo.Response) error {
	if _, err := fmt.Fprintf(w, "Status code: %d\nResponse:\n", resp.StatusCode); err != nil {
		return err
	}

	var indented bytes.Buffer
	if err := json.Indent(&indented, bytes.TrimSpace(resp.Body), "", "  "); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	indented.WriteByte('\n')

	_, err := indented.WriteTo(w)
	return err
}
