package tio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/klauspost/compress/gzip"

	"github.com/wyg1997/tino/config"
	"github.com/wyg1997/tino/internal/domain"
	"github.com/wyg1997/tino/pkg/logger"
)

// LanguageInfo describes one entry of languages.json
type LanguageInfo struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
	Encoding   string   `json:"encoding"`
	Link       string   `json:"link"`
}

// Client talks to the tio.run HTTP API
type Client struct {
	apiURL       string
	languagesURL string
	httpClient   *http.Client
	log          logger.Logger
}

// NewClient creates a tio.run client. httpClient carries timeout and proxy
// settings; nil uses a client with the configured timeout.
func NewClient(cfg *config.TioConfig, httpClient *http.Client, log logger.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiURL:       cfg.APIURL,
		languagesURL: cfg.LanguagesURL,
		httpClient:   httpClient,
		log:          log.With("tio"),
	}
}

var _ domain.ExecutionClient = (*Client)(nil)

// Catalog fetches languages.json keyed by language identifier
func (c *Client) Catalog(ctx context.Context) (map[string]LanguageInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.languagesURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create languages request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch languages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	var catalog map[string]LanguageInfo
	if err := json.NewDecoder(resp.Body).Decode(&catalog); err != nil {
		return nil, fmt.Errorf("decode languages: %w", err)
	}

	c.log.Debug("Fetched %d languages from %s", len(catalog), c.languagesURL)
	return catalog, nil
}

// Languages returns the sorted language identifiers
func (c *Client) Languages(ctx context.Context) ([]string, error) {
	catalog, err := c.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(catalog))
	for id := range catalog {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Execute runs req's code with its input, flags and arguments
func (c *Client) Execute(ctx context.Context, req domain.ExecutionRequest) (*domain.ExecutionResult, error) {
	return c.Run(ctx, ExecOptions{
		Language:      req.LanguageID,
		Code:          req.SourceCode,
		Input:         req.Input,
		CompilerFlags: req.CompilerFlags,
		Options:       req.Options,
		Args:          req.Args,
	})
}

// Run posts one execution to the run API
func (c *Client) Run(ctx context.Context, opts ExecOptions) (*domain.ExecutionResult, error) {
	body, err := encodeRequest(opts)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create run request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("run request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	decoded, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	result, err := parseResponse(string(decoded))
	if err != nil {
		c.log.Debug("Unexpected run response for %s: %q", opts.Language, decoded)
		return nil, err
	}
	return result, nil
}

// readBody returns the decompressed response. The body is gzip without a
// Content-Encoding header; the transport has already inflated it when the
// header was present.
func readBody(resp *http.Response) ([]byte, error) {
	if resp.Uncompressed {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read run response: %w", err)
		}
		return body, nil
	}

	zr, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResult, err)
	}
	defer zr.Close()

	body, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("read run response: %w", err)
	}
	return body, nil
}
