package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ghAPI "github.com/cli/go-gh/v2/pkg/api"
)

const (
	ResultsPath       = "/api/results"
	ResultsFileHeader = "X-Results-File"
)

// Client fetches results from a running brunoview server.
type Client struct {
	http *http.Client
	base *url.URL
}

type ClientOptions struct {
	Token     string
	Timeout   time.Duration
	Transport http.RoundTripper
}

// NewClient builds a client for the server at baseURL. Host, token and
// transport are always set so no gh configuration is consulted.
func NewClient(baseURL string, opts ClientOptions) (*Client, error) {
	base, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("server url %q: scheme must be http or https", baseURL)
	}

	token := opts.Token
	if token == "" {
		token = "anonymous"
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}

	httpClient, err := ghAPI.NewHTTPClient(ghAPI.ClientOptions{
		Host:               base.Hostname(),
		AuthToken:          token,
		Transport:          transport,
		Timeout:            opts.Timeout,
		SkipDefaultHeaders: true,
		LogIgnoreEnv:       true,
		Headers: map[string]string{
			"Accept": "application/json",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create http client: %w", err)
	}
	return &Client{http: httpClient, base: base}, nil
}

func (c *Client) Describe() string {
	return c.base.String()
}

func (c *Client) endpoint(path string) string {
	return c.base.String() + path
}

// Fetch downloads the raw results document.
func (c *Client) Fetch(ctx context.Context) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(ResultsPath), nil)
	if err != nil {
		return Document{}, fmt.Errorf("build results request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("results request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, ghAPI.HandleHTTPError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, fmt.Errorf("%w: read response: %w", ErrCouldNotLoad, err)
	}

	name := resp.Header.Get(ResultsFileHeader)
	if name == "" {
		name = c.base.Host
	}
	doc, err := parse(name, body)
	if err != nil {
		return Document{}, err
	}
	if n, err := strconv.ParseInt(resp.Header.Get("Content-Length"), 10, 64); err == nil {
		doc.Size = n
	}
	return doc, nil
}
