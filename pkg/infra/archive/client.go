package archive

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/idxget/pkg/domain/model"
	"github.com/m-mizutani/idxget/pkg/domain/types"
)

// Client talks to an HTTP index archive
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// Option is a functional option for Client configuration
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds connecting and waiting for response headers. Reading the
// body is not limited so large files are never cut short. Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout <= 0 {
			return
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.DialContext = (&net.Dialer{
			Timeout:   timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext
		transport.TLSHandshakeTimeout = timeout
		transport.ResponseHeaderTimeout = timeout

		c.httpClient.Transport = transport
		c.httpClient.Timeout = 0
	}
}

// WithUserAgent sets the User-Agent header of every request
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a new archive client
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		userAgent:  "idxget/" + types.Version,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ListDirectory fetches the index page at dirURL and returns its entries
func (c *Client) ListDirectory(ctx context.Context, dirURL string) ([]model.DirectoryEntry, error) {
	resp, err := c.get(ctx, dirURL, types.ErrFetch)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	entries, err := ParseListing(resp.Body)
	if err != nil {
		return nil, goerr.Wrap(types.ErrFetch, "failed to parse index page",
			goerr.V("url", dirURL),
			goerr.V("cause", err.Error()),
		)
	}

	return entries, nil
}

// Open issues a GET for fileURL and returns the body. The caller must close it.
func (c *Client) Open(ctx context.Context, fileURL string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, fileURL, types.ErrDownload)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, rawURL string, kind error) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, goerr.Wrap(kind, "failed to create request",
			goerr.V("url", rawURL),
			goerr.V("cause", err.Error()),
		)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(kind, "failed to send request",
			goerr.V("url", rawURL),
			goerr.V("cause", err.Error()),
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, goerr.Wrap(kind, "unexpected status code",
			goerr.V("url", rawURL),
			goerr.V("status", resp.StatusCode),
		)
	}

	return resp, nil
}
