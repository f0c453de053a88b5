// internal/poller/httpjson/client.go
package httpjson

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/http2"
)

// DefaultMaxBodyBytes caps response bodies.
const DefaultMaxBodyBytes int64 = 1 << 20

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("httpjson: GET %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("httpjson: GET %s: HTTP %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client implements poller.Client over HTTP/1.1 and HTTP/2.
// It carries no state between requests.
type Client struct {
	http         *http.Client
	maxBodyBytes int64
}

// Config is minimal transport config.
type Config struct {
	// DialTimeout bounds connection setup. Request deadlines come from ctx.
	DialTimeout  time.Duration
	MaxBodyBytes int64

	// HTTPClient replaces the built transport when set (tests, proxies).
	HTTPClient *http.Client
}

// New creates a client whose transport negotiates HTTP/2 over TLS.
func New(cfg Config) (*Client, error) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	if cfg.HTTPClient != nil {
		return &Client{http: cfg.HTTPClient, maxBodyBytes: cfg.MaxBodyBytes}, nil
	}

	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.DialTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:       &tls.Config{MinVersion: tls.VersionTLS12},
		TLSHandshakeTimeout:   cfg.DialTimeout,
		IdleConnTimeout:       90 * time.Second,
		ExpectContinueTimeout: time.Second,
		MaxIdleConnsPerHost:   2,
	}
	if err := http2.ConfigureTransport(tr); err != nil {
		return nil, fmt.Errorf("httpjson: configure http2: %w", err)
	}

	return &Client{
		http:         &http.Client{Transport: tr},
		maxBodyBytes: cfg.MaxBodyBytes,
	}, nil
}

// GetJSON fetches url with the given User-Agent and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, url, userAgent string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("httpjson: build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("httpjson: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	body := io.LimitReader(resp.Body, c.maxBodyBytes)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(body, 512))
		return &StatusError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("httpjson: GET %s: empty body", url)
		}
		return fmt.Errorf("httpjson: decode %s: %w", url, err)
	}

	return nil
}
