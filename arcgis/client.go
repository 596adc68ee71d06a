package arcgis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kilianp07/telework/config"
	"github.com/kilianp07/telework/infra/logger"
)

// Client talks to the ArcGIS Online REST services used by the commute
// pipeline: the portal, the World Geocoding Service, the routing utilities
// and the spatial analysis service.
type Client struct {
	cfg          config.ArcGISConfig
	http         *http.Client
	tokens       TokenSource
	log          logger.Logger
	pollInterval time.Duration
	jobTimeout   time.Duration
}

// Option customises a Client.
type Option func(*Client)

// WithPollInterval overrides the job polling interval.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithLogger replaces the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient creates a client for the endpoints in cfg. A nil http client
// uses one with cfg's HTTP timeout.
func NewClient(cfg config.ArcGISConfig, tokens TokenSource, httpClient *http.Client, opts ...Option) *Client {
	cfg.SetDefaults()
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout()}
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	c := &Client{
		cfg:          cfg,
		http:         httpClient,
		tokens:       tokens,
		log:          logger.New("arcgis-client"),
		pollInterval: cfg.PollInterval(),
		jobTimeout:   cfg.JobTimeout(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BatchSize returns the configured geocoding batch size.
func (c *Client) BatchSize() int { return c.cfg.BatchSize }

// call sends an authenticated request and decodes the JSON response into
// out. A token error triggers a single refresh and retry.
func (c *Client) call(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	tok, err := c.tokens.Token(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}
	err = c.send(ctx, method, endpoint, withToken(params, tok), out)
	if !errors.Is(err, ErrTokenExpired) {
		return err
	}
	c.log.Warnf("token rejected by %s, refreshing", endpoint)
	tok, rerr := c.tokens.Refresh(ctx)
	if rerr != nil {
		return fmt.Errorf("refresh token: %w", rerr)
	}
	return c.send(ctx, method, endpoint, withToken(params, tok), out)
}

// send performs one request. GET requests carry params in the query string
// and POST requests in a form body. Every request asks for f=json.
func (c *Client) send(ctx context.Context, method, endpoint string, params url.Values, out any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("f", "json")

	var (
		req *http.Request
		err error
	)
	switch method {
	case http.MethodGet:
		sep := "?"
		if strings.Contains(endpoint, "?") {
			sep = "&"
		}
		req, err = http.NewRequestWithContext(ctx, method, endpoint+sep+q.Encode(), nil)
	case http.MethodPost:
		req, err = http.NewRequestWithContext(ctx, method, endpoint, strings.NewReader(q.Encode()))
		if req != nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	default:
		return fmt.Errorf("unsupported method %s", method)
	}
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d, body: %s", resp.StatusCode, truncate(body, 512))
	}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if err := env.err(); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func withToken(params url.Values, token string) url.Values {
	out := url.Values{}
	for k, v := range params {
		out[k] = v
	}
	if token != "" {
		out.Set("token", token)
	}
	return out
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
