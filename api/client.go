// Package api provides the HTTP client that submits delivery and open
// events to the reporting backend. It implements worker.Submitter, so it
// plugs straight into a Reporter:
//
//	c := api.NewClient("https://reporting.example.com")
//	r, err := reporting.New(
//	    reporting.WithStore(store),
//	    reporting.WithSubmitter(c),
//	)
//
// Responses drive the retry classifier: server-side failures and
// throttling come back as plain errors so the scheduler retries them,
// while client-side rejections are marked unrecoverable and the report
// is dropped.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pushkit/reporting/classify"
	"github.com/pushkit/reporting/event"
	"github.com/pushkit/reporting/payload"
	"github.com/pushkit/reporting/worker"
)

const defaultTimeout = 30 * time.Second

// Compile-time interface check.
var _ worker.Submitter = (*Client)(nil)

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient sets a custom *http.Client. The default has a 30s
// timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client submits events to the reporting backend over HTTPS.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	logger    *slog.Logger
}

// NewClient creates a Client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   baseURL,
		userAgent: "pushkit-reporting/1.0",
		http:      &http.Client{Timeout: defaultTimeout},
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Submit sends one event to the backend and blocks until the backend
// answers. A nil return means the event was accepted. Errors wrapped by
// classify.Unrecoverable mean the backend will never accept this event;
// all other errors are worth retrying.
func (c *Client) Submit(ctx context.Context, ev event.Event) error {
	f := ev.Common()
	endpoint := fmt.Sprintf("%s/reporting_api/v2/instances/%s/events",
		c.baseURL, url.PathEscape(f.InstanceID))

	body, err := json.Marshal(payload.Encode(ev))
	if err != nil {
		return classify.Unrecoverable(fmt.Errorf("reporting/api: encode event: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return classify.Unrecoverable(fmt.Errorf("reporting/api: build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		// Network failures are transient from the caller's point of view.
		return fmt.Errorf("reporting/api: submit event: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	snippet := readSnippet(resp.Body)
	err = fmt.Errorf("reporting/api: backend returned %d: %s", resp.StatusCode, snippet)

	switch {
	case resp.StatusCode == http.StatusRequestTimeout,
		resp.StatusCode == http.StatusTooManyRequests:
		// Throttling and timeouts clear up on their own.
		return err
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		// The backend rejected the event itself; resending the same
		// bytes can never succeed.
		return classify.Unrecoverable(err)
	default:
		return err
	}
}

// readSnippet returns a short prefix of the response body for error
// messages.
func readSnippet(r io.Reader) string {
	b, err := io.ReadAll(io.LimitReader(r, 256))
	if err != nil || len(b) == 0 {
		return "<no body>"
	}
	return string(b)
}
