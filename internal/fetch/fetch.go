// Package fetch resolves URLs to raw HTML using a two-tier strategy:
// a direct HTTP GET first, escalating to a headless browser render when the
// response looks like a JavaScript placeholder page.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultTimeout bounds the direct HTTP fetch tier.
const DefaultTimeout = 10 * time.Second

// DefaultUserAgent is a realistic browser user agent; several job boards
// serve bot-detection pages to anything less convincing.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

// Method identifies which fetch tier produced a result.
type Method string

// Fetch method constants.
const (
	MethodDirect   Method = "direct"
	MethodRendered Method = "rendered"
)

// Result holds the raw HTML retrieved from a URL. Results are ephemeral and
// never persisted.
type Result struct {
	URL    string
	HTML   string
	Method Method
}

// Error represents a failure of both fetch tiers for a URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// RenderFunc renders a URL in a headless browser and returns the final HTML.
type RenderFunc func(ctx context.Context, url string) (string, error)

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// DirectOnly disables the headless browser tier; a direct-tier miss
	// becomes the final error.
	DirectOnly bool
	// Render overrides the headless browser tier. Nil means chromedp.
	Render RenderFunc
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
	}
}

// Fetch retrieves the HTML content of a URL. It first issues a direct,
// time-bounded GET; if that fails, or the body looks like a JavaScript
// placeholder, it escalates to a headless browser render. An error is
// returned only when the escalation tier also fails, or when DirectOnly
// suppresses it.
func Fetch(ctx context.Context, urlStr string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: urlStr, Message: "invalid URL", Cause: err}
	}

	html, directErr := direct(ctx, urlStr, opts)
	if directErr == nil && !IsJavaScriptPlaceholder(html) {
		return &Result{URL: urlStr, HTML: html, Method: MethodDirect}, nil
	}

	if opts.DirectOnly {
		if directErr != nil {
			return nil, &Error{URL: urlStr, Message: "direct fetch failed", Cause: directErr}
		}
		return nil, &Error{URL: urlStr, Message: "page requires JavaScript rendering"}
	}

	render := opts.Render
	if render == nil {
		render = renderWithBrowser
	}

	rendered, renderErr := render(ctx, urlStr)
	if renderErr != nil {
		return nil, &Error{URL: urlStr, Message: "browser rendering failed", Cause: renderErr}
	}

	return &Result{URL: urlStr, HTML: rendered, Method: MethodRendered}, nil
}

// direct issues the lightweight first-tier GET. The response body is used
// regardless of status code; the placeholder heuristic decides whether the
// content is worth keeping.
func direct(ctx context.Context, urlStr string, opts *Options) (string, error) {
	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	return string(body), nil
}
