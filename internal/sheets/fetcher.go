// Package sheets talks to the external spreadsheet: CSV export endpoints
// for reads and the script endpoint for appends. It is the only package
// that touches the network.
package sheets

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/miidani/field-server/internal/csvscan"
)

// Client fetches CSV feeds and forwards submissions. A single attempt is
// made per call; callers decide when to re-fetch.
type Client struct {
	http      *http.Client
	scriptURL string
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// NewClient creates a sheet client. timeout bounds each request; zero
// means no timeout, matching the browser behavior the feeds were built
// against.
func NewClient(scriptURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		http:      &http.Client{Timeout: timeout},
		scriptURL: scriptURL,
		logger:    logger,
		now:       time.Now,
	}
}

// FetchCSV issues a cache-busted GET against a CSV export endpoint and
// returns the parsed rows, header included.
//
// Failure taxonomy: *HTTPError for a non-2xx status, *AccessError when
// the body is an HTML sign-in page (sheet sharing disabled), and a
// wrapped transport error otherwise. Nothing is swallowed here; call
// sites may still choose to degrade to an empty result.
func (c *Client) FetchCSV(ctx context.Context, rawURL string) ([][]string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse sheet url: %w", err)
	}

	// Cache-busting timestamp defeats intermediary caching on top of the
	// no-store request header.
	q := u.Query()
	q.Set("t", strconv.FormatInt(c.now().UnixMilli(), 10))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet csv: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{URL: rawURL, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sheet response: %w", err)
	}

	text := string(body)
	if looksLikeSignInPage(text) {
		return nil, &AccessError{URL: rawURL}
	}

	rows := csvscan.Parse(text)
	c.logger.Debugw("Fetched sheet CSV", "url", rawURL, "rows", len(rows))
	return rows, nil
}

// looksLikeSignInPage sniffs the response body for HTML markers. A
// permission-locked sheet answers 200 with a login page instead of CSV,
// and a CSV export never starts with an HTML document.
func looksLikeSignInPage(body string) bool {
	head := strings.ToLower(strings.TrimSpace(body))
	if len(head) > 2048 {
		head = head[:2048]
	}
	return strings.Contains(head, "<!doctype html") ||
		strings.Contains(head, "<html") ||
		strings.Contains(head, "accounts.google.com/servicelogin")
}
