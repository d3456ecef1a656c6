// Package httpsource fetches content and directory listings over HTTP.
package httpsource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Ensure Source implements the content ports.
var (
	_ driven.ContentSource   = (*Source)(nil)
	_ driven.DirectoryLister = (*Source)(nil)
)

const (
	// DefaultTimeout is the default timeout for HTTP requests.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum allowed response size (32MB).
	MaxResponseSize = 32 * 1024 * 1024

	// DefaultListingIndex is the file a directory listing is read from.
	DefaultListingIndex = "index.json"

	// UserAgent is the user agent string for HTTP requests.
	UserAgent = "rulebook/1.0"

	headerRateRemaining = "X-RateLimit-Remaining"
)

// Source reads paths relative to a root URL.
type Source struct {
	client  *http.Client
	root    string
	index   string
	maxSize int64
}

// Option configures a Source.
type Option func(*Source)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) {
		s.client = c
	}
}

// WithTimeout sets the per-request timeout of the default client.
func WithTimeout(d time.Duration) Option {
	return func(s *Source) {
		if d > 0 {
			s.client.Timeout = d
		}
	}
}

// WithListingIndex sets the file name a directory listing is read from.
func WithListingIndex(name string) Option {
	return func(s *Source) {
		s.index = name
	}
}

// WithMaxSize bounds response bodies.
func WithMaxSize(n int64) Option {
	return func(s *Source) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// New creates a source rooted at root.
func New(root string, opts ...Option) *Source {
	s := &Source{
		client:  &http.Client{Timeout: DefaultTimeout},
		root:    strings.TrimSuffix(root, "/"),
		index:   DefaultListingIndex,
		maxSize: MaxResponseSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Root returns the root URL.
func (s *Source) Root() string {
	return s.root
}

// URL resolves p against the root. Absolute URLs are returned unchanged.
func (s *Source) URL(p string) string {
	if u, err := url.Parse(p); err == nil && u.IsAbs() {
		return p
	}
	return s.root + "/" + strings.TrimPrefix(p, "/")
}

// Get fetches the payload at p.
func (s *Source) Get(ctx context.Context, p string) ([]byte, error) {
	target := s.URL(p)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &domain.FetchError{Path: target, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Path: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if err := statusError(target, resp); err != nil {
		return nil, err
	}

	if resp.ContentLength > s.maxSize {
		return nil, &domain.FetchError{Path: target, Err: fmt.Errorf("response size %d exceeds limit %d", resp.ContentLength, s.maxSize)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxSize+1))
	if err != nil {
		return nil, &domain.FetchError{Path: target, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > s.maxSize {
		return nil, &domain.FetchError{Path: target, Err: fmt.Errorf("response exceeds limit %d", s.maxSize)}
	}
	return body, nil
}

// List reads the JSON listing index of directory p. The index is an array
// of {"name", "type"} objects, the shape the GitHub contents API returns.
func (s *Source) List(ctx context.Context, p string) ([]domain.ListingEntry, error) {
	listing := strings.TrimSuffix(p, "/") + "/" + s.index
	raw, err := s.Get(ctx, listing)
	if err != nil {
		return nil, err
	}
	var entries []domain.ListingEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", domain.ErrParse, listing, err)
	}
	return entries, nil
}

// statusError maps non-200 responses. 404 is not found; 429, or 403 with an
// exhausted quota header, is a rate limit.
func statusError(target string, resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get(headerRateRemaining) == "0":
		return &domain.FetchError{Path: target, StatusCode: resp.StatusCode, Err: domain.ErrRateLimited}
	default:
		return domain.NewFetchError(target, resp.StatusCode)
	}
}
