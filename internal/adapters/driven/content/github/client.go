package github

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
)

// Ensure Client implements the content ports.
var (
	_ driven.DirectoryLister = (*Client)(nil)
	_ driven.ContentSource   = (*Client)(nil)
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Config locates the content root inside a repository.
type Config struct {
	Owner string
	Repo  string
	Ref   string

	// Root is the repository path that content paths are relative to.
	Root string

	// Token is optional.
	Token string
}

// Client wraps the go-github client for one repository.
type Client struct {
	gh          *gh.Client
	rateLimiter *RateLimiter
	cfg         Config
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API endpoint.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		if u, err := url.Parse(base); err == nil {
			c.gh.BaseURL = u
		}
	}
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(c *Client) {
		c.rateLimiter = r
	}
}

// NewClient creates a client. With a token, requests are authenticated
// through an oauth2 static token source.
func NewClient(ctx context.Context, cfg Config, opts ...Option) *Client {
	httpClient := &http.Client{Timeout: DefaultTimeout}
	limit := AnonymousLimit
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = DefaultTimeout
		limit = AuthenticatedLimit
	}

	c := &Client{
		gh:          gh.NewClient(httpClient),
		rateLimiter: NewRateLimiter(limit, ProactiveRate),
		cfg:         cfg,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

func (c *Client) repoPath(p string) string {
	return strings.TrimPrefix(path.Join(c.cfg.Root, p), "/")
}

// List returns the entries of the directory at p.
func (c *Client) List(ctx context.Context, p string) ([]domain.ListingEntry, error) {
	full := c.repoPath(p)
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, c.limitError(err, full)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: c.cfg.Ref}
	file, dir, resp, err := c.gh.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, full, opts)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, full)
	}
	if file != nil {
		return nil, &domain.FetchError{Path: full, Err: fmt.Errorf("%w: not a directory", domain.ErrInvalidInput)}
	}

	entries := make([]domain.ListingEntry, 0, len(dir))
	for _, item := range dir {
		entries = append(entries, domain.ListingEntry{Name: item.GetName(), Kind: item.GetType()})
	}
	return entries, nil
}

// Get returns the decoded content of the file at p. Files too large for the
// contents API are downloaded instead.
func (c *Client) Get(ctx context.Context, p string) ([]byte, error) {
	full := c.repoPath(p)
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, c.limitError(err, full)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: c.cfg.Ref}
	file, _, resp, err := c.gh.Repositories.GetContents(ctx, c.cfg.Owner, c.cfg.Repo, full, opts)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, full)
	}
	if file == nil {
		return nil, &domain.FetchError{Path: full, Err: fmt.Errorf("%w: path is a directory", domain.ErrInvalidInput)}
	}

	if file.GetEncoding() == "none" {
		return c.download(ctx, full)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, &domain.FetchError{Path: full, Err: fmt.Errorf("decode content: %w", err)}
	}
	return []byte(content), nil
}

func (c *Client) download(ctx context.Context, full string) ([]byte, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, c.limitError(err, full)
	}
	opts := &gh.RepositoryContentGetOptions{Ref: c.cfg.Ref}
	rc, resp, err := c.gh.Repositories.DownloadContents(ctx, c.cfg.Owner, c.cfg.Repo, full, opts)
	c.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, c.wrapError(err, full)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, &domain.FetchError{Path: full, Err: err}
	}
	return data, nil
}

// limitError wraps a rate limiter failure. Context errors pass through.
func (c *Client) limitError(err error, full string) error {
	var limited *RateLimitError
	if errors.As(err, &limited) {
		return &domain.FetchError{Path: full, StatusCode: http.StatusForbidden, Err: err}
	}
	return err
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (c *Client) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	c.rateLimiter.UpdateFromResponse(resp.Response)
}
