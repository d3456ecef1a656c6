package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/logger"
)

const (
	manifestPath            = "manifest.json"
	defaultListingTTL       = time.Hour
	defaultGroupConcurrency = 4
)

// cachedListing is a group listing and when it was fetched.
type cachedListing struct {
	names     []string
	fetchedAt time.Time
}

// RemoteContent fetches manifests and locale content. Fetches never touch
// persistent storage; only group listings are cached, in memory.
type RemoteContent struct {
	data          driven.ContentSource
	content       driven.ContentSource
	lister        driven.DirectoryLister
	defaultLocale string
	ttl           time.Duration
	concurrency   int
	now           func() time.Time

	mu       sync.Mutex
	listings map[string]cachedListing
}

// ContentOption configures a RemoteContent.
type ContentOption func(*RemoteContent)

// WithListingTTL sets how long a group listing is served from cache.
func WithListingTTL(ttl time.Duration) ContentOption {
	return func(r *RemoteContent) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// WithGroupConcurrency bounds concurrent item fetches within a group.
func WithGroupConcurrency(n int) ContentOption {
	return func(r *RemoteContent) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithContentClock overrides the clock used for cache expiry.
func WithContentClock(now func() time.Time) ContentOption {
	return func(r *RemoteContent) {
		r.now = now
	}
}

// NewRemoteContent creates a fetcher. data serves the manifest, content
// serves "{locale}/{name}" paths and lister lists group directories.
func NewRemoteContent(
	data driven.ContentSource,
	content driven.ContentSource,
	lister driven.DirectoryLister,
	defaultLocale string,
	opts ...ContentOption,
) *RemoteContent {
	r := &RemoteContent{
		data:          data,
		content:       content,
		lister:        lister,
		defaultLocale: defaultLocale,
		ttl:           defaultListingTTL,
		concurrency:   defaultGroupConcurrency,
		now:           time.Now,
		listings:      make(map[string]cachedListing),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultLocale returns the fallback locale.
func (r *RemoteContent) DefaultLocale() string {
	return r.defaultLocale
}

// FetchManifest fetches and parses the release manifest.
// The raw payload is returned alongside for hashing.
func (r *RemoteContent) FetchManifest(ctx context.Context) (*domain.Manifest, []byte, error) {
	raw, err := r.data.Get(ctx, manifestPath)
	if err != nil {
		return nil, nil, err
	}
	var m domain.Manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, nil, fmt.Errorf("%w: manifest: %v", domain.ErrParse, err)
	}
	return &m, raw, nil
}

// Fetch retrieves "{locale}/{name}". When that is not found and locale is
// not the default, "{defaultLocale}/{name}" is tried instead. Every other
// error is returned unmodified.
func (r *RemoteContent) Fetch(ctx context.Context, locale, name string) ([]byte, error) {
	raw, err := r.content.Get(ctx, path.Join(locale, name))
	if err == nil || !domain.IsNotFound(err) || locale == r.defaultLocale {
		return raw, err
	}
	logger.Debug("fetch %s: not found for %s, falling back to %s", name, locale, r.defaultLocale)
	return r.content.Get(ctx, path.Join(r.defaultLocale, name))
}

// ListGroup returns the sorted content file names in a group directory.
// Listings are cached per locale and group. A rate-limited listing falls
// back to the last cached result, however old, or to an empty list.
func (r *RemoteContent) ListGroup(ctx context.Context, locale, group string) ([]string, error) {
	key := path.Join(locale, group)

	r.mu.Lock()
	cached, ok := r.listings[key]
	r.mu.Unlock()
	if ok && r.now().Sub(cached.fetchedAt) < r.ttl {
		return cached.names, nil
	}

	entries, err := r.list(ctx, locale, group)
	if err != nil {
		if !domain.IsRateLimited(err) {
			return nil, err
		}
		if ok {
			logger.Warn("list %s: rate limited, serving listing from %s", key, cached.fetchedAt.Format(time.RFC3339))
			return cached.names, nil
		}
		logger.Warn("list %s: rate limited with no cached listing", key)
		return []string{}, nil
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsContentFile() {
			names = append(names, e.Name)
		}
	}
	sort.Strings(names)

	r.mu.Lock()
	r.listings[key] = cachedListing{names: names, fetchedAt: r.now()}
	r.mu.Unlock()
	return names, nil
}

func (r *RemoteContent) list(ctx context.Context, locale, group string) ([]domain.ListingEntry, error) {
	entries, err := r.lister.List(ctx, path.Join(locale, group))
	if err == nil || !domain.IsNotFound(err) || locale == r.defaultLocale {
		return entries, err
	}
	return r.lister.List(ctx, path.Join(r.defaultLocale, group))
}

// FetchGroup lists a group and fetches every item. Items that fail to fetch
// are logged and skipped. Results are sorted by name.
func (r *RemoteContent) FetchGroup(ctx context.Context, locale, group string) ([]domain.GroupItem, error) {
	names, err := r.ListGroup(ctx, locale, group)
	if err != nil {
		return nil, err
	}

	var (
		mu    sync.Mutex
		items = make([]domain.GroupItem, 0, len(names))
	)
	g := new(errgroup.Group)
	g.SetLimit(r.concurrency)
	for _, name := range names {
		g.Go(func() error {
			raw, err := r.Fetch(ctx, locale, path.Join(group, name))
			if err != nil {
				logger.Warn("fetch %s/%s: %v (skipped)", group, name, err)
				return nil
			}
			mu.Lock()
			items = append(items, domain.GroupItem{Name: name, Payload: raw})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items, nil
}

// InvalidateListings drops every cached listing.
func (r *RemoteContent) InvalidateListings() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listings = make(map[string]cachedListing)
}
