// Package github lists and fetches content through the GitHub contents API.
//
// The client throttles proactively with a token bucket and tracks the
// X-RateLimit-* headers of every response. Once the quota is exhausted,
// requests fail fast with an error matching domain.ErrRateLimited instead
// of blocking until the reset, so callers can fall back to cached listings.
// Unauthenticated use is allowed at GitHub's lower quota.
package github
