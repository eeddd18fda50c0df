// Package location resolves the country/state/city/district hierarchy used by
// the address dropdowns and keeps dependent selections consistent.
package location

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"kayit/internal/backend"
	"kayit/internal/platform/logger"
	"kayit/internal/platform/metrics"
	"kayit/internal/ttlcache"
)

// DefaultCacheTTL is how long a fetched hierarchy is reused.
const DefaultCacheTTL = 10 * time.Minute

// Fetcher loads the complete hierarchy for one country.
type Fetcher interface {
	LocationHierarchy(ctx context.Context, token, languageCode, countryCode string) (backend.HierarchyResponse, error)
}

// Status distinguishes "nothing to show" from "could not load".
type Status string

const (
	StatusAvailable   Status = "available"
	StatusUnavailable Status = "unavailable"
)

// Hierarchy is the outcome of a Load. Tree is meaningful only when Status is
// StatusAvailable; an available tree may have no children.
type Hierarchy struct {
	Status Status
	Tree   Node
	Reason string
}

// Resolver memoizes hierarchies per (token, language, country) and coalesces
// concurrent identical loads into one backend fetch.
type Resolver struct {
	fetcher Fetcher
	cache   *ttlcache.Typed[Node]
	group   singleflight.Group
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

// NewResolver creates a resolver backed by fetcher and memoizing into store.
func NewResolver(fetcher Fetcher, store ttlcache.Store, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher: fetcher,
		ttl:     DefaultCacheTTL,
		logger:  logger.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.cache = ttlcache.NewTyped[Node](store, "location:", r.logger)
	return r
}

// Load returns the hierarchy for the given token, language and country.
// A failed fetch is retried once; if that fails too the result is
// StatusUnavailable and nothing is cached, so a later call fetches again.
func (r *Resolver) Load(ctx context.Context, token, languageCode, countryCode string) Hierarchy {
	key := cacheKey(token, languageCode, countryCode)
	if tree, ok := r.cache.Get(ctx, key); ok {
		return Hierarchy{Status: StatusAvailable, Tree: tree}
	}

	// The flight outlives any single caller, so it must not inherit one
	// caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := r.group.Do(key, func() (any, error) {
		if tree, ok := r.cache.Get(flightCtx, key); ok {
			return tree, nil
		}
		tree, err := r.fetch(flightCtx, token, languageCode, countryCode)
		if err != nil {
			return Node{}, err
		}
		r.cache.Set(flightCtx, key, tree, r.ttl)
		return tree, nil
	})
	if err != nil {
		r.logger.WarnContext(ctx, "location hierarchy unavailable",
			"token_fp", logger.Fingerprint(token),
			"country", countryCode,
			"shared", shared,
			"error", err,
		)
		return Hierarchy{Status: StatusUnavailable, Reason: backend.MessageOf(err)}
	}
	return Hierarchy{Status: StatusAvailable, Tree: v.(Node)}
}

// Invalidate drops a memoized hierarchy.
func (r *Resolver) Invalidate(ctx context.Context, token, languageCode, countryCode string) {
	r.cache.Remove(ctx, cacheKey(token, languageCode, countryCode))
}

func (r *Resolver) fetch(ctx context.Context, token, languageCode, countryCode string) (Node, error) {
	resp, err := r.fetcher.LocationHierarchy(ctx, token, languageCode, countryCode)
	if err == nil {
		r.metrics.IncHierarchyFetch("ok")
		return FromWire(countryCode, resp), nil
	}
	r.logger.InfoContext(ctx, "location hierarchy fetch failed, retrying once",
		"country", countryCode, "error", err)

	resp, err = r.fetcher.LocationHierarchy(ctx, token, languageCode, countryCode)
	if err != nil {
		r.metrics.IncHierarchyFetch("failed")
		return Node{}, err
	}
	r.metrics.IncHierarchyFetch("retried")
	return FromWire(countryCode, resp), nil
}

func cacheKey(token, languageCode, countryCode string) string {
	return strings.Join([]string{token, strings.ToUpper(languageCode), strings.ToUpper(countryCode)}, ":")
}
