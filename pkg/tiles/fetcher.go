package tiles

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg" // some providers serve JPEG tiles
	_ "image/png"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/trafficmap/pkg/buildinfo"
	"github.com/matzehuels/trafficmap/pkg/cache"
	terrors "github.com/matzehuels/trafficmap/pkg/errors"
	"github.com/matzehuels/trafficmap/pkg/httputil"
	"github.com/matzehuels/trafficmap/pkg/observability"
)

// DefaultTTL is how long fetched tiles stay cached.
const DefaultTTL = 7 * 24 * time.Hour

const maxTileBytes = 4 << 20

// Source yields basemap tiles. A nil image with a nil error means the tile
// does not exist and should be left transparent.
type Source interface {
	Provider() Provider
	Tile(ctx context.Context, t Tile) (image.Image, error)
}

// Fetcher downloads tiles over HTTP, caching the encoded bytes.
// It is safe for concurrent use.
type Fetcher struct {
	provider  Provider
	client    *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	ttl       time.Duration
	userAgent string
	attempts  int
	delay     time.Duration
	logger    *log.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets the HTTP client (default: 30s timeout).
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) { f.client = c }
}

// WithCache sets the tile cache and entry TTL.
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(f *Fetcher) { f.cache, f.ttl = c, ttl }
}

// WithKeyer sets the cache keyer.
func WithKeyer(k cache.Keyer) Option {
	return func(f *Fetcher) { f.keyer = k }
}

// WithUserAgent sets the User-Agent header. Public tile servers reject
// requests without one.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) { f.userAgent = ua }
}

// WithRetry sets the number of attempts and the initial backoff delay.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(f *Fetcher) { f.attempts, f.delay = attempts, delay }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher returns a fetcher for p.
func NewFetcher(p Provider, opts ...Option) *Fetcher {
	f := &Fetcher{
		provider:  p,
		client:    &http.Client{Timeout: 30 * time.Second},
		cache:     cache.NewNullCache(),
		keyer:     cache.NewDefaultKeyer(),
		ttl:       DefaultTTL,
		userAgent: buildinfo.UserAgent(),
		attempts:  3,
		delay:     time.Second,
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Provider returns the provider tiles are fetched from.
func (f *Fetcher) Provider() Provider { return f.provider }

// Tile returns the decoded tile t. Offline providers and 404 responses
// yield (nil, nil).
func (f *Fetcher) Tile(ctx context.Context, t Tile) (image.Image, error) {
	if f.provider.Offline() {
		return nil, nil
	}
	key := f.keyer.TileKey(f.provider.Name, t.Z, t.X, t.Y)

	if data, hit, err := f.cache.Get(ctx, key); err != nil {
		f.logger.Warn("tile cache read failed", "tile", t, "err", err)
	} else if hit {
		observability.Cache().OnCacheHit(ctx, "tile")
		if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
			return img, nil
		}
		f.logger.Debug("dropping undecodable cached tile", "tile", t)
		_ = f.cache.Delete(ctx, key)
	} else {
		observability.Cache().OnCacheMiss(ctx, "tile")
	}

	data, err := f.fetch(ctx, t)
	if err != nil || data == nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, terrors.Wrap(terrors.ErrCodeNetwork, err, "decode tile %s", t)
	}

	if err := f.cache.Set(ctx, key, data, f.ttl); err != nil {
		f.logger.Warn("tile cache write failed", "tile", t, "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "tile", len(data))
	}
	return img, nil
}

// fetch downloads the encoded tile. A 404 yields (nil, nil).
func (f *Fetcher) fetch(ctx context.Context, t Tile) ([]byte, error) {
	url := f.provider.TileURL(t)
	var data []byte

	err := httputil.Retry(ctx, f.attempts, f.delay, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", f.userAgent)

		hooks := observability.HTTP()
		hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
		start := time.Now()

		resp, err := f.client.Do(req)
		if err != nil {
			hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return &httputil.RetryableError{Err: err}
		}
		defer resp.Body.Close()
		hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusNotFound:
			data = nil
			return nil
		case http.StatusTooManyRequests:
			retryAfter, _ := strconv.Atoi(resp.Header.Get("Retry-After"))
			return &httputil.RetryableError{Err: &terrors.RateLimitedError{RetryAfter: retryAfter}}
		}
		if err := httputil.CheckStatus(resp); err != nil {
			return err
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxTileBytes))
		if err != nil {
			return &httputil.RetryableError{Err: err}
		}
		data = body
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		var rl *terrors.RateLimitedError
		var ne net.Error
		switch {
		case errors.As(err, &rl):
			return nil, terrors.Wrap(terrors.ErrCodeRateLimited, err, "fetch tile %s", t)
		case errors.As(err, &ne) && ne.Timeout():
			return nil, terrors.Wrap(terrors.ErrCodeTimeout, err, "fetch tile %s", t)
		}
		return nil, terrors.Wrap(terrors.ErrCodeNetwork, err, "fetch tile %s", t)
	}
	if data == nil {
		f.logger.Debug("tile not found", "tile", t, "url", url)
	}
	return data, nil
}

// Blank is an offline Source that never returns tiles.
type Blank struct {
	P Provider
}

// Provider implements Source.
func (b Blank) Provider() Provider { return b.P }

// Tile implements Source.
func (Blank) Tile(context.Context, Tile) (image.Image, error) { return nil, nil }

// NewSource returns a Blank source for offline providers and a Fetcher
// otherwise.
func NewSource(p Provider, opts ...Option) Source {
	if p.Offline() {
		return Blank{P: p}
	}
	return NewFetcher(p, opts...)
}

var (
	_ Source = (*Fetcher)(nil)
	_ Source = Blank{}
)

// ErrNoProvider is returned by Resolve for an unknown provider name.
var ErrNoProvider = fmt.Errorf("unknown tile provider")

// Resolve returns the provider for name, or a custom provider when
// urlTemplate is set.
func Resolve(name, urlTemplate string, maxZoom int) (Provider, error) {
	if urlTemplate != "" {
		if err := terrors.ValidateURLTemplate(urlTemplate); err != nil {
			return Provider{}, err
		}
		return Custom(urlTemplate, maxZoom), nil
	}
	if name == "" {
		name = Positron.Name
	}
	p, ok := Lookup(name)
	if !ok {
		return Provider{}, terrors.Wrap(terrors.ErrCodeInvalidConfig, ErrNoProvider, "%q (known: %v)", name, Names())
	}
	if maxZoom > 0 && maxZoom < p.MaxZoom {
		p.MaxZoom = maxZoom
	}
	return p, nil
}
