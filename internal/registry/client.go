package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/metrics"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

// indexItem is one element of the index document.
type indexItem struct {
	SystemName string `json:"ManagementPackSystemName"`
	Active     *bool  `json:"Active"`
}

// tagsDocumentBody is the recommended search tags document.
type tagsDocumentBody struct {
	RecommendedTags []string `json:"RecommendedTags"`
}

// detailDocument is a pack's details.json.
type detailDocument struct {
	SystemName       string   `json:"ManagementPackSystemName" validate:"required"`
	DisplayName      string   `json:"ManagementPackDisplayName" validate:"required"`
	URL              string   `json:"URL" validate:"required"`
	Version          string   `json:"Version" validate:"required"`
	Author           string   `json:"Author" validate:"required"`
	IsFree           *bool    `json:"IsFree" validate:"required"`
	CommercialAuthor bool     `json:"CommercialAuthor"`
	Description      string   `json:"Description"`
	Tags             []string `json:"Tags"`
}

// client implements the Client interface using resty.
type client struct {
	config   ClientConfig
	http     *resty.Client
	resolver *Resolver
	limiter  *rate.Limiter
	validate *validator.Validate
}

// NewClient creates a new registry client with the given configuration.
func NewClient(cfg ClientConfig) (Client, error) {
	if cfg.SeedURL == "" {
		cfg.SeedURL = DefaultSeedURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	proxyURL, err := proxyURL(cfg.Proxy)
	if err != nil {
		return nil, err
	}

	// Pooled transport shared by the fetch and resolution clients.
	transport := retryablehttp.NewClient().HTTPClient.Transport

	fetch := newHTTPClient(cfg, transport, proxyURL)
	if cfg.Retries > 0 {
		fetch.SetRetryCount(cfg.Retries).
			SetRetryWaitTime(250 * time.Millisecond).
			SetRetryMaxWaitTime(5 * time.Second).
			AddRetryCondition(shouldRetry)
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &client{
		config:   cfg,
		http:     fetch,
		resolver: NewResolver(newHTTPClient(cfg, transport, proxyURL), cfg.Metrics),
		limiter:  rate.NewLimiter(limit, 1),
		validate: validator.New(),
	}, nil
}

func newHTTPClient(cfg ClientConfig, transport http.RoundTripper, proxy string) *resty.Client {
	c := resty.New().
		SetTransport(transport).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/plain")
	if proxy != "" {
		c.SetProxy(proxy)
	}
	return c
}

// proxyURL builds the proxy URL, embedding credentials when a username is set.
func proxyURL(p ProxyConfig) (string, error) {
	if p.Address == "" {
		return "", nil
	}
	u, err := url.Parse(p.Address)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("invalid proxy address %q", p.Address)
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u.String(), nil
}

// shouldRetry applies retryablehttp's policy for transient failures.
func shouldRetry(resp *resty.Response, err error) bool {
	ctx := context.Background()
	var raw *http.Response
	if resp != nil {
		raw = resp.RawResponse
		if resp.Request != nil {
			ctx = resp.Request.Context()
		}
	}
	if raw == nil && err == nil {
		return false
	}
	retry, _ := retryablehttp.DefaultRetryPolicy(ctx, raw, err)
	return retry
}

// Locate returns the configured repository base or resolves it from the seed.
func (c *client) Locate(ctx context.Context, referer string) (string, error) {
	if c.config.RepoBase != "" {
		slogger.For(ctx, slogger.CategoryExternal).Debug("using configured repository base", "base", c.config.RepoBase)
		return c.config.RepoBase, nil
	}
	return c.resolver.Resolve(ctx, c.config.SeedURL, referer)
}

// FetchIndex fetches and validates the index document.
func (c *client) FetchIndex(ctx context.Context, base string) ([]IndexEntry, error) {
	target, err := url.JoinPath(base, indexDocument)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexFetch, err)
	}

	slogger.For(ctx, slogger.CategoryExternal).Debug("fetching catalog index", "url", target)
	data, err := c.get(ctx, metrics.DocumentIndex, target)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrIndexFetch, target, err)
	}

	if err := validateDocument(indexSchema, data); err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrIndexFetch, target, err)
	}

	var items []indexItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w from %s: decode: %w", ErrIndexFetch, target, err)
	}

	index := make([]IndexEntry, len(items))
	for i, item := range items {
		index[i] = IndexEntry{
			SystemName: item.SystemName,
			Active:     item.Active == nil || *item.Active,
		}
	}
	return index, nil
}

// FetchDetails fetches every active entry and keys the successes by system
// name. A later entry with the same system name replaces an earlier one.
func (c *client) FetchDetails(ctx context.Context, base string, index []IndexEntry) (map[string]*catalog.Entry, error) {
	log := slogger.For(ctx, slogger.CategoryExternal)
	results := c.FetchAll(ctx, base, index)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries := make(map[string]*catalog.Entry, len(results))
	for _, r := range results {
		var readmeErr *ReadmeFetchError
		switch {
		case r.Entry == nil:
			log.Warn("dropping catalog entry", "name", r.SystemName, "error", r.Err)
			continue
		case errors.As(r.Err, &readmeErr):
			log.Debug("readme unavailable", "name", r.SystemName, "error", r.Err)
		}
		entries[r.Entry.SystemName] = r.Entry
	}

	log.Info("fetched catalog details", "requested", len(results), "fetched", len(entries))
	return entries, nil
}

// FetchAll fetches every active entry concurrently.
func (c *client) FetchAll(ctx context.Context, base string, index []IndexEntry) []Result {
	active := make([]string, 0, len(index))
	for _, item := range index {
		if item.Active {
			active = append(active, item.SystemName)
		}
	}

	results := make([]Result, len(active))
	var g errgroup.Group
	if c.config.Concurrency > 0 {
		g.SetLimit(c.config.Concurrency)
	}
	for i, name := range active {
		g.Go(func() error {
			results[i] = c.fetchEntry(ctx, base, name)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// fetchEntry fetches one entry's details and readme.
func (c *client) fetchEntry(ctx context.Context, base, name string) Result {
	detailURL, err := url.JoinPath(base, name, detailsDocument)
	if err != nil {
		return Result{SystemName: name, Err: &DetailFetchError{SystemName: name, URL: base, Err: err}}
	}

	fields, tags, err := c.fetchDetail(ctx, detailURL)
	if err != nil {
		return Result{SystemName: name, Err: &DetailFetchError{SystemName: name, URL: detailURL, Err: err}}
	}

	result := Result{SystemName: name}
	readme, err := c.FetchReadme(ctx, base, name)
	if err != nil {
		result.Err = err
	}
	fields.Readme = readme

	result.Entry = catalog.NewEntry(fields, tags)
	return result
}

func (c *client) fetchDetail(ctx context.Context, target string) (catalog.Fields, []string, error) {
	data, err := c.get(ctx, metrics.DocumentDetails, target)
	if err != nil {
		return catalog.Fields{}, nil, err
	}

	var doc detailDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return catalog.Fields{}, nil, fmt.Errorf("decode: %w", err)
	}
	if err := c.validate.Struct(doc); err != nil {
		return catalog.Fields{}, nil, fmt.Errorf("validate: %w", err)
	}

	version, err := catalog.ParseVersion(doc.Version)
	if err != nil {
		return catalog.Fields{}, nil, err
	}

	return catalog.Fields{
		SystemName:       doc.SystemName,
		DisplayName:      doc.DisplayName,
		Author:           doc.Author,
		URL:              doc.URL,
		Description:      doc.Description,
		IsFree:           *doc.IsFree,
		CommercialAuthor: doc.CommercialAuthor,
		Version:          version,
	}, doc.Tags, nil
}

// FetchReadme fetches an entry's readme markdown.
// Returns a *ReadmeFetchError on failure.
func (c *client) FetchReadme(ctx context.Context, base, systemName string) (string, error) {
	target, err := url.JoinPath(base, systemName, readmeDocument)
	if err != nil {
		return "", &ReadmeFetchError{SystemName: systemName, URL: base, Err: err}
	}

	data, err := c.get(ctx, metrics.DocumentReadme, target)
	if err != nil {
		return "", &ReadmeFetchError{SystemName: systemName, URL: target, Err: err}
	}
	return string(data), nil
}

// FetchRecommendedTags fetches the recommended search tags in published order.
func (c *client) FetchRecommendedTags(ctx context.Context, base string) ([]string, error) {
	target, err := url.JoinPath(base, tagsDocument)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTagsFetch, err)
	}

	data, err := c.get(ctx, metrics.DocumentTags, target)
	if err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrTagsFetch, target, err)
	}
	if err := validateDocument(tagsSchema, data); err != nil {
		return nil, fmt.Errorf("%w from %s: %w", ErrTagsFetch, target, err)
	}

	var doc tagsDocumentBody
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w from %s: decode: %w", ErrTagsFetch, target, err)
	}
	return doc.RecommendedTags, nil
}

// get performs a rate limited GET and returns the body of a 2xx response.
func (c *client) get(ctx context.Context, document, target string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	start := time.Now()
	resp, err := c.http.R().SetContext(ctx).Get(target)
	if err == nil && !resp.IsSuccess() {
		err = fmt.Errorf("unexpected status %s", resp.Status())
	}
	c.config.Metrics.ObserveFetch(document, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return resp.Body(), nil
}
