package registry

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mpcatalog/mpcatalog/internal/metrics"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

// Resolver locates the catalog repository by following the seed URL's
// redirects by hand.
type Resolver struct {
	http    *resty.Client
	metrics *metrics.Metrics
}

// NewResolver creates a resolver that issues requests with httpClient.
// Automatic redirect following is disabled on the client.
func NewResolver(httpClient *resty.Client, m *metrics.Metrics) *Resolver {
	httpClient.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	return &Resolver{http: httpClient, metrics: m}
}

// Resolve requests seedURL and returns the location it redirects to. The
// location is requested once more and, if it redirects again, that second
// location is returned instead. A second response that is not a redirect
// keeps the first location. No further redirects are followed.
//
// Returns ErrResolution if seedURL cannot be reached or does not redirect,
// or if the first location cannot be reached.
func (r *Resolver) Resolve(ctx context.Context, seedURL, referer string) (string, error) {
	log := slogger.For(ctx, slogger.CategoryExternal)

	location, err := r.hop(ctx, seedURL, referer)
	if err != nil {
		return "", fmt.Errorf("%w from %s: %w", ErrResolution, seedURL, err)
	}
	if location == "" {
		return "", fmt.Errorf("%w from %s: response was not a redirect", ErrResolution, seedURL)
	}
	log.Debug("seed redirected", "seed", seedURL, "location", location)

	next, err := r.hop(ctx, location, referer)
	if err != nil {
		return "", fmt.Errorf("%w from %s: %w", ErrResolution, location, err)
	}
	if next != "" {
		log.Debug("location redirected", "from", location, "to", next)
		location = next
	}

	return location, nil
}

// hop requests target and returns its redirect location, or "" when the
// response is not a redirect.
func (r *Resolver) hop(ctx context.Context, target, referer string) (string, error) {
	start := time.Now()
	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Referer", "http://"+referer).
		Get(target)
	r.metrics.ObserveFetch(metrics.DocumentResolve, time.Since(start), err)
	if err != nil {
		return "", err
	}

	switch resp.StatusCode() {
	case http.StatusMovedPermanently, http.StatusFound:
		location := resp.Header().Get("Location")
		if location == "" {
			return "", fmt.Errorf("%s redirect without a Location header", resp.Status())
		}
		ref, err := url.Parse(location)
		if err != nil {
			return "", fmt.Errorf("invalid Location %q: %w", location, err)
		}
		// Relative locations resolve against the request that produced them.
		return resp.RawResponse.Request.URL.ResolveReference(ref).String(), nil
	}
	return "", nil
}
