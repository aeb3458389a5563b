// Package registry fetches the community management pack catalog from its
// remote repository over HTTP.
package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/metrics"
)

// Sentinel errors for registry operations.
var (
	// ErrResolution is returned when the seed URL does not redirect to the
	// catalog repository.
	ErrResolution = errors.New("unable to resolve the catalog location")

	// ErrIndexFetch is returned when the index document cannot be fetched or
	// decoded.
	ErrIndexFetch = errors.New("failed to fetch catalog index")

	// ErrTagsFetch is returned when the recommended search tags cannot be
	// fetched or decoded.
	ErrTagsFetch = errors.New("failed to fetch recommended search tags")
)

// Defaults for ClientConfig.
const (
	DefaultSeedURL   = "http://www.mpcatalog.net/CatalogRepo"
	DefaultUserAgent = "Community"
	DefaultTimeout   = 20 * time.Second
)

// Document names within the repository.
const (
	indexDocument   = "Index.json"
	tagsDocument    = "RecommendedSearchTags.json"
	detailsDocument = "details.json"
	readmeDocument  = "ReadMe.md"
)

// IndexEntry is one line of the catalog index.
type IndexEntry = catalog.IndexEntry

// DetailFetchError reports a catalog entry whose detail document could not be
// fetched or decoded. The entry is left out of the catalog.
type DetailFetchError struct {
	SystemName string
	URL        string
	Err        error
}

func (e *DetailFetchError) Error() string {
	return fmt.Sprintf("fetch details for %s from %s: %v", e.SystemName, e.URL, e.Err)
}

func (e *DetailFetchError) Unwrap() error {
	return e.Err
}

// ReadmeFetchError reports a readme that could not be fetched. The entry is
// kept with an empty readme.
type ReadmeFetchError struct {
	SystemName string
	URL        string
	Err        error
}

func (e *ReadmeFetchError) Error() string {
	return fmt.Sprintf("fetch readme for %s from %s: %v", e.SystemName, e.URL, e.Err)
}

func (e *ReadmeFetchError) Unwrap() error {
	return e.Err
}

// Result is the outcome of fetching one catalog entry.
type Result struct {
	SystemName string
	Entry      *catalog.Entry // Nil when Err is a *DetailFetchError
	Err        error          // *DetailFetchError or *ReadmeFetchError
}

// ProxyConfig configures an outbound HTTP proxy.
type ProxyConfig struct {
	Address  string // Proxy URL; empty disables the proxy
	Username string
	Password string
}

// ClientConfig configures the registry client.
type ClientConfig struct {
	// SeedURL is the well-known URL that redirects to the repository.
	SeedURL string

	// RepoBase, when set, is used as the repository location and the seed
	// URL is not consulted.
	RepoBase string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds each individual request.
	Timeout time.Duration

	// Concurrency bounds the number of detail fetches in flight.
	// Zero means one fetch per active entry.
	Concurrency int

	// RateLimit caps requests per second. Zero means unlimited.
	RateLimit float64

	// Retries is the number of retries for transient failures.
	Retries int

	Proxy ProxyConfig

	// Metrics is optional.
	Metrics *metrics.Metrics
}

// Client fetches catalog documents from the remote repository.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/client.go . Client
type Client interface {
	catalog.Source

	// FetchAll fetches every active entry concurrently and reports one
	// Result per active entry, in index order.
	FetchAll(ctx context.Context, base string, index []IndexEntry) []Result

	// FetchReadme fetches the readme of a single entry.
	FetchReadme(ctx context.Context, base, systemName string) (string, error)
}
