package catalog

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/mpcatalog/mpcatalog/internal/metrics"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

// State is a step of the populate state machine.
type State string

const (
	StateIdle            State = "idle"
	StateResolving       State = "resolving"
	StateFetchingIndex   State = "fetching-index"
	StateFetchingDetails State = "fetching-details"
	StateFetchingTags    State = "fetching-tags"
	StateCommitted       State = "committed"
	StateFailed          State = "failed"
)

// Event is delivered to observers on every state transition.
type Event struct {
	State  State
	Count  int    // Entries involved in the step, when known
	Notice string // User-facing notice, set when State is StateFailed
	Err    error  // Cause of the failure, set when State is StateFailed
}

// Observer receives populate progress.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent calls f(ev).
func (f ObserverFunc) OnEvent(ev Event) {
	f(ev)
}

// Source fetches catalog documents from the remote repository.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/source.go . Source
type Source interface {
	// Locate returns the base location of the catalog repository.
	Locate(ctx context.Context, referer string) (string, error)

	// FetchIndex returns the index of published packs.
	FetchIndex(ctx context.Context, base string) ([]IndexEntry, error)

	// FetchDetails returns the entries for the active index items, keyed by
	// system name. Items that fail to fetch are left out.
	FetchDetails(ctx context.Context, base string, index []IndexEntry) (map[string]*Entry, error)

	// FetchRecommendedTags returns the recommended search tags.
	FetchRecommendedTags(ctx context.Context, base string) ([]string, error)
}

// InstallFilter restricts Visible to installed or not-installed entries.
type InstallFilter int

const (
	// AnyInstall matches every entry.
	AnyInstall InstallFilter = iota
	// NotInstalled matches entries without an installed pack (discover view).
	NotInstalled
	// OnlyInstalled matches entries with an installed pack.
	OnlyInstalled
)

// ListFilter filters Visible queries.
type ListFilter struct {
	Match   func(*Entry) bool // Predicate over entries (nil = all)
	Install InstallFilter
}

// StoreConfig configures the Store.
type StoreConfig struct {
	Metrics *metrics.Metrics // Optional
}

type snapshot struct {
	base    string
	entries map[string]*Entry
	tags    []string
	matched bool
}

func emptySnapshot() *snapshot {
	return &snapshot{entries: map[string]*Entry{}, tags: []string{}}
}

// Store owns the current catalog snapshot and runs populate cycles against
// a Source.
type Store struct {
	source  Source
	metrics *metrics.Metrics
	flight  singleflight.Group

	mu    sync.RWMutex
	snap  *snapshot
	state State

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObs   int
}

// NewStore creates a store with an empty snapshot.
func NewStore(source Source, cfg StoreConfig) *Store {
	return &Store{
		source:    source,
		metrics:   cfg.Metrics,
		snap:      emptySnapshot(),
		state:     StateIdle,
		observers: map[int]Observer{},
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(o Observer) func() {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()

	id := s.nextObs
	s.nextObs++
	s.observers[id] = o

	return func() {
		s.obsMu.Lock()
		defer s.obsMu.Unlock()
		delete(s.observers, id)
	}
}

// Populate refreshes the snapshot from the remote repository.
//
// Failing to locate the repository or fetch its index replaces the snapshot
// with an empty one and returns an error wrapping ErrConnectivityRequired.
// Failures of individual entries or of the recommended tags are logged and
// never fail the cycle.
//
// Concurrent calls share a single in-flight cycle and its result.
func (s *Store) Populate(ctx context.Context, referer string) error {
	_, err, shared := s.flight.Do("populate", func() (any, error) {
		return nil, s.populate(ctx, referer)
	})
	if shared {
		slogger.L(ctx).Debug("joined in-flight catalog populate")
	}
	return err
}

func (s *Store) populate(ctx context.Context, referer string) error {
	log := slogger.For(ctx, slogger.CategoryExternal)
	start := time.Now()

	s.transition(Event{State: StateResolving})
	base, err := s.source.Locate(ctx, referer)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("locate catalog: %w", err))
	}
	log.Info("resolved catalog location", "base", base)

	s.transition(Event{State: StateFetchingIndex})
	index, err := s.source.FetchIndex(ctx, base)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("fetch index: %w", err))
	}

	active := 0
	for _, item := range index {
		if item.Active {
			active++
		}
	}
	log.Info("fetched catalog index", "total", len(index), "active", active)

	s.transition(Event{State: StateFetchingDetails, Count: active})
	entries, err := s.source.FetchDetails(ctx, base, index)
	if err != nil {
		return s.fail(ctx, fmt.Errorf("fetch details: %w", err))
	}
	if entries == nil {
		entries = map[string]*Entry{}
	}

	s.transition(Event{State: StateFetchingTags, Count: len(entries)})
	tags, err := s.source.FetchRecommendedTags(ctx, base)
	if err != nil {
		log.Warn("recommended search tags unavailable", "error", err)
	}
	if tags == nil {
		tags = []string{}
	}

	s.mu.Lock()
	s.snap = &snapshot{base: base, entries: entries, tags: slices.Clone(tags)}
	s.mu.Unlock()

	s.metrics.ObservePopulate(metrics.OutcomeSuccess, len(entries))
	log.Info("catalog committed", "entries", len(entries), "tags", len(tags), "elapsed", time.Since(start))
	s.transition(Event{State: StateCommitted, Count: len(entries)})
	return nil
}

// fail resets the snapshot after a fatal populate error.
func (s *Store) fail(ctx context.Context, cause error) error {
	s.mu.Lock()
	s.snap = emptySnapshot()
	s.mu.Unlock()

	s.metrics.ObservePopulate(metrics.OutcomeFailure, 0)
	slogger.For(ctx, slogger.CategoryExternal).Error("catalog populate failed", "error", cause)

	err := fmt.Errorf("%w: %w", ErrConnectivityRequired, cause)
	s.transition(Event{State: StateFailed, Notice: ConnectivityNotice, Err: err})
	return err
}

func (s *Store) transition(ev Event) {
	s.mu.Lock()
	s.state = ev.State
	s.mu.Unlock()

	s.obsMu.Lock()
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	s.obsMu.Unlock()

	for _, o := range observers {
		o.OnEvent(ev)
	}
}

// MatchInstalled links the current snapshot's entries to the installed packs
// in set. It may be called once per populate cycle; a second call returns
// ErrAlreadyMatched. Returns the number of entries matched.
func (s *Store) MatchInstalled(ctx context.Context, set *InstalledSet, keyOf KeyFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap.matched {
		return 0, ErrAlreadyMatched
	}
	s.snap.matched = true

	var items []InstalledPack
	if set != nil {
		items = set.packs
	}
	n := Annotate(s.snap.entries, items, keyOf)

	s.metrics.SetInstalled(n)
	slogger.For(ctx, slogger.CategoryResource).Info("matched installed packs",
		"installed", len(items), "matched", n)
	return n, nil
}

// Get returns the entry with the given system name.
// Returns ErrNotFound if it is not in the current snapshot.
func (s *Store) Get(systemName string) (*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.snap.entries[systemName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, systemName)
	}
	return entry, nil
}

// Visible returns the entries matching filter, ordered by display name and
// then system name.
func (s *Store) Visible(filter ListFilter) []*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*Entry
	for _, entry := range s.snap.entries {
		switch filter.Install {
		case NotInstalled:
			if entry.IsInstalled() {
				continue
			}
		case OnlyInstalled:
			if !entry.IsInstalled() {
				continue
			}
		}
		if filter.Match != nil && !filter.Match(entry) {
			continue
		}
		result = append(result, entry)
	}

	slices.SortFunc(result, func(a, b *Entry) int {
		return cmp.Or(
			cmp.Compare(Fold(a.DisplayName), Fold(b.DisplayName)),
			cmp.Compare(a.SystemName, b.SystemName),
		)
	})
	return result
}

// Entries returns a copy of the snapshot's entry map.
func (s *Store) Entries() map[string]*Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]*Entry, len(s.snap.entries))
	for k, v := range s.snap.entries {
		out[k] = v
	}
	return out
}

// RecommendedTags returns the recommended search tags in published order.
func (s *Store) RecommendedTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.snap.tags)
}

// Base returns the repository location of the current snapshot, or an empty
// string before the first successful populate.
func (s *Store) Base() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.base
}

// Len returns the number of entries in the current snapshot.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.snap.entries)
}

// State returns the current populate state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsConnectivityError reports whether err came from a failed populate.
func IsConnectivityError(err error) bool {
	return errors.Is(err, ErrConnectivityRequired)
}
