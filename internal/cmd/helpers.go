package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/config"
	"github.com/mpcatalog/mpcatalog/internal/inventory"
	"github.com/mpcatalog/mpcatalog/internal/keychain"
	"github.com/mpcatalog/mpcatalog/internal/metrics"
	"github.com/mpcatalog/mpcatalog/internal/prompt"
	"github.com/mpcatalog/mpcatalog/internal/registry"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
	"github.com/mpcatalog/mpcatalog/internal/spinner"
)

// proxyAccount returns the keychain account holding the proxy password.
func proxyAccount(username string) string {
	return "proxy:" + username
}

func requireConfig(ctx context.Context) (*config.Config, error) {
	cfg := ConfigFromContext(ctx)
	if cfg == nil {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}

func requireInventory(ctx context.Context) (inventory.Store, error) {
	store := InventoryFromContext(ctx)
	if store == nil {
		return nil, errors.New("inventory not initialized")
	}
	return store, nil
}

func requireKeychain(ctx context.Context) (keychain.Keychain, error) {
	kc := KeychainFromContext(ctx)
	if kc == nil {
		return nil, errors.New("keychain not initialized")
	}
	return kc, nil
}

func requirePrompter(ctx context.Context) (prompt.Prompter, error) {
	p := PrompterFromContext(ctx)
	if p == nil {
		return nil, errors.New("prompter not initialized")
	}
	return p, nil
}

// session is a populated catalog and the client that filled it.
type session struct {
	store   *catalog.Store
	client  registry.Client
	metrics *metrics.Metrics
	matched int
}

// openCatalog builds a registry client from the configuration, populates a
// catalog store and matches it against the installed inventory.
//
// When populating fails the session is still returned alongside the error so
// callers can report the failure metrics.
func openCatalog(cmd *cobra.Command) (*session, error) {
	ctx := cmd.Context()

	cfg, err := requireConfig(ctx)
	if err != nil {
		return nil, err
	}
	inv, err := requireInventory(ctx)
	if err != nil {
		return nil, err
	}

	password, err := proxyPassword(ctx, cfg.Proxy)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	client, err := registry.NewClient(registry.ClientConfig{
		SeedURL:     cfg.Catalog.SeedURL,
		RepoBase:    cfg.Catalog.RepoBase,
		UserAgent:   cfg.Catalog.UserAgent,
		Timeout:     cfg.Catalog.Timeout,
		Concurrency: cfg.Catalog.Concurrency,
		RateLimit:   cfg.Catalog.RateLimit,
		Retries:     cfg.Catalog.Retries,
		Proxy: registry.ProxyConfig{
			Address:  cfg.Proxy.Address,
			Username: cfg.Proxy.Username,
			Password: password,
		},
		Metrics: m,
	})
	if err != nil {
		return nil, fmt.Errorf("create registry client: %w", err)
	}

	store := catalog.NewStore(client, catalog.StoreConfig{Metrics: m})
	sess := &session{store: store, client: client, metrics: m}
	if err := populate(cmd, store, cfg.Catalog.Referer); err != nil {
		return sess, err
	}

	set, err := inv.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("read inventory: %w", err)
	}
	sess.matched, err = store.MatchInstalled(ctx, set, catalog.ByName)
	if err != nil {
		return nil, fmt.Errorf("match installed packs: %w", err)
	}

	return sess, nil
}

// populate runs a populate cycle, showing a spinner when stderr is a
// terminal and logging is quiet.
func populate(cmd *cobra.Command, store *catalog.Store, referer string) error {
	ctx := cmd.Context()
	out := cmd.ErrOrStderr()

	if verbosity > 0 || !spinner.Enabled(out) {
		return store.Populate(ctx, referer)
	}

	s := spinner.New(out)
	unsubscribe := store.Subscribe(s)
	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	err := store.Populate(ctx, referer)

	unsubscribe()
	s.Stop()
	if spinErr := <-done; spinErr != nil {
		slogger.For(ctx, slogger.CategoryUI).Debug("spinner stopped with error", "error", spinErr)
	}
	return err
}

// proxyPassword looks up the stored proxy password. A configured username
// without a stored password is allowed; the proxy may not require one.
func proxyPassword(ctx context.Context, p config.ProxyConfig) (string, error) {
	if p.Address == "" || p.Username == "" {
		return "", nil
	}

	kc, err := requireKeychain(ctx)
	if err != nil {
		return "", err
	}

	password, err := kc.Get(proxyAccount(p.Username))
	if errors.Is(err, keychain.ErrNotFound) {
		slogger.For(ctx, slogger.CategoryResource).Warn("no proxy password stored; run 'mpcatalog proxy login'",
			"username", p.Username)
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read proxy password: %w", err)
	}
	return password, nil
}

// formatTimeAgo formats a time as a human-readable relative time.
func formatTimeAgo(t time.Time) string {
	d := time.Since(t)

	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dw ago", int(d.Hours()/24/7))
	default:
		return fmt.Sprintf("%dmo ago", int(d.Hours()/24/30))
	}
}
