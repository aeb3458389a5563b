package cmd

import (
	"context"

	"github.com/mpcatalog/mpcatalog/internal/config"
	"github.com/mpcatalog/mpcatalog/internal/inventory"
	"github.com/mpcatalog/mpcatalog/internal/keychain"
	"github.com/mpcatalog/mpcatalog/internal/prompt"
)

type contextKey string

const (
	configKey    contextKey = "config"
	loaderKey    contextKey = "loader"
	inventoryKey contextKey = "inventory"
	keychainKey  contextKey = "keychain"
	prompterKey  contextKey = "prompter"
)

// WithConfig adds the config to the context.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// ConfigFromContext retrieves the config from context.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		return nil
	}
	return cfg
}

// WithLoader adds the config loader to the context.
func WithLoader(ctx context.Context, loader *config.Loader) context.Context {
	return context.WithValue(ctx, loaderKey, loader)
}

// LoaderFromContext retrieves the config loader from context.
func LoaderFromContext(ctx context.Context) *config.Loader {
	loader, ok := ctx.Value(loaderKey).(*config.Loader)
	if !ok {
		return nil
	}
	return loader
}

// WithInventory adds the installed pack inventory to the context.
func WithInventory(ctx context.Context, store inventory.Store) context.Context {
	return context.WithValue(ctx, inventoryKey, store)
}

// InventoryFromContext retrieves the installed pack inventory from context.
func InventoryFromContext(ctx context.Context) inventory.Store {
	store, ok := ctx.Value(inventoryKey).(inventory.Store)
	if !ok {
		return nil
	}
	return store
}

// WithKeychain adds the credential store to the context.
func WithKeychain(ctx context.Context, kc keychain.Keychain) context.Context {
	return context.WithValue(ctx, keychainKey, kc)
}

// KeychainFromContext retrieves the credential store from context.
func KeychainFromContext(ctx context.Context) keychain.Keychain {
	kc, ok := ctx.Value(keychainKey).(keychain.Keychain)
	if !ok {
		return nil
	}
	return kc
}

// WithPrompter adds the interactive prompter to the context.
func WithPrompter(ctx context.Context, p prompt.Prompter) context.Context {
	return context.WithValue(ctx, prompterKey, p)
}

// PrompterFromContext retrieves the interactive prompter from context.
func PrompterFromContext(ctx context.Context) prompt.Prompter {
	p, ok := ctx.Value(prompterKey).(prompt.Prompter)
	if !ok {
		return nil
	}
	return p
}
