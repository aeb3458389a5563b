// Package inventory records which management packs are installed in the
// local management group, so catalog entries can be matched against them.
package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
)

// Sentinel errors for inventory operations.
var (
	ErrNotFound    = errors.New("pack not recorded")
	ErrLockTimeout = errors.New("failed to acquire inventory lock")
	ErrInvalidPack = errors.New("invalid pack record")
)

// Pack is a persisted installed pack record.
type Pack struct {
	Name       string          `json:"name"`
	Version    catalog.Version `json:"version"`
	ID         string          `json:"id,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
}

// Store persists installed pack records.
//
//go:generate go run github.com/matryer/moq@latest -pkg mocks -out mocks/store.go . Store
type Store interface {
	// Record adds a pack or replaces the record with the same name.
	Record(ctx context.Context, pack Pack) error

	// Get retrieves a pack by name.
	// Returns ErrNotFound if not found.
	Get(ctx context.Context, name string) (*Pack, error)

	// Forget removes a pack by name.
	// Returns ErrNotFound if not found.
	Forget(ctx context.Context, name string) error

	// List returns all packs ordered by name.
	List(ctx context.Context) ([]Pack, error)

	// Snapshot returns the recorded packs as a read-only installed set.
	Snapshot(ctx context.Context) (*catalog.InstalledSet, error)
}
