package inventory

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/slogger"
)

const (
	lockTimeout    = 5 * time.Second
	lockRetryDelay = 10 * time.Millisecond
	dirMode        = 0755
)

// inventoryFile is the on-disk format.
type inventoryFile struct {
	Version int    `json:"version"`
	Packs   []Pack `json:"packs"`
}

type jsonStore struct {
	path        string
	mu          sync.RWMutex
	now         func() time.Time
	lockTimeout time.Duration
}

// NewStore creates a JSON file backed inventory at path.
func NewStore(path string) Store {
	return newJSONStore(path)
}

func newJSONStore(path string) *jsonStore {
	return &jsonStore{path: path, now: time.Now, lockTimeout: lockTimeout}
}

func (s *jsonStore) Record(ctx context.Context, pack Pack) error {
	if pack.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPack)
	}
	if pack.Version.IsZero() {
		return fmt.Errorf("%w: version is required", ErrInvalidPack)
	}
	if pack.RecordedAt.IsZero() {
		pack.RecordedAt = s.now().UTC()
	}

	err := s.withExclusiveLock(ctx, func(f *inventoryFile) error {
		for i := range f.Packs {
			if f.Packs[i].Name == pack.Name {
				f.Packs[i] = pack
				return nil
			}
		}
		f.Packs = append(f.Packs, pack)
		return nil
	})
	if err == nil {
		slogger.For(ctx, slogger.CategoryResource).Info("recorded installed pack",
			"name", pack.Name, "version", pack.Version.String())
	}
	return err
}

func (s *jsonStore) Get(ctx context.Context, name string) (*Pack, error) {
	var result *Pack

	err := s.withSharedLock(ctx, func(f *inventoryFile) error {
		for i := range f.Packs {
			if f.Packs[i].Name == name {
				pack := f.Packs[i]
				result = &pack
				return nil
			}
		}
		return ErrNotFound
	})

	return result, err
}

func (s *jsonStore) Forget(ctx context.Context, name string) error {
	return s.withExclusiveLock(ctx, func(f *inventoryFile) error {
		for i := range f.Packs {
			if f.Packs[i].Name == name {
				f.Packs = slices.Delete(f.Packs, i, i+1)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (s *jsonStore) List(ctx context.Context) ([]Pack, error) {
	var result []Pack

	err := s.withSharedLock(ctx, func(f *inventoryFile) error {
		result = slices.Clone(f.Packs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(result, func(a, b Pack) int { return cmp.Compare(a.Name, b.Name) })
	return result, nil
}

func (s *jsonStore) Snapshot(ctx context.Context) (*catalog.InstalledSet, error) {
	packs, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	installed := make([]catalog.InstalledPack, len(packs))
	for i, p := range packs {
		installed[i] = catalog.InstalledPack{Name: p.Name, Version: p.Version, ID: p.ID}
	}
	return catalog.NewInstalledSet(installed), nil
}

// withSharedLock executes fn with a shared (read) lock.
func (s *jsonStore) withSharedLock(ctx context.Context, fn func(*inventoryFile) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	unlock, err := s.lock(ctx, false)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	return fn(f)
}

// withExclusiveLock executes fn with an exclusive (write) lock.
// Changes made by fn are persisted to disk.
func (s *jsonStore) withExclusiveLock(ctx context.Context, fn func(*inventoryFile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	unlock, err := s.lock(ctx, true)
	if err != nil {
		return err
	}
	defer unlock()

	f, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		return err
	}

	return s.save(f)
}

// lockPath is the sibling file guarding the inventory. The inventory itself
// is replaced on every save, so it cannot carry the lock.
func (s *jsonStore) lockPath() string {
	return s.path + ".lock"
}

// lock takes the inventory file lock, polling until lockTimeout elapses.
func (s *jsonStore) lock(ctx context.Context, exclusive bool) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), dirMode); err != nil {
		return nil, fmt.Errorf("create inventory directory: %w", err)
	}

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	fl := flock.New(s.lockPath())
	try := fl.TryRLockContext
	if exclusive {
		try = fl.TryLockContext
	}

	locked, err := try(lockCtx, lockRetryDelay)
	switch {
	case locked:
		return func() { fl.Unlock() }, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err == nil || errors.Is(err, context.DeadlineExceeded):
		return nil, ErrLockTimeout
	default:
		return nil, fmt.Errorf("acquire file lock: %w", err)
	}
}

func (s *jsonStore) load() (*inventoryFile, error) {
	data, err := os.ReadFile(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read inventory file: %w", err)
	}

	if len(data) == 0 {
		return &inventoryFile{Version: 1, Packs: []Pack{}}, nil
	}

	var f inventoryFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode inventory file: %w", err)
	}

	return &f, nil
}

// save writes the inventory through a temp file and rename.
func (s *jsonStore) save(f *inventoryFile) error {
	f.Version = 1

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "installed-*.json.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(f); err != nil {
		tmp.Close()
		return fmt.Errorf("encode inventory: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("rename inventory file: %w", err)
	}

	tmpPath = ""
	return nil
}
