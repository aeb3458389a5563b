package catalog

import "slices"

// KeyFunc derives the catalog key of an installed pack.
type KeyFunc func(InstalledPack) string

// ByName keys an installed pack by its canonical name.
func ByName(p InstalledPack) string {
	return p.Name
}

// InstalledSet is a read-only snapshot of the packs installed in the
// management group. Callers build it explicitly and hand it to the store.
type InstalledSet struct {
	packs []InstalledPack
}

// NewInstalledSet snapshots the given packs. Later changes to the slice are
// not visible through the set.
func NewInstalledSet(packs []InstalledPack) *InstalledSet {
	return &InstalledSet{packs: slices.Clone(packs)}
}

// Len returns the number of installed packs.
func (s *InstalledSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.packs)
}

// Packs returns a copy of the installed packs.
func (s *InstalledSet) Packs() []InstalledPack {
	if s == nil {
		return nil
	}
	return slices.Clone(s.packs)
}

// Annotate links entries to the installed packs they describe. Each item is
// keyed with keyOf and looked up in entries; items without a catalog entry are
// ignored, as are entries without an installed item. Returns the number of
// links made.
//
// The links point into items, which must not be modified afterwards.
func Annotate(entries map[string]*Entry, items []InstalledPack, keyOf KeyFunc) int {
	if keyOf == nil {
		keyOf = ByName
	}

	matched := 0
	for i := range items {
		entry, ok := entries[keyOf(items[i])]
		if !ok {
			continue
		}
		if entry.installed.Swap(&items[i]) == nil {
			matched++
		}
	}
	return matched
}
