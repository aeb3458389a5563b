// Package catalog holds the in-memory view of the community management pack
// catalog and the matching of catalog entries against installed packs.
package catalog

import (
	"errors"
	"slices"
	"sync/atomic"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sentinel errors for catalog operations.
var (
	ErrNotFound             = errors.New("entry not found")
	ErrAlreadyMatched       = errors.New("installed packs already matched for this catalog")
	ErrUnknownField         = errors.New("unknown field")
	ErrInvalidVersion       = errors.New("invalid version")
	ErrConnectivityRequired = errors.New(ConnectivityNotice)
)

// ConnectivityNotice is the message shown to users when the catalog cannot be
// reached at all.
const ConnectivityNotice = "The Management Pack Catalog requires an outgoing Internet connection, " +
	"please see http://mpcatalog.net/help for additional details"

const (
	shortDescriptionLimit = 105
	shortDescriptionCut   = 100

	notInstalledVersion = "Not Installed"
)

// Status describes how a catalog entry relates to the installed packs.
type Status string

const (
	StatusNotInstalled    Status = "Not Installed"
	StatusInstalled       Status = "Installed"
	StatusUpdateAvailable Status = "Update available"
)

// IndexEntry is one line of the catalog index document.
type IndexEntry struct {
	SystemName string
	Active     bool
}

// InstalledPack is a management pack present in the local management group.
type InstalledPack struct {
	Name    string  // Canonical name, matched against Entry.SystemName
	Version Version // Installed version
	ID      string  // Opaque identifier from the management group
}

// Fields carries the published metadata of a pack as it appears in its
// detail document.
type Fields struct {
	SystemName       string
	DisplayName      string
	Author           string
	URL              string
	Description      string
	IsFree           bool
	CommercialAuthor bool
	Version          Version
	Readme           string
}

// Entry is one catalogued management pack.
//
// Published fields never change after construction. The installed link is set
// by Annotate and may be read concurrently with it.
type Entry struct {
	Fields

	tags      []string
	installed atomic.Pointer[InstalledPack]
}

// NewEntry creates an entry from its published fields. Tags are lower-cased
// and sorted; a nil tag list stays nil.
func NewEntry(fields Fields, tags []string) *Entry {
	return &Entry{Fields: fields, tags: normalizeTags(tags)}
}

// Tags returns the entry's tags, lower-cased and sorted ascending.
// Returns nil when the detail document carried no tags.
func (e *Entry) Tags() []string {
	if e.tags == nil {
		return nil
	}
	return slices.Clone(e.tags)
}

// Installed returns the installed pack matched to this entry, or nil.
func (e *Entry) Installed() *InstalledPack {
	return e.installed.Load()
}

// IsInstalled reports whether the entry has been matched to an installed pack.
func (e *Entry) IsInstalled() bool {
	return e.installed.Load() != nil
}

// ShortDescription returns the description cut down for single-line display.
func (e *Entry) ShortDescription() string {
	runes := []rune(e.Description)
	if len(runes) > shortDescriptionLimit {
		return string(runes[:shortDescriptionCut]) + "..."
	}
	return e.Description
}

// InstalledVersion returns the installed version, or "Not Installed".
func (e *Entry) InstalledVersion() string {
	p := e.installed.Load()
	if p == nil {
		return notInstalledVersion
	}
	return p.Version.String()
}

// Status compares the catalog version against the installed version.
func (e *Entry) Status() Status {
	p := e.installed.Load()
	switch {
	case p == nil:
		return StatusNotInstalled
	case e.Version.Compare(p.Version) > 0:
		return StatusUpdateAvailable
	default:
		return StatusInstalled
	}
}

// Fold lower-cases s for case-insensitive comparisons.
func Fold(s string) string {
	// Casers carry state and must not be shared between goroutines.
	return cases.Lower(language.Und).String(s)
}

func normalizeTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = Fold(tag)
	}
	slices.Sort(out)
	return out
}
