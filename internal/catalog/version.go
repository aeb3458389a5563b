package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a dotted numeric pack version with two to four components
// (major.minor[.build[.revision]]).
//
// Components that were not written compare as zero, so 1.0 equals 1.0.0.0.
type Version struct {
	base     *semver.Version // major.minor.build
	revision uint64
	parts    int
}

// ParseVersion parses a dotted numeric version such as "7.0.8560.0".
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	fields := strings.Split(s, ".")
	if len(fields) < 2 || len(fields) > 4 {
		return Version{}, fmt.Errorf("%w: %q: want 2 to 4 components", ErrInvalidVersion, s)
	}

	var nums [4]uint64
	for i, f := range fields {
		if f == "" || strings.TrimLeft(f, "0123456789") != "" {
			return Version{}, fmt.Errorf("%w: %q: component %d is not a number", ErrInvalidVersion, s, i+1)
		}
		n, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %s", ErrInvalidVersion, s, err)
		}
		nums[i] = uint64(n)
	}

	return Version{
		base:     semver.New(nums[0], nums[1], nums[2], "", ""),
		revision: nums[3],
		parts:    len(fields),
	}, nil
}

// MustParseVersion is like ParseVersion but panics on error.
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// IsZero reports whether v was never parsed.
func (v Version) IsZero() bool {
	return v.base == nil
}

// Compare returns -1, 0 or 1 when v is older than, equal to or newer than o.
func (v Version) Compare(o Version) int {
	if c := v.semver().Compare(o.semver()); c != 0 {
		return c
	}
	switch {
	case v.revision < o.revision:
		return -1
	case v.revision > o.revision:
		return 1
	}
	return 0
}

// String formats the version with as many components as were parsed.
func (v Version) String() string {
	if v.base == nil {
		return ""
	}
	nums := []uint64{v.base.Major(), v.base.Minor(), v.base.Patch(), v.revision}
	parts := make([]string, v.parts)
	for i := range parts {
		parts[i] = strconv.FormatUint(nums[i], 10)
	}
	return strings.Join(parts, ".")
}

// MarshalText implements encoding.TextMarshaler.
func (v Version) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Version) UnmarshalText(text []byte) error {
	parsed, err := ParseVersion(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

func (v Version) semver() *semver.Version {
	if v.base == nil {
		return semver.New(0, 0, 0, "", "")
	}
	return v.base
}
