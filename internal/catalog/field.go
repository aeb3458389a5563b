package catalog

import (
	"fmt"
	"strings"
)

// Field names a displayable attribute of an entry.
type Field string

const (
	FieldSystemName       Field = "system-name"
	FieldDisplayName      Field = "name"
	FieldAuthor           Field = "author"
	FieldVersion          Field = "version"
	FieldInstalledVersion Field = "installed-version"
	FieldStatus           Field = "status"
	FieldURL              Field = "url"
	FieldDescription      Field = "description"
	FieldTags             Field = "tags"
)

// AllFields lists every Field in display order.
var AllFields = []Field{
	FieldSystemName,
	FieldDisplayName,
	FieldAuthor,
	FieldVersion,
	FieldInstalledVersion,
	FieldStatus,
	FieldURL,
	FieldDescription,
	FieldTags,
}

// Header returns the column heading for the field.
func (f Field) Header() string {
	return strings.ToUpper(strings.ReplaceAll(string(f), "-", " "))
}

// ParseField resolves a field name, ignoring case.
// Returns ErrUnknownField for names outside AllFields.
func ParseField(name string) (Field, error) {
	want := Field(strings.ToLower(strings.TrimSpace(name)))
	for _, f := range AllFields {
		if f == want {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, name)
}

// ParseFields resolves a comma separated list of field names.
func ParseFields(list string) ([]Field, error) {
	var fields []Field
	for _, name := range strings.Split(list, ",") {
		f, err := ParseField(name)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	return fields, nil
}

// Value renders a field of the entry as display text.
func (e *Entry) Value(f Field) (string, error) {
	switch f {
	case FieldSystemName:
		return e.SystemName, nil
	case FieldDisplayName:
		return e.DisplayName, nil
	case FieldAuthor:
		return e.Author, nil
	case FieldVersion:
		return e.Version.String(), nil
	case FieldInstalledVersion:
		return e.InstalledVersion(), nil
	case FieldStatus:
		return string(e.Status()), nil
	case FieldURL:
		return e.URL, nil
	case FieldDescription:
		return e.ShortDescription(), nil
	case FieldTags:
		return strings.Join(e.tags, ", "), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownField, string(f))
}
