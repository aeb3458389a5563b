package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseField(t *testing.T) {
	t.Run("accepts every known field", func(t *testing.T) {
		for _, f := range AllFields {
			got, err := ParseField(string(f))
			require.NoError(t, err)
			assert.Equal(t, f, got)
		}
	})

	t.Run("ignores case and whitespace", func(t *testing.T) {
		got, err := ParseField(" Installed-Version ")

		require.NoError(t, err)
		assert.Equal(t, FieldInstalledVersion, got)
	})

	t.Run("rejects unknown names", func(t *testing.T) {
		_, err := ParseField("ManagementPackSystemName")

		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestParseFields(t *testing.T) {
	fields, err := ParseFields("name,version,status")
	require.NoError(t, err)
	assert.Equal(t, []Field{FieldDisplayName, FieldVersion, FieldStatus}, fields)

	_, err = ParseFields("name,,status")
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestEntry_Value(t *testing.T) {
	entry := NewEntry(Fields{
		SystemName:  "Contoso.SQL",
		DisplayName: "Contoso SQL Monitoring",
		Author:      "Contoso",
		URL:         "https://example.com/sql",
		Description: "Monitors SQL.",
		Version:     MustParseVersion("1.2.0.0"),
	}, []string{"SQL", "database"})

	tests := []struct {
		field Field
		want  string
	}{
		{FieldSystemName, "Contoso.SQL"},
		{FieldDisplayName, "Contoso SQL Monitoring"},
		{FieldAuthor, "Contoso"},
		{FieldVersion, "1.2.0.0"},
		{FieldInstalledVersion, "Not Installed"},
		{FieldStatus, "Not Installed"},
		{FieldURL, "https://example.com/sql"},
		{FieldDescription, "Monitors SQL."},
		{FieldTags, "database, sql"},
	}

	for _, tt := range tests {
		t.Run(string(tt.field), func(t *testing.T) {
			got, err := entry.Value(tt.field)

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown field", func(t *testing.T) {
		_, err := entry.Value(Field("ManagementPackSystemName"))

		assert.ErrorIs(t, err, ErrUnknownField)
	})
}

func TestField_Header(t *testing.T) {
	assert.Equal(t, "INSTALLED VERSION", FieldInstalledVersion.Header())
	assert.Equal(t, "NAME", FieldDisplayName.Header())
}
