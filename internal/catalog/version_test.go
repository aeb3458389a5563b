package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVersion(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "two components", input: "1.0", want: "1.0"},
		{name: "three components", input: "1.2.3", want: "1.2.3"},
		{name: "four components", input: "7.0.8560.0", want: "7.0.8560.0"},
		{name: "surrounding whitespace", input: " 1.2 ", want: "1.2"},
		{name: "leading zeros", input: "1.02", want: "1.2"},
		{name: "largest component", input: "1.2147483647", want: "1.2147483647"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseVersion(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
			assert.False(t, v.IsZero())
		})
	}
}

func TestParseVersion_Invalid(t *testing.T) {
	inputs := []string{"", "1", "1.2.3.4.5", "1.x", "1..2", "-1.0", "+1.0", "1.0-beta", "v1.0", "99999999999.0", "1.2147483648", "4294967295.0"}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := ParseVersion(input)

			assert.ErrorIs(t, err, ErrInvalidVersion)
		})
	}
}

func TestVersion_Compare(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0", "1.0", 0},
		{"1.0", "1.0.0.0", 0},
		{"1.0.0.1", "1.0.0.0", 1},
		{"1.0.0.0", "1.0.0.1", -1},
		{"1.10", "1.9", 1},
		{"2.0", "1.99.99.99", 1},
		{"7.0.8560.0", "7.0.8560.1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.a+" vs "+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParseVersion(tt.a).Compare(MustParseVersion(tt.b)))
		})
	}

	t.Run("zero version is oldest", func(t *testing.T) {
		assert.Equal(t, -1, Version{}.Compare(MustParseVersion("0.0.0.1")))
		assert.Equal(t, 0, Version{}.Compare(MustParseVersion("0.0")))
	})
}

func TestVersion_Text(t *testing.T) {
	type doc struct {
		Version Version `json:"version"`
	}

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"version":"1.2.3.4"}`), &d))
	assert.Equal(t, "1.2.3.4", d.Version.String())

	out, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.2.3.4"}`, string(out))

	assert.ErrorIs(t, json.Unmarshal([]byte(`{"version":"latest"}`), &d), ErrInvalidVersion)
}

func TestMustParseVersion_Panics(t *testing.T) {
	assert.Panics(t, func() { MustParseVersion("nope") })
}
