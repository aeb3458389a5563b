package prompt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHuhPrompter_Print(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, true)

	p.Print("Recorded Contoso.SQL 1.0.0.0")

	assert.Equal(t, "Recorded Contoso.SQL 1.0.0.0\n", buf.String())
}

func TestHuhPrompter_Choice_NoOptions(t *testing.T) {
	p := New(&bytes.Buffer{}, true)

	_, err := p.Choice("Pick a pack", nil)

	assert.ErrorIs(t, err, ErrNoOptions)
}

func TestIndexOptions(t *testing.T) {
	opts := indexOptions([]string{"SQL Server", "Exchange"})

	require.Len(t, opts, 2)
	assert.Equal(t, "SQL Server", opts[0].Key)
	assert.Equal(t, 0, opts[0].Value)
	assert.Equal(t, "Exchange", opts[1].Key)
	assert.Equal(t, 1, opts[1].Value)
}

func TestNotEmpty(t *testing.T) {
	assert.NoError(t, notEmpty("secret"))
	assert.ErrorIs(t, notEmpty(""), ErrEmpty)
	assert.ErrorIs(t, notEmpty("   "), ErrEmpty)
}
