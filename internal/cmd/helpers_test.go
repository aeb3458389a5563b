package cmd

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mpcatalog/mpcatalog/internal/catalog"
	"github.com/mpcatalog/mpcatalog/internal/config"
	"github.com/mpcatalog/mpcatalog/internal/keychain"
)

type fakeKeychain struct {
	secrets map[string]string
	err     error
}

func (f *fakeKeychain) Set(account, secret string) error {
	f.secrets[account] = secret
	return nil
}

func (f *fakeKeychain) Get(account string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	s, ok := f.secrets[account]
	if !ok {
		return "", keychain.ErrNotFound
	}
	return s, nil
}

func (f *fakeKeychain) Delete(account string) error {
	delete(f.secrets, account)
	return nil
}

func TestProxyPassword(t *testing.T) {
	kc := &fakeKeychain{secrets: map[string]string{"proxy:svc": "s3cret"}}
	ctx := WithKeychain(context.Background(), kc)

	t.Run("no proxy", func(t *testing.T) {
		password, err := proxyPassword(ctx, config.ProxyConfig{Username: "svc"})
		require.NoError(t, err)
		assert.Empty(t, password)
	})

	t.Run("stored password", func(t *testing.T) {
		password, err := proxyPassword(ctx, config.ProxyConfig{Address: "http://proxy:3128", Username: "svc"})
		require.NoError(t, err)
		assert.Equal(t, "s3cret", password)
	})

	t.Run("missing password is allowed", func(t *testing.T) {
		password, err := proxyPassword(ctx, config.ProxyConfig{Address: "http://proxy:3128", Username: "other"})
		require.NoError(t, err)
		assert.Empty(t, password)
	})

	t.Run("keychain failure", func(t *testing.T) {
		broken := WithKeychain(context.Background(), &fakeKeychain{err: errors.New("locked")})
		_, err := proxyPassword(broken, config.ProxyConfig{Address: "http://proxy:3128", Username: "svc"})
		assert.ErrorContains(t, err, "locked")
	})

	t.Run("keychain missing from context", func(t *testing.T) {
		_, err := proxyPassword(context.Background(), config.ProxyConfig{Address: "http://proxy:3128", Username: "svc"})
		assert.Error(t, err)
	})
}

func TestWriteEntries(t *testing.T) {
	entries := []*catalog.Entry{
		catalog.NewEntry(catalog.Fields{
			SystemName:  "Fabrikam.DNS",
			DisplayName: "DNS Monitoring",
			Version:     catalog.MustParseVersion("2.0"),
		}, []string{"DNS", "Network"}),
		catalog.NewEntry(catalog.Fields{
			SystemName:  "Contoso.SQL",
			DisplayName: "SQL Server Monitoring",
			Version:     catalog.MustParseVersion("7.1.0.0"),
		}, nil),
	}
	fields, err := catalog.ParseFields("system-name,version,tags")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writeEntries(&buf, entries, fields))

	assert.Equal(t,
		"SYSTEM NAME   VERSION  TAGS\n"+
			"Fabrikam.DNS  2.0      dns, network\n"+
			"Contoso.SQL   7.1.0.0  \n",
		buf.String())
}

func TestPrintNoMatches(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printNoMatches(&buf, "", []string{"sql"}))
		assert.Equal(t, "No management packs found.\n", buf.String())
	})

	t.Run("suggests recommended tags", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printNoMatches(&buf, "sq", []string{"sql", "dns", "sharepoint"}))
		assert.Contains(t, buf.String(), "No management packs match \"sq\".\n")
		assert.Contains(t, buf.String(), "Recommended tags: sql")
	})

	t.Run("no suggestions", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, printNoMatches(&buf, "zzz", []string{"sql"}))
		assert.Equal(t, "No management packs match \"zzz\".\n", buf.String())
	})
}

func TestFormatTimeAgo(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"just now", now.Add(-10 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-2 * 24 * time.Hour), "2d ago"},
		{"weeks", now.Add(-14 * 24 * time.Hour), "2w ago"},
		{"months", now.Add(-65 * 24 * time.Hour), "2mo ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatTimeAgo(tt.t))
		})
	}
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	assert.Nil(t, ConfigFromContext(ctx))
	assert.Nil(t, LoaderFromContext(ctx))
	assert.Nil(t, InventoryFromContext(ctx))
	assert.Nil(t, KeychainFromContext(ctx))
	assert.Nil(t, PrompterFromContext(ctx))

	cfg := &config.Config{}
	assert.Same(t, cfg, ConfigFromContext(WithConfig(ctx, cfg)))

	_, err := requireConfig(ctx)
	assert.Error(t, err)
	_, err = requireInventory(ctx)
	assert.Error(t, err)
	_, err = requirePrompter(ctx)
	assert.Error(t, err)
}
