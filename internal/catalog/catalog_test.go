package catalog

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/railwatch/railwatch/internal/store"
)

func newCatalog(t *testing.T, env []Account) (*Catalog, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.json")
	c, err := New(env, store.NewFile(path))
	require.NoError(t, err)
	return c, path
}

func TestMergeOrderEnvFirst(t *testing.T) {
	c, _ := newCatalog(t, []Account{{Name: "env-a", Token: "t1"}})
	require.NoError(t, c.Add(Account{Name: "srv-b", Token: "t2"}))

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "env-a", all[0].Name)
	assert.Equal(t, "srv-b", all[1].Name)
}

func TestNoDeduplicationByName(t *testing.T) {
	c, _ := newCatalog(t, []Account{{Name: "dup", Token: "env-token"}})
	require.NoError(t, c.Add(Account{Name: "dup", Token: "server-token"}))

	all := c.All()
	require.Len(t, all, 2)
	assert.Equal(t, "env-token", all[0].Token)
	assert.Equal(t, "server-token", all[1].Token)
}

func TestAddValidation(t *testing.T) {
	c, _ := newCatalog(t, nil)
	assert.ErrorIs(t, c.Add(Account{Name: "", Token: "t"}), ErrInvalidAccount)
	assert.ErrorIs(t, c.Add(Account{Name: "n", Token: ""}), ErrInvalidAccount)
	assert.Empty(t, c.Persisted())
}

func TestRemovePersistedByIndex(t *testing.T) {
	c, _ := newCatalog(t, []Account{{Name: "env", Token: "t0"}})
	require.NoError(t, c.Add(Account{Name: "a", Token: "t1"}))
	require.NoError(t, c.Add(Account{Name: "b", Token: "t2"}))
	require.NoError(t, c.Add(Account{Name: "c", Token: "t3"}))

	ok, err := c.RemovePersisted(1)
	require.NoError(t, err)
	assert.True(t, ok)

	names := []string{}
	for _, a := range c.Persisted() {
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"a", "c"}, names)

	// Deletion never touches the env subset.
	assert.Len(t, c.Env(), 1)

	ok, err = c.RemovePersisted(5)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = c.RemovePersisted(-1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPersistedRoundTrip(t *testing.T) {
	c, path := newCatalog(t, nil)
	require.NoError(t, c.Add(Account{Name: "a", Token: "t1"}))
	require.NoError(t, c.Add(Account{Name: "b", Token: "t2"}))

	reloaded, err := New(nil, store.NewFile(path))
	require.NoError(t, err)
	assert.Equal(t, c.Persisted(), reloaded.Persisted())
}
