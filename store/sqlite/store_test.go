package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/sdk"
	"dao_gov/store/storetest"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "dao.db"))
	require.NoError(t, err)
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) sdk.State { return openTempStore(t) })
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

// TestReopenKeepsStateAndSkipsMigrations makes sure a second Open does not
// trip over the schema it already created.
func TestReopenKeepsStateAndSkipsMigrations(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dao.db")
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Update(context.Background(), func(tx sdk.Tx) error {
		if err := tx.Set("k", []byte("v")); err != nil {
			return err
		}
		return tx.ExtendTTL(10000, 10000)
	}))
	require.NoError(t, s.Update(context.Background(), func(tx sdk.Tx) error {
		return tx.ExtendTTL(10000, 10000)
	}))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = again.Close() })
	require.NoError(t, again.View(context.Background(), func(tx sdk.Tx) error {
		v, ok, err := tx.Get("k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), v)
		return nil
	}))

	threshold, extendTo, n, err := again.LastTTL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint32(10000), threshold)
	assert.Equal(t, uint32(10000), extendTo)
	assert.Equal(t, uint64(2), n)
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte{0x05}, prefixEnd([]byte{0x04}))
	assert.Equal(t, []byte{0x05}, prefixEnd([]byte{0x04, 0xff}))
	assert.Nil(t, prefixEnd([]byte{0xff, 0xff}))
}

func TestExtractUpMigration(t *testing.T) {
	got := extractUpMigration("-- +migrate Up\nCREATE TABLE a;\n-- +migrate Down\nDROP TABLE a;\n")
	assert.Equal(t, "\nCREATE TABLE a;\n", got)
	assert.Equal(t, "SELECT 1;", extractUpMigration("SELECT 1;"))
}
