package memory

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/sdk"
	"dao_gov/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) sdk.State { return New() })
}

func TestSnapshotConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) sdk.State {
		s, err := Open(filepath.Join(t.TempDir(), "state.json"))
		require.NoError(t, err)
		return s
	})
}

// TestSnapshotSurvivesReopen checks binary keys make it through the file.
func TestSnapshotSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	s, err := Open(path)
	require.NoError(t, err)
	key := string([]byte{0x20, 0x00, 0x01, 0xff})
	require.NoError(t, s.Update(context.Background(), func(tx sdk.Tx) error {
		if err := tx.Set(key, []byte{0, 1, 2}); err != nil {
			return err
		}
		return tx.ExtendTTL(10000, 10000)
	}))
	require.NoError(t, s.Close())

	again, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, map[string][]byte{key: {0, 1, 2}}, again.Dump())
	assert.Equal(t, TTL{Threshold: 10000, ExtendTo: 10000, Extensions: 1}, again.LastTTL())
}

func TestClosedStore(t *testing.T) {
	s := New()
	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.View(context.Background(), func(sdk.Tx) error { return nil }), ErrClosed)
	assert.ErrorIs(t, s.Update(context.Background(), func(sdk.Tx) error { return nil }), ErrClosed)
}
