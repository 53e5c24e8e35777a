package bolt

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
	storetest.Run(t, func(t *testing.T) sdk.State {
		s, err := Open(filepath.Join(t.TempDir(), "dao.bolt"))
		require.NoError(t, err)
		return s
	})
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestSecondOpenIsLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dao.bolt")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = Open(path)
	assert.ErrorIs(t, err, ErrLocked)
}

func TestTTLSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dao.bolt")
	s, err := Open(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Update(context.Background(), func(tx sdk.Tx) error {
			return tx.ExtendTTL(10000, 10000)
		}))
	}
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ttl, err := s.LastTTL()
	require.NoError(t, err)
	assert.Equal(t, TTL{Threshold: 10000, ExtendTo: 10000, Extensions: 3}, ttl)
}
