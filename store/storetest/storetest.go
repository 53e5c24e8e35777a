// Package storetest is the shared conformance suite every sdk.State
// backend runs in its own tests.
package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/contract"
	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// Opener returns a fresh, empty store. The suite closes it.
type Opener func(t *testing.T) sdk.State

var errAbort = errors.New("abort")

// Run executes the conformance suite against stores built by open.
func Run(t *testing.T, open Opener) {
	t.Run("set get has", func(t *testing.T) { testSetGetHas(t, open(t)) })
	t.Run("failed update rolls back", func(t *testing.T) { testRollback(t, open(t)) })
	t.Run("view is read only", func(t *testing.T) { testReadOnly(t, open(t)) })
	t.Run("foreach prefix", func(t *testing.T) { testForEach(t, open(t)) })
	t.Run("extend ttl", func(t *testing.T) { testExtendTTL(t, open(t)) })
	t.Run("engine lifecycle", func(t *testing.T) { testEngine(t, open(t)) })
}

func closeStore(t *testing.T, s sdk.State) {
	t.Cleanup(func() { _ = s.Close() })
}

func testSetGetHas(t *testing.T, s sdk.State) {
	closeStore(t, s)
	ctx := context.Background()
	key := string([]byte{0x10, 0x00, 0xff, 'k'})

	require.NoError(t, s.Update(ctx, func(tx sdk.Tx) error {
		ok, err := tx.Has(key)
		require.NoError(t, err)
		assert.False(t, ok)
		if err := tx.Set(key, []byte("v1")); err != nil {
			return err
		}
		// writes are visible inside their own transaction
		v, ok, err := tx.Get(key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v1"), v)
		return nil
	}))

	require.NoError(t, s.Update(ctx, func(tx sdk.Tx) error {
		return tx.Set(key, []byte("v2"))
	}))

	require.NoError(t, s.View(ctx, func(tx sdk.Tx) error {
		v, ok, err := tx.Get(key)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v2"), v)

		_, ok, err = tx.Get("missing")
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = tx.Has(key)
		require.NoError(t, err)
		assert.True(t, ok)
		return nil
	}))
}

func testRollback(t *testing.T, s sdk.State) {
	closeStore(t, s)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx sdk.Tx) error {
		return tx.Set("a", []byte("keep"))
	}))

	err := s.Update(ctx, func(tx sdk.Tx) error {
		if err := tx.Set("a", []byte("lost")); err != nil {
			return err
		}
		if err := tx.Set("b", []byte("lost")); err != nil {
			return err
		}
		return errAbort
	})
	assert.ErrorIs(t, err, errAbort)

	require.NoError(t, s.View(ctx, func(tx sdk.Tx) error {
		v, _, err := tx.Get("a")
		require.NoError(t, err)
		assert.Equal(t, []byte("keep"), v)
		ok, err := tx.Has("b")
		require.NoError(t, err)
		assert.False(t, ok)
		return nil
	}))
}

func testReadOnly(t *testing.T, s sdk.State) {
	closeStore(t, s)
	err := s.View(context.Background(), func(tx sdk.Tx) error {
		return tx.Set("x", []byte("y"))
	})
	assert.ErrorIs(t, err, sdk.ErrReadOnly)
}

func testForEach(t *testing.T, s sdk.State) {
	closeStore(t, s)
	ctx := context.Background()
	require.NoError(t, s.Update(ctx, func(tx sdk.Tx) error {
		for _, k := range []string{"\x04b", "\x04a", "\x04c", "\x05a", "\x03z", "\x04"} {
			if err := tx.Set(k, []byte(k)); err != nil {
				return err
			}
		}
		return nil
	}))

	var keys []string
	require.NoError(t, s.View(ctx, func(tx sdk.Tx) error {
		return tx.ForEach("\x04", func(key string, value []byte) error {
			assert.Equal(t, key, string(value))
			keys = append(keys, key)
			return nil
		})
	}))
	assert.Equal(t, []string{"\x04", "\x04a", "\x04b", "\x04c"}, keys)

	err := s.View(ctx, func(tx sdk.Tx) error {
		return tx.ForEach("\x04", func(string, []byte) error { return errAbort })
	})
	assert.ErrorIs(t, err, errAbort)
}

func testExtendTTL(t *testing.T, s sdk.State) {
	closeStore(t, s)
	require.NoError(t, s.Update(context.Background(), func(tx sdk.Tx) error {
		return tx.ExtendTTL(contract.TTLThreshold, contract.TTLExtendTo)
	}))
	err := s.View(context.Background(), func(tx sdk.Tx) error {
		return tx.ExtendTTL(1, 1)
	})
	assert.ErrorIs(t, err, sdk.ErrReadOnly)
}

// testEngine drives a short governance flow end to end over the backend.
func testEngine(t *testing.T, s sdk.State) {
	closeStore(t, s)
	ctx := context.Background()
	clock := sdk.NewManualClock(1_000)
	eng := contract.New(s, contract.WithClock(clock))
	admin := sdk.Address("hive:admin")
	alice := sdk.Address("hive:alice")
	bob := sdk.Address("hive:bob")

	require.NoError(t, eng.Initialize(sdk.AsSender(ctx, admin), admin, dao.SettingsParams{
		ProposalThreshold: 1, Quorum: 5000, VotingPeriod: 10, ExecutionDelay: 5,
	}))
	require.NoError(t, eng.AddMember(sdk.AsSender(ctx, admin), alice, 60))
	require.NoError(t, eng.AddMember(sdk.AsSender(ctx, admin), bob, 40))

	id, err := eng.CreateProposal(sdk.AsSender(ctx, alice), alice, "t", "d")
	require.NoError(t, err)
	require.NoError(t, eng.CastVote(sdk.AsSender(ctx, alice), alice, id, dao.VoteFor))
	require.NoError(t, eng.CastVote(sdk.AsSender(ctx, bob), bob, id, dao.VoteAgainst))
	assert.ErrorIs(t, eng.CastVote(sdk.AsSender(ctx, bob), bob, id, dao.VoteFor), contract.ErrAlreadyVoted)

	clock.Advance(11)
	status, err := eng.FinalizeProposal(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, dao.StatusPassed, status)
	assert.ErrorIs(t, eng.ExecuteProposal(ctx, id), contract.ErrExecutionDelayNotElapsed)
	clock.Advance(5)
	require.NoError(t, eng.ExecuteProposal(ctx, id))

	members, err := eng.ListMembers(ctx)
	require.NoError(t, err)
	assert.Len(t, members, 2)
	votes, err := eng.ListVotes(ctx, id)
	require.NoError(t, err)
	assert.Len(t, votes, 2)

	settings, err := eng.GetDaoSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), settings.TotalVotingPower)
	assert.Equal(t, uint64(1), settings.ProposalCount)
}
