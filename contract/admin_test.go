package contract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/contract"
	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

func TestInitializeWritesZeroAggregates(t *testing.T) {
	f := newDAO(t)
	s := f.settings()
	assert.Equal(t, scenarioParams, s.Params())
	assert.Zero(t, s.TotalVotingPower)
	assert.Zero(t, s.MemberCount)
	assert.Zero(t, s.ProposalCount)

	admin, err := f.engine.GetAdmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, adminAddr, admin)
}

// TestInitializeOnlyOnce makes sure the second init fails whatever the args.
func TestInitializeOnlyOnce(t *testing.T) {
	f := newDAO(t)
	f.assertUnchanged(contract.ErrAlreadyInitialized, func() error {
		return f.engine.Initialize(as(adminAddr), adminAddr, scenarioParams)
	})
	f.assertUnchanged(contract.ErrAlreadyInitialized, func() error {
		return f.engine.Initialize(as(bob), bob, dao.SettingsParams{Quorum: 99999})
	})
}

func TestInitializeValidation(t *testing.T) {
	t.Run("quorum above 100%", func(t *testing.T) {
		f := newFixture(t)
		f.assertUnchanged(contract.ErrInvalidQuorum, func() error {
			return f.engine.Initialize(as(adminAddr), adminAddr, dao.SettingsParams{Quorum: 10001})
		})
	})
	t.Run("quorum past 32 bits", func(t *testing.T) {
		f := newFixture(t)
		f.assertUnchanged(contract.ErrInvalidQuorum, func() error {
			return f.engine.Initialize(as(adminAddr), adminAddr, dao.SettingsParams{Quorum: 1<<32 + 3000})
		})
	})
	t.Run("quorum exactly 100%", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.engine.Initialize(as(adminAddr), adminAddr, dao.SettingsParams{Quorum: 10000}))
	})
	t.Run("caller is not the admin", func(t *testing.T) {
		f := newFixture(t)
		f.assertUnchanged(contract.ErrUnauthorized, func() error {
			return f.engine.Initialize(as(bob), adminAddr, scenarioParams)
		})
	})
	t.Run("no env at all", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.Initialize(context.Background(), adminAddr, scenarioParams)
		assert.ErrorIs(t, err, contract.ErrUnauthorized)
		assert.ErrorIs(t, err, sdk.ErrMissingAuth)
	})
	t.Run("empty admin", func(t *testing.T) {
		f := newFixture(t)
		err := f.engine.Initialize(as(""), "", scenarioParams)
		assert.ErrorIs(t, err, contract.ErrInvalidAddress)
	})
}

func TestOperationsNeedInitialize(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checks := map[string]error{
		"add_member":          f.engine.AddMember(as(adminAddr), alice, 1),
		"update_voting_power": f.engine.UpdateVotingPower(as(adminAddr), alice, 1),
		"deactivate_member":   f.engine.DeactivateMember(as(adminAddr), alice),
		"cast_vote":           f.engine.CastVote(as(alice), alice, 1, dao.VoteFor),
		"execute_proposal":    f.engine.ExecuteProposal(ctx, 1),
		"update_dao_settings": f.engine.UpdateDaoSettings(as(adminAddr), scenarioParams),
		"transfer_admin":      f.engine.TransferAdmin(as(adminAddr), bob),
	}
	_, checks["create_proposal"] = f.engine.CreateProposal(as(alice), alice, "t", "d")
	_, checks["finalize_proposal"] = f.engine.FinalizeProposal(ctx, 1)
	_, checks["get_dao_settings"] = f.engine.GetDaoSettings(ctx)
	for op, err := range checks {
		assert.ErrorIs(t, err, contract.ErrNotInitialized, op)
	}
	assert.Equal(t, 0, f.store.Len())
}

func TestUpdateDaoSettings(t *testing.T) {
	f := newDAO(t)
	f.addMember(alice, 40)
	next := dao.SettingsParams{ProposalThreshold: 50, Quorum: 10000, VotingPeriod: 10, ExecutionDelay: 0}
	require.NoError(t, f.engine.UpdateDaoSettings(as(adminAddr), next))

	s := f.settings()
	assert.Equal(t, next, s.Params())
	assert.Equal(t, uint64(40), s.TotalVotingPower, "aggregates survive")
	assert.Equal(t, uint64(1), s.MemberCount)

	f.assertUnchanged(contract.ErrInvalidQuorum, func() error {
		return f.engine.UpdateDaoSettings(as(adminAddr), dao.SettingsParams{Quorum: 10001})
	})
	f.assertUnchanged(contract.ErrUnauthorized, func() error {
		return f.engine.UpdateDaoSettings(as(alice), scenarioParams)
	})
}

// TestSettingsChangeKeepsInFlightTimestamps pins that a proposal keeps the
// period and delay it was created with.
func TestSettingsChangeKeepsInFlightTimestamps(t *testing.T) {
	f := newDAO(t)
	ctx := context.Background()
	f.addMember(alice, 100)
	id := f.propose(alice)
	f.vote(alice, id, dao.VoteFor)

	require.NoError(t, f.engine.UpdateDaoSettings(as(adminAddr), dao.SettingsParams{
		ProposalThreshold: 10, Quorum: 3000, VotingPeriod: 5, ExecutionDelay: 100000,
	}))
	p := f.proposal(id)
	assert.Equal(t, startTime+1000, p.VotingEndsAt)
	assert.Equal(t, startTime+1500, p.ExecutableAt)

	f.clock.Set(startTime + 1001)
	_, err := f.engine.FinalizeProposal(ctx, id)
	require.NoError(t, err)
	f.clock.Set(startTime + 1500)
	require.NoError(t, f.engine.ExecuteProposal(ctx, id))

	next := f.propose(alice)
	assert.Equal(t, startTime+1500+5, f.proposal(next).VotingEndsAt)
}

func TestTransferAdmin(t *testing.T) {
	f := newDAO(t)
	f.assertUnchanged(contract.ErrUnauthorized, func() error {
		return f.engine.TransferAdmin(as(bob), bob)
	})

	require.NoError(t, f.engine.TransferAdmin(as(adminAddr), bob))
	admin, err := f.engine.GetAdmin(context.Background())
	require.NoError(t, err)
	assert.Equal(t, bob, admin)

	// old admin is out right away
	assert.ErrorIs(t, f.engine.AddMember(as(adminAddr), alice, 1), contract.ErrUnauthorized)
	require.NoError(t, f.engine.AddMember(as(bob), alice, 1))
	assert.Equal(t, contract.EventAdminTransferred, f.events.kinds()[1])
}

func TestTransferAdminRejectsEmptyAddress(t *testing.T) {
	f := newDAO(t)
	f.assertUnchanged(contract.ErrInvalidAddress, func() error {
		return f.engine.TransferAdmin(as(adminAddr), "")
	})
}
