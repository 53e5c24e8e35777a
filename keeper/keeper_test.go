package keeper

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/contract"
	"dao_gov/contract/dao"
	"dao_gov/sdk"
	"dao_gov/store/memory"
)

const (
	admin = sdk.Address("hive:admin")
	alice = sdk.Address("hive:alice")
	bob   = sdk.Address("hive:bob")
)

type setup struct {
	eng   *contract.Engine
	clock *sdk.ManualClock
}

func newSetup(t *testing.T) setup {
	t.Helper()
	clock := sdk.NewManualClock(1_000)
	eng := contract.New(memory.New(), contract.WithClock(clock))
	ctx := context.Background()
	require.NoError(t, eng.Initialize(sdk.AsSender(ctx, admin), admin, dao.SettingsParams{
		ProposalThreshold: 1, Quorum: 5000, VotingPeriod: 100, ExecutionDelay: 50,
	}))
	require.NoError(t, eng.AddMember(sdk.AsSender(ctx, admin), alice, 60))
	require.NoError(t, eng.AddMember(sdk.AsSender(ctx, admin), bob, 40))
	return setup{eng: eng, clock: clock}
}

func (s setup) propose(t *testing.T, choice dao.VoteChoice) uint64 {
	t.Helper()
	ctx := context.Background()
	id, err := s.eng.CreateProposal(sdk.AsSender(ctx, alice), alice, "title", "body")
	require.NoError(t, err)
	if choice != dao.VoteUnspecified {
		require.NoError(t, s.eng.CastVote(sdk.AsSender(ctx, alice), alice, id, choice))
	}
	return id
}

func (s setup) status(t *testing.T, id uint64) dao.ProposalStatus {
	t.Helper()
	p, err := s.eng.GetProposal(context.Background(), id)
	require.NoError(t, err)
	return p.Status
}

type tickRecorder struct{ reports []Report }

func (r *tickRecorder) ObserveTick(rep Report, _ time.Duration) { r.reports = append(r.reports, rep) }

func TestTickFinalizesEndedProposals(t *testing.T) {
	s := newSetup(t)
	passing := s.propose(t, dao.VoteFor)
	failing := s.propose(t, dao.VoteAgainst)
	rec := &tickRecorder{}
	k := New(s.eng, WithObserver(rec))

	r, err := k.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 2, NextStart: 1}, r)

	s.clock.Advance(101)
	r, err = k.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 0, r.Executed)
	assert.Equal(t, uint64(3), r.NextStart)
	assert.Equal(t, dao.StatusPassed, s.status(t, passing))
	assert.Equal(t, dao.StatusFailed, s.status(t, failing))
	assert.Len(t, rec.reports, 2)
}

func TestTickExecutesWhenEnabled(t *testing.T) {
	s := newSetup(t)
	id := s.propose(t, dao.VoteFor)
	k := New(s.eng, WithExecute(true))

	s.clock.Advance(101)
	r, err := k.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Passed)
	assert.Equal(t, 0, r.Executed)
	// passed but waiting for the delay, so the cursor stays put
	assert.Equal(t, uint64(1), r.NextStart)

	s.clock.Advance(50)
	r, err = k.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Executed)
	assert.Equal(t, uint64(2), r.NextStart)
	assert.Equal(t, dao.StatusExecuted, s.status(t, id))

	r, err = k.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{NextStart: 2}, r)
}

func TestCursorStopsAtFirstUnsettled(t *testing.T) {
	s := newSetup(t)
	first := s.propose(t, dao.VoteAgainst)
	s.clock.Advance(60)
	second := s.propose(t, dao.VoteFor)
	k := New(s.eng)

	s.clock.Advance(41)
	r, err := k.Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, second, r.NextStart)
	assert.Equal(t, dao.StatusFailed, s.status(t, first))
	assert.Equal(t, dao.StatusActive, s.status(t, second))
}

func TestTickBeforeInitialize(t *testing.T) {
	eng := contract.New(memory.New(), contract.WithClock(sdk.NewManualClock(1)))
	r, err := New(eng).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Report{NextStart: 1}, r)
}

type brokenEngine struct {
	Engine
	listErr     error
	finalizeErr error
	proposals   dao.ProposalList
}

func (b *brokenEngine) Now() uint64 { return 1_000 }

func (b *brokenEngine) ListProposals(context.Context, uint64, int) (dao.ProposalList, error) {
	return b.proposals, b.listErr
}

func (b *brokenEngine) FinalizeProposal(context.Context, uint64) (dao.ProposalStatus, error) {
	return dao.StatusUnspecified, b.finalizeErr
}

func TestTickErrors(t *testing.T) {
	listFails := &brokenEngine{listErr: errors.New("disk gone")}
	_, err := New(listFails).Tick(context.Background())
	assert.ErrorContains(t, err, "disk gone")

	finalizeFails := &brokenEngine{
		finalizeErr: fmt.Errorf("wrapped: %w", contract.ErrVotingPeriodNotEnded),
		proposals:   dao.ProposalList{{ID: 1, Status: dao.StatusActive, VotingEndsAt: 10}},
	}
	r, err := New(finalizeFails).Tick(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, r.Errors)
	assert.Equal(t, uint64(1), r.NextStart)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newSetup(t)
	s.propose(t, dao.VoteFor)
	s.clock.Advance(101)

	ctx, cancel := context.WithCancel(context.Background())
	rec := &tickRecorder{}
	done := make(chan error, 1)
	go func() { done <- New(s.eng, WithInterval(time.Hour), WithObserver(rec)).Run(ctx) }()

	require.Eventually(t, func() bool {
		p, err := s.eng.GetProposal(context.Background(), 1)
		return err == nil && p.Status == dao.StatusPassed
	}, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("keeper did not stop")
	}
}
