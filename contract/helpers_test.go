package contract_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao_gov/contract"
	"dao_gov/contract/dao"
	"dao_gov/sdk"
	"dao_gov/store/memory"
)

const (
	adminAddr = sdk.Address("hive:admin")
	alice     = sdk.Address("hive:alice")
	bob       = sdk.Address("hive:bob")
	carol     = sdk.Address("hive:carol")
	outsider  = sdk.Address("hive:outsider")

	startTime uint64 = 1_700_000_000
)

// scenarioParams mirror the worked example: 30% quorum, 1000s voting,
// 500s delay, threshold 10.
var scenarioParams = dao.SettingsParams{
	ProposalThreshold: 10,
	Quorum:            3000,
	VotingPeriod:      1000,
	ExecutionDelay:    500,
}

type recorder struct {
	mu     sync.Mutex
	events []contract.Event
}

func (r *recorder) Emit(_ context.Context, ev contract.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) kinds() []contract.EventKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]contract.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (r *recorder) last() contract.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

type fixture struct {
	t      *testing.T
	engine *contract.Engine
	store  *memory.Store
	clock  *sdk.ManualClock
	events *recorder
}

// newFixture spins up an engine on a fresh memory store, not initialized yet.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		t:      t,
		store:  memory.New(),
		clock:  sdk.NewManualClock(startTime),
		events: &recorder{},
	}
	f.engine = contract.New(f.store,
		contract.WithClock(f.clock),
		contract.WithEventSink(f.events),
	)
	return f
}

// newDAO is newFixture plus initialize with scenarioParams.
func newDAO(t *testing.T) *fixture {
	t.Helper()
	f := newFixture(t)
	require.NoError(t, f.engine.Initialize(as(adminAddr), adminAddr, scenarioParams))
	return f
}

// as builds a ctx whose sender holds auth for addr only.
func as(addr sdk.Address) context.Context {
	return sdk.AsSender(context.Background(), addr)
}

func (f *fixture) addMember(addr sdk.Address, power uint64) {
	f.t.Helper()
	require.NoError(f.t, f.engine.AddMember(as(adminAddr), addr, power))
}

func (f *fixture) propose(by sdk.Address) uint64 {
	f.t.Helper()
	id, err := f.engine.CreateProposal(as(by), by, "title", "description")
	require.NoError(f.t, err)
	return id
}

func (f *fixture) vote(by sdk.Address, id uint64, v dao.VoteChoice) {
	f.t.Helper()
	require.NoError(f.t, f.engine.CastVote(as(by), by, id, v))
}

func (f *fixture) settings() *dao.DaoSettings {
	f.t.Helper()
	s, err := f.engine.GetDaoSettings(context.Background())
	require.NoError(f.t, err)
	return s
}

func (f *fixture) proposal(id uint64) *dao.Proposal {
	f.t.Helper()
	p, err := f.engine.GetProposal(context.Background(), id)
	require.NoError(f.t, err)
	return p
}

// assertUnchanged runs fn, expects it to fail with want and checks the
// store is byte-identical afterwards.
func (f *fixture) assertUnchanged(want error, fn func() error) {
	f.t.Helper()
	before := f.store.Dump()
	ttl := f.store.LastTTL()
	err := fn()
	assert.ErrorIs(f.t, err, want)
	assert.Equal(f.t, before, f.store.Dump())
	assert.Equal(f.t, ttl, f.store.LastTTL())
}

// activePowerSum recomputes total voting power from member records.
func (f *fixture) activePowerSum() uint64 {
	f.t.Helper()
	members, err := f.engine.ListMembers(context.Background())
	require.NoError(f.t, err)
	var sum uint64
	for _, m := range members {
		if m.IsActive {
			sum += m.VotingPower
		}
	}
	return sum
}

func sdkAddr(s string) sdk.Address { return sdk.Address(s) }
