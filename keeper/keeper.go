// Package keeper closes proposals nobody bothered to finalize. Finalize and
// execute are permissionless, the keeper is just a caller that never sleeps.
package keeper

import (
	"context"
	"errors"
	"time"

	"dao_gov/contract"
	"dao_gov/contract/dao"
)

const (
	DefaultInterval = 30 * time.Second
	pageSize        = 100
)

// Engine is the part of *contract.Engine the keeper drives.
type Engine interface {
	Now() uint64
	ListProposals(ctx context.Context, fromID uint64, limit int) (dao.ProposalList, error)
	FinalizeProposal(ctx context.Context, proposalID uint64) (dao.ProposalStatus, error)
	ExecuteProposal(ctx context.Context, proposalID uint64) error
}

// Report sums up one tick.
type Report struct {
	Scanned   int
	Passed    int
	Failed    int
	Executed  int
	Errors    int
	NextStart uint64
}

// Observer receives a report after every tick.
type Observer interface {
	ObserveTick(r Report, took time.Duration)
}

type Option func(*Keeper)

// WithExecute lets the keeper also execute passed proposals whose delay is over.
func WithExecute(enabled bool) Option {
	return func(k *Keeper) { k.execute = enabled }
}

func WithInterval(d time.Duration) Option {
	return func(k *Keeper) {
		if d > 0 {
			k.interval = d
		}
	}
}

func WithObserver(o Observer) Option {
	return func(k *Keeper) { k.observer = o }
}

// Keeper walks proposals from the oldest one that may still need work.
type Keeper struct {
	engine   Engine
	interval time.Duration
	execute  bool
	observer Observer
	cursor   uint64
}

func New(engine Engine, opts ...Option) *Keeper {
	k := &Keeper{engine: engine, interval: DefaultInterval, cursor: 1}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// Run ticks until ctx is cancelled.
func (k *Keeper) Run(ctx context.Context) error {
	log.Infof("keeper started (interval %s, execute %v)", k.interval, k.execute)
	ticker := time.NewTicker(k.interval)
	defer ticker.Stop()
	for {
		if _, err := k.Tick(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("keeper tick: %v", err)
		}
		select {
		case <-ctx.Done():
			log.Infof("keeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// Tick does one pass. Per proposal failures are counted and logged, only a
// failing listing aborts the pass.
func (k *Keeper) Tick(ctx context.Context) (Report, error) {
	start := time.Now()
	var r Report
	settled := true
	from := k.cursor
	for {
		page, err := k.engine.ListProposals(ctx, from, pageSize)
		if errors.Is(err, contract.ErrNotInitialized) {
			break
		}
		if err != nil {
			r.NextStart = k.cursor
			return r, err
		}
		for i := range page {
			p := &page[i]
			r.Scanned++
			done := k.handle(ctx, p, &r)
			if settled && done {
				k.cursor = p.ID + 1
			} else {
				settled = false
			}
		}
		if len(page) < pageSize {
			break
		}
		from = page[len(page)-1].ID + 1
	}
	r.NextStart = k.cursor
	if k.observer != nil {
		k.observer.ObserveTick(r, time.Since(start))
	}
	if r.Passed+r.Failed+r.Executed+r.Errors > 0 {
		log.Infof("keeper: scanned %d, passed %d, failed %d, executed %d, errors %d",
			r.Scanned, r.Passed, r.Failed, r.Executed, r.Errors)
	}
	return r, nil
}

// handle moves p along and reports whether it needs no more keeper work.
func (k *Keeper) handle(ctx context.Context, p *dao.Proposal, r *Report) bool {
	now := k.engine.Now()
	if p.Status == dao.StatusActive {
		if now <= p.VotingEndsAt {
			return false
		}
		status, err := k.engine.FinalizeProposal(ctx, p.ID)
		switch {
		case errors.Is(err, contract.ErrAlreadyFinalized):
			// someone else got there first, the next pass sees the new status
			return false
		case err != nil:
			r.Errors++
			log.Warnf("finalize proposal %d: %v", p.ID, err)
			return false
		}
		p.Status = status
		if status == dao.StatusPassed {
			r.Passed++
		} else {
			r.Failed++
		}
	}

	switch p.Status {
	case dao.StatusFailed, dao.StatusExecuted:
		return true
	case dao.StatusPassed:
		if !k.execute {
			return true
		}
		if now < p.ExecutableAt {
			return false
		}
		err := k.engine.ExecuteProposal(ctx, p.ID)
		switch {
		case err == nil:
			r.Executed++
			return true
		case errors.Is(err, contract.ErrAlreadyExecuted):
			return true
		default:
			r.Errors++
			log.Warnf("execute proposal %d: %v", p.ID, err)
			return false
		}
	}
	return false
}
