package contract

import (
	"context"
	"strconv"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// CreateProposal opens a proposal for voting and returns its id. Ids start
// at 1 and proposal_count always equals the last id handed out.
func (e *Engine) CreateProposal(ctx context.Context, proposer sdk.Address, title, description string) (uint64, error) {
	proposer = proposer.Canonical()
	var id uint64
	err := e.update(ctx, "create_proposal", func(c *callCtx) error {
		settings, err := c.loadSettings()
		if err != nil {
			return err
		}
		if err := e.requireAuth(c, proposer); err != nil {
			return err
		}
		m, err := c.activeMember(proposer)
		if err != nil {
			return err
		}
		if m.VotingPower < settings.ProposalThreshold {
			return ErrInsufficientVotingPower.
				With("voting_power", strconv.FormatUint(m.VotingPower, 10)).
				With("threshold", strconv.FormatUint(settings.ProposalThreshold, 10))
		}
		if len(title) > MaxTitleLength {
			return ErrInvalidProposal.With("field", "title")
		}
		if len(description) > MaxDescriptionLength {
			return ErrInvalidProposal.With("field", "description")
		}

		id = settings.ProposalCount + 1
		endsAt := addTime(c.now, settings.VotingPeriod)
		c.saveProposal(&dao.Proposal{
			ID:           id,
			Title:        title,
			Description:  description,
			Proposer:     proposer,
			CreationTime: c.now,
			VotingEndsAt: endsAt,
			ExecutableAt: addTime(endsAt, settings.ExecutionDelay),
			Status:       dao.StatusActive,
		})
		settings.ProposalCount = id
		c.saveSettings(settings)
		c.emit(Event{Kind: EventProposalCreated, ProposalID: id, Address: proposer})
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FinalizeProposal closes voting once the period is over. Anyone may call
// it. Quorum is taken against the total voting power at finalize time.
func (e *Engine) FinalizeProposal(ctx context.Context, proposalID uint64) (dao.ProposalStatus, error) {
	var outcome dao.ProposalStatus
	err := e.update(ctx, "finalize_proposal", func(c *callCtx) error {
		settings, err := c.loadSettings()
		if err != nil {
			return err
		}
		p, err := c.loadProposal(proposalID)
		if err != nil {
			return err
		}
		if c.now <= p.VotingEndsAt {
			return ErrVotingPeriodNotEnded.With("voting_ends_at", strconv.FormatUint(p.VotingEndsAt, 10))
		}
		switch p.Status {
		case dao.StatusActive:
		case dao.StatusPassed, dao.StatusFailed, dao.StatusExecuted:
			return ErrAlreadyFinalized.With("status", p.Status.String())
		default:
			return NewError(CodeStorage, "proposal has unknown status").With("status", p.Status.String())
		}
		outcome = decideOutcome(p, settings.TotalVotingPower, settings.Quorum)
		p.Status = outcome
		c.saveProposal(p)
		c.emit(Event{Kind: EventProposalFinalized, ProposalID: p.ID, Status: outcome})
		return nil
	})
	if err != nil {
		return dao.StatusUnspecified, err
	}
	return outcome, nil
}

// ExecuteProposal marks a passed proposal as executed once its execution
// delay is over. The engine itself runs nothing, the flag is the signal.
func (e *Engine) ExecuteProposal(ctx context.Context, proposalID uint64) error {
	return e.update(ctx, "execute_proposal", func(c *callCtx) error {
		if _, err := c.loadSettings(); err != nil {
			return err
		}
		p, err := c.loadProposal(proposalID)
		if err != nil {
			return err
		}
		switch p.Status {
		case dao.StatusPassed:
		case dao.StatusExecuted:
			return ErrAlreadyExecuted
		case dao.StatusActive, dao.StatusFailed:
			return ErrNotPassed.With("status", p.Status.String())
		default:
			return NewError(CodeStorage, "proposal has unknown status").With("status", p.Status.String())
		}
		if p.IsExecuted {
			return ErrAlreadyExecuted
		}
		if c.now < p.ExecutableAt {
			return ErrExecutionDelayNotElapsed.With("executable_at", strconv.FormatUint(p.ExecutableAt, 10))
		}
		p.IsExecuted = true
		p.ExecutionTime = c.now
		p.Status = dao.StatusExecuted
		c.saveProposal(p)
		c.emit(Event{Kind: EventProposalExecuted, ProposalID: p.ID})
		return nil
	})
}
