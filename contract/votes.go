package contract

import (
	"context"
	"strconv"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// CastVote records the voter's choice and adds their current voting power
// to the matching tally. One vote per member per proposal, no changes.
func (e *Engine) CastVote(ctx context.Context, voter sdk.Address, proposalID uint64, vote dao.VoteChoice) error {
	voter = voter.Canonical()
	return e.update(ctx, "cast_vote", func(c *callCtx) error {
		if _, err := c.loadSettings(); err != nil {
			return err
		}
		if err := e.requireAuth(c, voter); err != nil {
			return err
		}
		if !vote.Valid() {
			return ErrInvalidVote.With("vote", strconv.Itoa(int(vote)))
		}
		m, err := c.activeMember(voter)
		if err != nil {
			return err
		}
		p, err := c.loadProposal(proposalID)
		if err != nil {
			return err
		}
		if c.now > p.VotingEndsAt {
			return ErrVotingPeriodEnded.With("voting_ends_at", strconv.FormatUint(p.VotingEndsAt, 10))
		}
		switch p.Status {
		case dao.StatusActive:
		case dao.StatusPassed, dao.StatusFailed, dao.StatusExecuted:
			return ErrProposalNotActive.With("status", p.Status.String())
		default:
			return NewError(CodeStorage, "proposal has unknown status").With("status", p.Status.String())
		}
		voted, err := c.has(voteKey(proposalID, voter))
		if err != nil {
			return err
		}
		if voted {
			return ErrAlreadyVoted.With("address", voter.String())
		}

		if err := tally(p, vote, m.VotingPower); err != nil {
			return err
		}
		c.saveVote(&dao.VoteRecord{
			ProposalID: proposalID,
			Voter:      voter,
			Choice:     vote,
			Weight:     m.VotingPower,
			CastAt:     c.now,
		})
		c.saveProposal(p)
		c.emit(Event{Kind: EventVoteCast, ProposalID: proposalID, Address: voter, Vote: vote, VotingPower: m.VotingPower})
		return nil
	})
}

// tally adds weight to the bucket picked by vote.
func tally(p *dao.Proposal, vote dao.VoteChoice, weight uint64) error {
	var bucket *uint64
	switch vote {
	case dao.VoteFor:
		bucket = &p.ForVotes
	case dao.VoteAgainst:
		bucket = &p.AgainstVotes
	case dao.VoteAbstain:
		bucket = &p.AbstainVotes
	default:
		return ErrInvalidVote
	}
	sum, err := addPower(*bucket, weight)
	if err != nil {
		return err
	}
	*bucket = sum
	return nil
}

func (c *callCtx) saveVote(v *dao.VoteRecord) {
	c.put(voteKey(v.ProposalID, v.Voter), dao.EncodeVoteRecord(v))
}

// loadVote returns (nil, nil) when the voter has not voted.
func (c *callCtx) loadVote(proposalID uint64, voter sdk.Address) (*dao.VoteRecord, error) {
	raw, ok, err := c.get(voteKey(proposalID, voter))
	if err != nil || !ok {
		return nil, err
	}
	v, err := dao.DecodeVoteRecord(raw)
	if err != nil {
		return nil, Wrap(CodeStorage, "decode vote", err)
	}
	return v, nil
}
