package contract

import (
	"context"
	"sort"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// maxListLimit caps ListProposals pages.
const maxListLimit = 500

func (e *Engine) GetDaoSettings(ctx context.Context) (*dao.DaoSettings, error) {
	var out *dao.DaoSettings
	err := e.view(ctx, func(c *callCtx) error {
		s, err := c.loadSettings()
		out = s
		return err
	})
	return out, err
}

func (e *Engine) GetAdmin(ctx context.Context) (sdk.Address, error) {
	var out sdk.Address
	err := e.view(ctx, func(c *callCtx) error {
		a, err := c.loadAdmin()
		out = a
		return err
	})
	return out, err
}

func (e *Engine) GetProposal(ctx context.Context, proposalID uint64) (*dao.Proposal, error) {
	var out *dao.Proposal
	err := e.view(ctx, func(c *callCtx) error {
		p, err := c.loadProposal(proposalID)
		out = p
		return err
	})
	return out, err
}

func (e *Engine) GetMember(ctx context.Context, member sdk.Address) (*dao.Member, error) {
	var out *dao.Member
	err := e.view(ctx, func(c *callCtx) error {
		m, err := c.loadMember(member)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMemberNotFound.With("address", member.String())
		}
		out = m
		return nil
	})
	return out, err
}

// GetVote reports the voter's choice. ok is false when no vote exists,
// which is a normal answer and not an error.
func (e *Engine) GetVote(ctx context.Context, proposalID uint64, voter sdk.Address) (choice dao.VoteChoice, ok bool, err error) {
	err = e.view(ctx, func(c *callCtx) error {
		v, err := c.loadVote(proposalID, voter)
		if err != nil || v == nil {
			return err
		}
		choice, ok = v.Choice, true
		return nil
	})
	if err != nil {
		return dao.VoteUnspecified, false, err
	}
	return choice, ok, nil
}

// ListProposals walks ids from fromID upwards. limit <= 0 means the
// default page size.
func (e *Engine) ListProposals(ctx context.Context, fromID uint64, limit int) (dao.ProposalList, error) {
	if limit <= 0 || limit > maxListLimit {
		limit = maxListLimit
	}
	if fromID == 0 {
		fromID = 1
	}
	var out dao.ProposalList
	err := e.view(ctx, func(c *callCtx) error {
		s, err := c.loadSettings()
		if err != nil {
			return err
		}
		for id := fromID; id <= s.ProposalCount && len(out) < limit; id++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := c.loadProposal(id)
			if err != nil {
				return err
			}
			out = append(out, *p)
		}
		return nil
	})
	return out, err
}

// ListMembers returns every member record ever added, sorted by address.
func (e *Engine) ListMembers(ctx context.Context) (dao.MemberList, error) {
	var out dao.MemberList
	err := e.view(ctx, func(c *callCtx) error {
		return c.tx.ForEach(memberPrefix, func(_ string, value []byte) error {
			m, err := dao.DecodeMember(value)
			if err != nil {
				return Wrap(CodeStorage, "decode member", err)
			}
			out = append(out, *m)
			return nil
		})
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, err
}

// ListVotes returns every vote cast on a proposal.
func (e *Engine) ListVotes(ctx context.Context, proposalID uint64) (dao.VoteList, error) {
	var out dao.VoteList
	err := e.view(ctx, func(c *callCtx) error {
		if _, err := c.loadProposal(proposalID); err != nil {
			return err
		}
		return c.tx.ForEach(votePrefix(proposalID), func(_ string, value []byte) error {
			v, err := dao.DecodeVoteRecord(value)
			if err != nil {
				return Wrap(CodeStorage, "decode vote", err)
			}
			out = append(out, *v)
			return nil
		})
	})
	return out, err
}
