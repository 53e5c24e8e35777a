package contract

import (
	"strconv"

	"dao_gov/contract/dao"
)

// loadProposal returns the proposal or ErrProposalNotFound.
func (c *callCtx) loadProposal(id uint64) (*dao.Proposal, error) {
	if p, ok := c.proposals[id]; ok {
		return p, nil
	}
	raw, ok, err := c.get(proposalKey(id))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrProposalNotFound.With("id", strconv.FormatUint(id, 10))
	}
	p, err := dao.DecodeProposal(raw)
	if err != nil {
		return nil, Wrap(CodeStorage, "decode proposal", err).With("id", strconv.FormatUint(id, 10))
	}
	c.proposals[id] = p
	return p, nil
}

func (c *callCtx) saveProposal(p *dao.Proposal) {
	c.proposals[p.ID] = p
	c.put(proposalKey(p.ID), dao.EncodeProposal(p))
}
