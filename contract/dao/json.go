package dao

import (
	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jwriter"
)

var (
	_ tinyjson.Marshaler = (*DaoSettings)(nil)
	_ tinyjson.Marshaler = (*Member)(nil)
	_ tinyjson.Marshaler = (*Proposal)(nil)
	_ tinyjson.Marshaler = (*VoteRecord)(nil)
	_ tinyjson.Marshaler = ProposalList(nil)
	_ tinyjson.Marshaler = MemberList(nil)
	_ tinyjson.Marshaler = VoteList(nil)
)

// ProposalList, MemberList and VoteList are the query result shapes.
type (
	ProposalList []Proposal
	MemberList   []Member
	VoteList     []VoteRecord
)

func (s *DaoSettings) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"proposal_threshold":`)
	w.Uint64(s.ProposalThreshold)
	w.RawString(`,"quorum":`)
	w.Uint64(s.Quorum)
	w.RawString(`,"voting_period":`)
	w.Uint64(s.VotingPeriod)
	w.RawString(`,"execution_delay":`)
	w.Uint64(s.ExecutionDelay)
	w.RawString(`,"total_voting_power":`)
	w.Uint64(s.TotalVotingPower)
	w.RawString(`,"member_count":`)
	w.Uint64(s.MemberCount)
	w.RawString(`,"proposal_count":`)
	w.Uint64(s.ProposalCount)
	w.RawByte('}')
}

func (m *Member) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"address":`)
	w.String(m.Address.String())
	w.RawString(`,"joining_time":`)
	w.Uint64(m.JoiningTime)
	w.RawString(`,"voting_power":`)
	w.Uint64(m.VotingPower)
	w.RawString(`,"is_active":`)
	w.Bool(m.IsActive)
	w.RawByte('}')
}

func (p *Proposal) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"id":`)
	w.Uint64(p.ID)
	w.RawString(`,"title":`)
	w.String(p.Title)
	w.RawString(`,"description":`)
	w.String(p.Description)
	w.RawString(`,"proposer":`)
	w.String(p.Proposer.String())
	w.RawString(`,"creation_time":`)
	w.Uint64(p.CreationTime)
	w.RawString(`,"voting_ends_at":`)
	w.Uint64(p.VotingEndsAt)
	w.RawString(`,"executable_at":`)
	w.Uint64(p.ExecutableAt)
	w.RawString(`,"status":`)
	w.String(p.Status.String())
	w.RawString(`,"for_votes":`)
	w.Uint64(p.ForVotes)
	w.RawString(`,"against_votes":`)
	w.Uint64(p.AgainstVotes)
	w.RawString(`,"abstain_votes":`)
	w.Uint64(p.AbstainVotes)
	w.RawString(`,"is_executed":`)
	w.Bool(p.IsExecuted)
	w.RawString(`,"execution_time":`)
	w.Uint64(p.ExecutionTime)
	w.RawByte('}')
}

func (v *VoteRecord) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"proposal_id":`)
	w.Uint64(v.ProposalID)
	w.RawString(`,"voter":`)
	w.String(v.Voter.String())
	w.RawString(`,"vote":`)
	w.String(v.Choice.String())
	w.RawString(`,"weight":`)
	w.Uint64(v.Weight)
	w.RawString(`,"cast_at":`)
	w.Uint64(v.CastAt)
	w.RawByte('}')
}

func (l ProposalList) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawByte('[')
	for i := range l {
		if i > 0 {
			w.RawByte(',')
		}
		l[i].MarshalTinyJSON(w)
	}
	w.RawByte(']')
}

func (l MemberList) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawByte('[')
	for i := range l {
		if i > 0 {
			w.RawByte(',')
		}
		l[i].MarshalTinyJSON(w)
	}
	w.RawByte(']')
}

func (l VoteList) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawByte('[')
	for i := range l {
		if i > 0 {
			w.RawByte(',')
		}
		l[i].MarshalTinyJSON(w)
	}
	w.RawByte(']')
}
