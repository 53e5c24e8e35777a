package contract

import (
	"context"
	"fmt"

	"github.com/CosmWasm/tinyjson"
	"github.com/CosmWasm/tinyjson/jlexer"
	"github.com/CosmWasm/tinyjson/jwriter"
	"github.com/google/uuid"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

type EventKind string

const (
	EventInitialized        EventKind = "initialized"
	EventMemberAdded        EventKind = "member_added"
	EventVotingPowerUpdated EventKind = "voting_power_updated"
	EventMemberDeactivated  EventKind = "member_deactivated"
	EventProposalCreated    EventKind = "proposal_created"
	EventVoteCast           EventKind = "vote_cast"
	EventProposalFinalized  EventKind = "proposal_finalized"
	EventProposalExecuted   EventKind = "proposal_executed"
	EventSettingsUpdated    EventKind = "settings_updated"
	EventAdminTransferred   EventKind = "admin_transferred"
)

// Event describes one committed state change. Fields that do not apply
// to a kind stay zero.
type Event struct {
	ID          string
	Kind        EventKind
	Timestamp   uint64
	ProposalID  uint64
	Address     sdk.Address
	Status      dao.ProposalStatus
	Vote        dao.VoteChoice
	VotingPower uint64
}

// EventSink receives events after their call committed. A failing sink
// never undoes the call.
type EventSink interface {
	Emit(ctx context.Context, ev Event) error
}

// MultiSink fans an event out to several sinks and returns the first error.
type MultiSink []EventSink

func (m MultiSink) Emit(ctx context.Context, ev Event) error {
	var first error
	for _, s := range m {
		if err := s.Emit(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// String renders the short pipe separated log line watchers grep for.
func (ev Event) String() string {
	switch ev.Kind {
	case EventInitialized:
		return fmt.Sprintf("di|by:%s", ev.Address)
	case EventMemberAdded:
		return fmt.Sprintf("ma|by:%s|vp:%d", ev.Address, ev.VotingPower)
	case EventVotingPowerUpdated:
		return fmt.Sprintf("mp|by:%s|vp:%d", ev.Address, ev.VotingPower)
	case EventMemberDeactivated:
		return fmt.Sprintf("md|by:%s", ev.Address)
	case EventProposalCreated:
		return fmt.Sprintf("pc|id:%d|by:%s", ev.ProposalID, ev.Address)
	case EventVoteCast:
		return fmt.Sprintf("pv|id:%d|by:%s|v:%s|w:%d", ev.ProposalID, ev.Address, ev.Vote, ev.VotingPower)
	case EventProposalFinalized:
		return fmt.Sprintf("ps|id:%d|s:%s", ev.ProposalID, ev.Status)
	case EventProposalExecuted:
		return fmt.Sprintf("px|id:%d", ev.ProposalID)
	case EventSettingsUpdated:
		return fmt.Sprintf("su|by:%s", ev.Address)
	case EventAdminTransferred:
		return fmt.Sprintf("at|to:%s", ev.Address)
	default:
		return fmt.Sprintf("??|kind:%s", ev.Kind)
	}
}

// publish stamps the event and hands it to the log and the sink.
func (e *Engine) publish(ctx context.Context, now uint64, ev Event) {
	ev.ID = uuid.NewString()
	ev.Timestamp = now
	log.Info(ev.String())
	if e.sink == nil {
		return
	}
	if err := e.sink.Emit(ctx, ev); err != nil {
		log.Warnf("event %s (%s) not delivered: %v", ev.ID, ev.Kind, err)
	}
}

var (
	_ tinyjson.Marshaler   = Event{}
	_ tinyjson.Unmarshaler = (*Event)(nil)
)

func (ev Event) MarshalTinyJSON(w *jwriter.Writer) {
	w.RawString(`{"id":`)
	w.String(ev.ID)
	w.RawString(`,"kind":`)
	w.String(string(ev.Kind))
	w.RawString(`,"timestamp":`)
	w.Uint64(ev.Timestamp)
	if ev.ProposalID != 0 {
		w.RawString(`,"proposal_id":`)
		w.Uint64(ev.ProposalID)
	}
	if ev.Address != "" {
		w.RawString(`,"address":`)
		w.String(ev.Address.String())
	}
	if ev.Status != dao.StatusUnspecified {
		w.RawString(`,"status":`)
		w.String(ev.Status.String())
	}
	if ev.Vote != dao.VoteUnspecified {
		w.RawString(`,"vote":`)
		w.String(ev.Vote.String())
	}
	if ev.VotingPower != 0 {
		w.RawString(`,"voting_power":`)
		w.Uint64(ev.VotingPower)
	}
	w.RawByte('}')
}

func (ev *Event) UnmarshalTinyJSON(in *jlexer.Lexer) {
	isTopLevel := in.IsStart()
	if in.IsNull() {
		if isTopLevel {
			in.Consumed()
		}
		in.Skip()
		return
	}
	in.Delim('{')
	for !in.IsDelim('}') {
		key := in.UnsafeFieldName(false)
		in.WantColon()
		if in.IsNull() {
			in.Skip()
			in.WantComma()
			continue
		}
		switch key {
		case "id":
			ev.ID = in.String()
		case "kind":
			ev.Kind = EventKind(in.String())
		case "timestamp":
			ev.Timestamp = in.Uint64()
		case "proposal_id":
			ev.ProposalID = in.Uint64()
		case "address":
			ev.Address = sdk.Address(in.String())
		case "status":
			st, err := dao.ParseProposalStatus(in.String())
			if err != nil {
				in.AddError(err)
			}
			ev.Status = st
		case "vote":
			v, err := dao.ParseVoteChoice(in.String())
			if err != nil {
				in.AddError(err)
			}
			ev.Vote = v
		case "voting_power":
			ev.VotingPower = in.Uint64()
		default:
			in.SkipRecursive()
		}
		in.WantComma()
	}
	in.Delim('}')
	if isTopLevel {
		in.Consumed()
	}
}
