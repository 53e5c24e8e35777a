// Package dao holds the governance records and their storage encoding.
package dao

import (
	"fmt"
	"strings"

	"dao_gov/sdk"
)

type Address = sdk.Address

// BasisPoints is the denominator for quorum fractions, 10000 = 100%.
const BasisPoints = 10000

// ProposalStatus captures a proposal's lifecycle.
type ProposalStatus uint8

const (
	StatusUnspecified ProposalStatus = 0
	StatusActive      ProposalStatus = 1
	StatusPassed      ProposalStatus = 2
	StatusFailed      ProposalStatus = 3
	StatusExecuted    ProposalStatus = 4
)

// String prints the status as lower-case text for events and logs.
// Example payload: dao.StatusPassed.String()
func (s ProposalStatus) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPassed:
		return "passed"
	case StatusFailed:
		return "failed"
	case StatusExecuted:
		return "executed"
	default:
		return "unspecified"
	}
}

// ParseProposalStatus is the inverse of String.
func ParseProposalStatus(s string) (ProposalStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "active":
		return StatusActive, nil
	case "passed":
		return StatusPassed, nil
	case "failed":
		return StatusFailed, nil
	case "executed":
		return StatusExecuted, nil
	default:
		return StatusUnspecified, fmt.Errorf("unknown proposal status %q", s)
	}
}

// Terminal reports whether no further transition can happen.
func (s ProposalStatus) Terminal() bool {
	switch s {
	case StatusFailed, StatusExecuted:
		return true
	default:
		return false
	}
}

// VoteChoice is what a member picked on a proposal.
type VoteChoice uint8

const (
	VoteUnspecified VoteChoice = 0
	VoteFor         VoteChoice = 1
	VoteAgainst     VoteChoice = 2
	VoteAbstain     VoteChoice = 3
)

func (v VoteChoice) String() string {
	switch v {
	case VoteFor:
		return "for"
	case VoteAgainst:
		return "against"
	case VoteAbstain:
		return "abstain"
	default:
		return "unspecified"
	}
}

func (v VoteChoice) Valid() bool {
	switch v {
	case VoteFor, VoteAgainst, VoteAbstain:
		return true
	default:
		return false
	}
}

// ParseVoteChoice accepts for/against/abstain (any case) and y/n/a shorthands.
// Example payload: dao.ParseVoteChoice("For")
func ParseVoteChoice(s string) (VoteChoice, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "for", "yes", "y":
		return VoteFor, nil
	case "against", "no", "n":
		return VoteAgainst, nil
	case "abstain", "a":
		return VoteAbstain, nil
	default:
		return VoteUnspecified, fmt.Errorf("unknown vote choice %q", s)
	}
}

// SettingsParams are the admin tunable settings, used by initialize and
// update_dao_settings.
type SettingsParams struct {
	ProposalThreshold uint64 `yaml:"proposal_threshold"`
	Quorum            uint64 `yaml:"quorum"`
	VotingPeriod      uint64 `yaml:"voting_period"`
	ExecutionDelay    uint64 `yaml:"execution_delay"`
}

// DaoSettings is the singleton config plus the running aggregates.
type DaoSettings struct {
	ProposalThreshold uint64
	Quorum            uint64
	VotingPeriod      uint64
	ExecutionDelay    uint64
	TotalVotingPower  uint64
	MemberCount       uint64
	ProposalCount     uint64
}

// Params returns the tunable part of the settings.
func (s *DaoSettings) Params() SettingsParams {
	return SettingsParams{
		ProposalThreshold: s.ProposalThreshold,
		Quorum:            s.Quorum,
		VotingPeriod:      s.VotingPeriod,
		ExecutionDelay:    s.ExecutionDelay,
	}
}

// Apply overwrites the tunables and leaves the aggregates alone.
func (s *DaoSettings) Apply(p SettingsParams) {
	s.ProposalThreshold = p.ProposalThreshold
	s.Quorum = p.Quorum
	s.VotingPeriod = p.VotingPeriod
	s.ExecutionDelay = p.ExecutionDelay
}

type Member struct {
	Address     Address
	JoiningTime uint64
	VotingPower uint64
	IsActive    bool
}

type Proposal struct {
	ID           uint64
	Title        string
	Description  string
	Proposer     Address
	CreationTime uint64
	VotingEndsAt uint64
	// ExecutableAt is VotingEndsAt plus the execution delay in force when
	// the proposal was created.
	ExecutableAt  uint64
	Status        ProposalStatus
	ForVotes      uint64
	AgainstVotes  uint64
	AbstainVotes  uint64
	IsExecuted    bool
	ExecutionTime uint64
}

// VoteRecord is stored once per (proposal, voter). Weight is the voting
// power that was added to the tally when the vote was cast.
type VoteRecord struct {
	ProposalID uint64
	Voter      Address
	Choice     VoteChoice
	Weight     uint64
	CastAt     uint64
}
