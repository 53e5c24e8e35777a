package contract

import (
	"errors"
	"maps"
)

// Code is the machine readable reason a call failed.
type Code string

const (
	CodeNotInitialized           Code = "NOT_INITIALIZED"
	CodeAlreadyInitialized       Code = "ALREADY_INITIALIZED"
	CodeInvalidQuorum            Code = "INVALID_QUORUM"
	CodeUnauthorized             Code = "UNAUTHORIZED"
	CodeMemberNotFound           Code = "MEMBER_NOT_FOUND"
	CodeMemberExists             Code = "MEMBER_EXISTS"
	CodeNotAMember               Code = "NOT_A_MEMBER"
	CodeMemberInactive           Code = "MEMBER_INACTIVE"
	CodeInsufficientVotingPower  Code = "INSUFFICIENT_VOTING_POWER"
	CodeProposalNotFound         Code = "PROPOSAL_NOT_FOUND"
	CodeVotingPeriodEnded        Code = "VOTING_PERIOD_ENDED"
	CodeProposalNotActive        Code = "PROPOSAL_NOT_ACTIVE"
	CodeAlreadyVoted             Code = "ALREADY_VOTED"
	CodeVotingPeriodNotEnded     Code = "VOTING_PERIOD_NOT_ENDED"
	CodeAlreadyFinalized         Code = "ALREADY_FINALIZED"
	CodeNotPassed                Code = "NOT_PASSED"
	CodeAlreadyExecuted          Code = "ALREADY_EXECUTED"
	CodeExecutionDelayNotElapsed Code = "EXECUTION_DELAY_NOT_ELAPSED"
	CodeVotingPowerOverflow      Code = "VOTING_POWER_OVERFLOW"
	CodeInvalidAddress           Code = "INVALID_ADDRESS"
	CodeInvalidProposal          Code = "INVALID_PROPOSAL"
	CodeInvalidVote              Code = "INVALID_VOTE"
	CodeStorage                  Code = "STORAGE"
)

// Error is the engine error type. Two errors match with errors.Is when
// their codes match, so callers compare against the Err* values below.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// NewError creates a simple engine error with a code and message.
func NewError(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap creates an engine error that wraps an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// With returns a copy of e carrying one more metadata pair. The shared
// Err* values are never mutated.
func (e *Error) With(key, value string) *Error {
	cp := *e
	cp.Metadata = make(map[string]string, len(e.Metadata)+1)
	maps.Copy(cp.Metadata, e.Metadata)
	cp.Metadata[key] = value
	return &cp
}

// CodeOf extracts the code from err, or "" for foreign errors.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

var (
	ErrNotInitialized           = NewError(CodeNotInitialized, "dao not initialized")
	ErrAlreadyInitialized       = NewError(CodeAlreadyInitialized, "dao already initialized")
	ErrInvalidQuorum            = NewError(CodeInvalidQuorum, "quorum must be at most 10000 basis points")
	ErrUnauthorized             = NewError(CodeUnauthorized, "unauthorized")
	ErrMemberNotFound           = NewError(CodeMemberNotFound, "member not found")
	ErrMemberExists             = NewError(CodeMemberExists, "member already exists")
	ErrNotAMember               = NewError(CodeNotAMember, "not a member")
	ErrMemberInactive           = NewError(CodeMemberInactive, "member inactive")
	ErrInsufficientVotingPower  = NewError(CodeInsufficientVotingPower, "insufficient voting power")
	ErrProposalNotFound         = NewError(CodeProposalNotFound, "proposal not found")
	ErrVotingPeriodEnded        = NewError(CodeVotingPeriodEnded, "voting period ended")
	ErrProposalNotActive        = NewError(CodeProposalNotActive, "proposal not active")
	ErrAlreadyVoted             = NewError(CodeAlreadyVoted, "already voted")
	ErrVotingPeriodNotEnded     = NewError(CodeVotingPeriodNotEnded, "voting period not ended")
	ErrAlreadyFinalized         = NewError(CodeAlreadyFinalized, "proposal already finalized")
	ErrNotPassed                = NewError(CodeNotPassed, "proposal not passed")
	ErrAlreadyExecuted          = NewError(CodeAlreadyExecuted, "proposal already executed")
	ErrExecutionDelayNotElapsed = NewError(CodeExecutionDelayNotElapsed, "execution delay not elapsed")
	ErrVotingPowerOverflow      = NewError(CodeVotingPowerOverflow, "voting power overflow")
	ErrInvalidAddress           = NewError(CodeInvalidAddress, "invalid address")
	ErrInvalidProposal          = NewError(CodeInvalidProposal, "invalid proposal")
	ErrInvalidVote              = NewError(CodeInvalidVote, "invalid vote choice")
)
