package contract

import (
	"math"
	"math/bits"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// addPower adds voting power and reports overflow as ErrVotingPowerOverflow.
func addPower(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrVotingPowerOverflow
	}
	return sum, nil
}

// subPower removes voting power that must already be part of a. A borrow
// means the aggregates no longer match the member records.
func subPower(a, b uint64) (uint64, error) {
	diff, borrow := bits.Sub64(a, b, 0)
	if borrow != 0 {
		return 0, NewError(CodeStorage, "total voting power below member power")
	}
	return diff, nil
}

// addTime saturates instead of wrapping so a huge period means "never".
func addTime(ts, d uint64) uint64 {
	sum, carry := bits.Add64(ts, d, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// quorumThreshold is floor(total * quorum / 10000) with a 128 bit
// intermediate. quorum <= 10000 keeps the high word below the divisor.
func quorumThreshold(totalPower, quorum uint64) uint64 {
	hi, lo := bits.Mul64(totalPower, quorum)
	q, _ := bits.Div64(hi, lo, dao.BasisPoints)
	return q
}

// decideOutcome applies the finalize rule: quorum first, then a strict
// for-majority. Ties fail.
func decideOutcome(p *dao.Proposal, totalPower, quorum uint64) dao.ProposalStatus {
	votes, c1 := bits.Add64(p.ForVotes, p.AgainstVotes, 0)
	votes, c2 := bits.Add64(votes, p.AbstainVotes, 0)
	quorumMet := c1|c2 != 0 || votes >= quorumThreshold(totalPower, quorum)
	if !quorumMet {
		return dao.StatusFailed
	}
	if p.ForVotes > p.AgainstVotes {
		return dao.StatusPassed
	}
	return dao.StatusFailed
}

func validateAddress(addr sdk.Address) error {
	if addr == "" || len(addr) > MaxAddressLength {
		return ErrInvalidAddress.With("address", addr.String())
	}
	return nil
}

func validateQuorum(q uint64) error {
	if q > dao.BasisPoints {
		return ErrInvalidQuorum
	}
	return nil
}
