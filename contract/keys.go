package contract

import "dao_gov/sdk"

const (
	// kSettings holds the DaoSettings singleton.
	kSettings byte = 0x01
	// kAdmin holds the admin address.
	kAdmin byte = 0x02
	// kMember houses encoded Member structs keyed by address.
	kMember byte = 0x04
	// kProposal contains encoded Proposal records.
	kProposal byte = 0x10
	// kVote stores one VoteRecord per proposal+voter.
	kVote byte = 0x20
)

var (
	settingsKey  = string([]byte{kSettings})
	adminKey     = string([]byte{kAdmin})
	memberPrefix = string([]byte{kMember})
)

// packU64LEInline sprinkles a uint64 into dst in little-endian order so our keys stay compact.
func packU64LEInline(x uint64, dst []byte) {
	dst[0] = byte(x)
	dst[1] = byte(x >> 8)
	dst[2] = byte(x >> 16)
	dst[3] = byte(x >> 24)
	dst[4] = byte(x >> 32)
	dst[5] = byte(x >> 40)
	dst[6] = byte(x >> 48)
	dst[7] = byte(x >> 56)
}

// memberKey is prefix 0x04 followed by the canonical address bytes.
func memberKey(addr sdk.Address) string {
	a := addr.Canonical().String()
	buf := make([]byte, 0, 1+len(a))
	buf = append(buf, kMember)
	buf = append(buf, a...)
	return string(buf)
}

// proposalKey builds a storage key string for a proposal by ID.
func proposalKey(id uint64) string {
	var buf [9]byte
	buf[0] = kProposal
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// votePrefix covers every vote of one proposal.
func votePrefix(id uint64) string {
	var buf [9]byte
	buf[0] = kVote
	packU64LEInline(id, buf[1:])
	return string(buf[:])
}

// voteKey derives the storage key for a voter's record on a proposal.
func voteKey(id uint64, voter sdk.Address) string {
	return votePrefix(id) + voter.Canonical().String()
}
