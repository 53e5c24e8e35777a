package dao

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// recordVersion prefixes every encoded record so the layout can move later.
const recordVersion byte = 1

var (
	errUnexpectedEOF = errors.New("unexpected EOF")
	errBadVersion    = errors.New("unsupported record version")
)

type binWriter struct {
	buf bytes.Buffer
}

func newWriter() *binWriter {
	w := &binWriter{}
	w.buf.WriteByte(recordVersion)
	return w
}

func (w *binWriter) bytes() []byte { return w.buf.Bytes() }

func (w *binWriter) writeBool(v bool) {
	if v {
		w.buf.WriteByte(1)
	} else {
		w.buf.WriteByte(0)
	}
}

// writeUint64 writes big endian numbers so tooling can read them without guessing.
func (w *binWriter) writeUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf.Write(b[:])
}

func (w *binWriter) writeVarUint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

// writeString prefixes its length then dumps UTF-8 directly.
func (w *binWriter) writeString(s string) {
	w.writeVarUint(uint64(len(s)))
	w.buf.WriteString(s)
}

type binReader struct {
	data []byte
	pos  int
}

func newReader(data []byte) (*binReader, error) {
	if len(data) == 0 {
		return nil, errUnexpectedEOF
	}
	if data[0] != recordVersion {
		return nil, fmt.Errorf("%w: %d", errBadVersion, data[0])
	}
	return &binReader{data: data, pos: 1}, nil
}

func (r *binReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errUnexpectedEOF
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *binReader) readBool() (bool, error) {
	b, err := r.readByte()
	if err != nil {
		return false, err
	}
	return b == 1, nil
}

func (r *binReader) readUint64() (uint64, error) {
	if r.pos+8 > len(r.data) {
		return 0, errUnexpectedEOF
	}
	val := binary.BigEndian.Uint64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return val, nil
}

func (r *binReader) readVarUint() (uint64, error) {
	val, n := binary.Uvarint(r.data[r.pos:])
	if n <= 0 {
		return 0, errors.New("invalid varuint")
	}
	r.pos += n
	return val, nil
}

func (r *binReader) readString() (string, error) {
	l, err := r.readVarUint()
	if err != nil {
		return "", err
	}
	if l > uint64(len(r.data)-r.pos) {
		return "", errUnexpectedEOF
	}
	s := string(r.data[r.pos : r.pos+int(l)])
	r.pos += int(l)
	return s, nil
}

// done fails on trailing garbage so a truncated or padded blob never
// decodes into something that looks valid.
func (r *binReader) done() error {
	if r.pos != len(r.data) {
		return fmt.Errorf("%d trailing bytes", len(r.data)-r.pos)
	}
	return nil
}

func EncodeSettings(s *DaoSettings) []byte {
	w := newWriter()
	w.writeUint64(s.ProposalThreshold)
	w.writeVarUint(s.Quorum)
	w.writeUint64(s.VotingPeriod)
	w.writeUint64(s.ExecutionDelay)
	w.writeUint64(s.TotalVotingPower)
	w.writeUint64(s.MemberCount)
	w.writeUint64(s.ProposalCount)
	return w.bytes()
}

func DecodeSettings(data []byte) (*DaoSettings, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	var s DaoSettings
	if s.ProposalThreshold, err = r.readUint64(); err != nil {
		return nil, err
	}
	q, err := r.readVarUint()
	if err != nil {
		return nil, err
	}
	if q > BasisPoints {
		return nil, fmt.Errorf("stored quorum %d out of range", q)
	}
	s.Quorum = q
	if s.VotingPeriod, err = r.readUint64(); err != nil {
		return nil, err
	}
	if s.ExecutionDelay, err = r.readUint64(); err != nil {
		return nil, err
	}
	if s.TotalVotingPower, err = r.readUint64(); err != nil {
		return nil, err
	}
	if s.MemberCount, err = r.readUint64(); err != nil {
		return nil, err
	}
	if s.ProposalCount, err = r.readUint64(); err != nil {
		return nil, err
	}
	return &s, r.done()
}

func EncodeMember(m *Member) []byte {
	w := newWriter()
	w.writeString(m.Address.String())
	w.writeUint64(m.JoiningTime)
	w.writeUint64(m.VotingPower)
	w.writeBool(m.IsActive)
	return w.bytes()
}

func DecodeMember(data []byte) (*Member, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	var m Member
	addr, err := r.readString()
	if err != nil {
		return nil, err
	}
	m.Address = Address(addr)
	if m.JoiningTime, err = r.readUint64(); err != nil {
		return nil, err
	}
	if m.VotingPower, err = r.readUint64(); err != nil {
		return nil, err
	}
	if m.IsActive, err = r.readBool(); err != nil {
		return nil, err
	}
	return &m, r.done()
}

func EncodeProposal(p *Proposal) []byte {
	w := newWriter()
	w.writeUint64(p.ID)
	w.writeString(p.Title)
	w.writeString(p.Description)
	w.writeString(p.Proposer.String())
	w.writeUint64(p.CreationTime)
	w.writeUint64(p.VotingEndsAt)
	w.writeUint64(p.ExecutableAt)
	w.buf.WriteByte(byte(p.Status))
	w.writeUint64(p.ForVotes)
	w.writeUint64(p.AgainstVotes)
	w.writeUint64(p.AbstainVotes)
	w.writeBool(p.IsExecuted)
	w.writeUint64(p.ExecutionTime)
	return w.bytes()
}

func DecodeProposal(data []byte) (*Proposal, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	var p Proposal
	if p.ID, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.Title, err = r.readString(); err != nil {
		return nil, err
	}
	if p.Description, err = r.readString(); err != nil {
		return nil, err
	}
	proposer, err := r.readString()
	if err != nil {
		return nil, err
	}
	p.Proposer = Address(proposer)
	if p.CreationTime, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.VotingEndsAt, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.ExecutableAt, err = r.readUint64(); err != nil {
		return nil, err
	}
	st, err := r.readByte()
	if err != nil {
		return nil, err
	}
	p.Status = ProposalStatus(st)
	if p.ForVotes, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.AgainstVotes, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.AbstainVotes, err = r.readUint64(); err != nil {
		return nil, err
	}
	if p.IsExecuted, err = r.readBool(); err != nil {
		return nil, err
	}
	if p.ExecutionTime, err = r.readUint64(); err != nil {
		return nil, err
	}
	return &p, r.done()
}

func EncodeVoteRecord(v *VoteRecord) []byte {
	w := newWriter()
	w.writeVarUint(v.ProposalID)
	w.writeString(v.Voter.String())
	w.buf.WriteByte(byte(v.Choice))
	w.writeVarUint(v.Weight)
	w.writeUint64(v.CastAt)
	return w.bytes()
}

func DecodeVoteRecord(data []byte) (*VoteRecord, error) {
	r, err := newReader(data)
	if err != nil {
		return nil, err
	}
	var v VoteRecord
	if v.ProposalID, err = r.readVarUint(); err != nil {
		return nil, err
	}
	voter, err := r.readString()
	if err != nil {
		return nil, err
	}
	v.Voter = Address(voter)
	c, err := r.readByte()
	if err != nil {
		return nil, err
	}
	v.Choice = VoteChoice(c)
	if !v.Choice.Valid() {
		return nil, fmt.Errorf("invalid vote choice %d", c)
	}
	if v.Weight, err = r.readVarUint(); err != nil {
		return nil, err
	}
	if v.CastAt, err = r.readUint64(); err != nil {
		return nil, err
	}
	return &v, r.done()
}
