package contract

import (
	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// loadMember returns the member record or (nil, nil) when the address
// was never added. Decoded members are cached for the rest of the call.
func (c *callCtx) loadMember(addr sdk.Address) (*dao.Member, error) {
	key := memberKey(addr)
	if m, ok := c.members[key]; ok {
		return m, nil
	}
	raw, ok, err := c.get(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	m, err := dao.DecodeMember(raw)
	if err != nil {
		return nil, Wrap(CodeStorage, "decode member", err).With("address", addr.String())
	}
	c.members[key] = m
	return m, nil
}

func (c *callCtx) saveMember(m *dao.Member) {
	key := memberKey(m.Address)
	c.members[key] = m
	c.put(key, dao.EncodeMember(m))
}

// activeMember is the membership gate for proposers and voters.
func (c *callCtx) activeMember(addr sdk.Address) (*dao.Member, error) {
	m, err := c.loadMember(addr)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, ErrNotAMember.With("address", addr.String())
	}
	if !m.IsActive {
		return nil, ErrMemberInactive.With("address", addr.String())
	}
	return m, nil
}
