package contract

import (
	"context"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// callCtx is scoped to a single engine call. Reads fall through to the
// store, writes are staged here and only flushed once the call is known
// to succeed, so a failing call leaves the store byte-identical.
type callCtx struct {
	ctx context.Context
	tx  sdk.Tx
	now uint64

	writes map[string][]byte
	order  []string

	settings  *dao.DaoSettings
	members   map[string]*dao.Member
	proposals map[uint64]*dao.Proposal

	events []Event
}

func newCallCtx(ctx context.Context, tx sdk.Tx, now uint64) *callCtx {
	return &callCtx{
		ctx:       ctx,
		tx:        tx,
		now:       now,
		writes:    map[string][]byte{},
		members:   map[string]*dao.Member{},
		proposals: map[uint64]*dao.Proposal{},
	}
}

func (c *callCtx) get(key string) ([]byte, bool, error) {
	if v, ok := c.writes[key]; ok {
		return v, true, nil
	}
	v, ok, err := c.tx.Get(key)
	if err != nil {
		return nil, false, Wrap(CodeStorage, "read state", err)
	}
	return v, ok, nil
}

func (c *callCtx) has(key string) (bool, error) {
	if _, ok := c.writes[key]; ok {
		return true, nil
	}
	ok, err := c.tx.Has(key)
	if err != nil {
		return false, Wrap(CodeStorage, "read state", err)
	}
	return ok, nil
}

// put stages a write. Later puts to the same key win.
func (c *callCtx) put(key string, value []byte) {
	if _, seen := c.writes[key]; !seen {
		c.order = append(c.order, key)
	}
	c.writes[key] = value
}

// flush pushes staged writes to the store in first-touch order.
func (c *callCtx) flush() error {
	for _, k := range c.order {
		if err := c.tx.Set(k, c.writes[k]); err != nil {
			return Wrap(CodeStorage, "write state", err)
		}
	}
	return nil
}

func (c *callCtx) emit(ev Event) {
	c.events = append(c.events, ev)
}
