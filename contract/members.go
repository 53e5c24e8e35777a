package contract

import (
	"context"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// AddMember registers a fresh member with the given power. Addresses that
// already have a record (active or not) are rejected so the aggregates
// never count anyone twice.
func (e *Engine) AddMember(ctx context.Context, member sdk.Address, votingPower uint64) error {
	member = member.Canonical()
	return e.update(ctx, "add_member", func(c *callCtx) error {
		settings, err := c.loadSettings()
		if err != nil {
			return err
		}
		if _, err := e.requireAdmin(c); err != nil {
			return err
		}
		if err := validateAddress(member); err != nil {
			return err
		}
		existing, err := c.loadMember(member)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrMemberExists.With("address", member.String())
		}
		total, err := addPower(settings.TotalVotingPower, votingPower)
		if err != nil {
			return err
		}
		c.saveMember(&dao.Member{
			Address:     member,
			JoiningTime: c.now,
			VotingPower: votingPower,
			IsActive:    true,
		})
		settings.TotalVotingPower = total
		// counts every member ever added, deactivation does not decrement it
		settings.MemberCount++
		c.saveSettings(settings)
		c.emit(Event{Kind: EventMemberAdded, Address: member, VotingPower: votingPower})
		return nil
	})
}

// UpdateVotingPower moves total_voting_power by the delta between the old
// and the new power. Inactive members cannot be given power back this way.
func (e *Engine) UpdateVotingPower(ctx context.Context, member sdk.Address, newPower uint64) error {
	member = member.Canonical()
	return e.update(ctx, "update_voting_power", func(c *callCtx) error {
		settings, err := c.loadSettings()
		if err != nil {
			return err
		}
		if _, err := e.requireAdmin(c); err != nil {
			return err
		}
		m, err := c.loadMember(member)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMemberNotFound.With("address", member.String())
		}
		if !m.IsActive {
			return ErrMemberInactive.With("address", member.String())
		}
		total, err := subPower(settings.TotalVotingPower, m.VotingPower)
		if err != nil {
			return err
		}
		if total, err = addPower(total, newPower); err != nil {
			return err
		}
		m.VotingPower = newPower
		c.saveMember(m)
		settings.TotalVotingPower = total
		c.saveSettings(settings)
		c.emit(Event{Kind: EventVotingPowerUpdated, Address: member, VotingPower: newPower})
		return nil
	})
}

// DeactivateMember zeroes the member's power and clears the active flag.
// The record stays and member_count is left as is.
func (e *Engine) DeactivateMember(ctx context.Context, member sdk.Address) error {
	member = member.Canonical()
	return e.update(ctx, "deactivate_member", func(c *callCtx) error {
		settings, err := c.loadSettings()
		if err != nil {
			return err
		}
		if _, err := e.requireAdmin(c); err != nil {
			return err
		}
		m, err := c.loadMember(member)
		if err != nil {
			return err
		}
		if m == nil {
			return ErrMemberNotFound.With("address", member.String())
		}
		total, err := subPower(settings.TotalVotingPower, m.VotingPower)
		if err != nil {
			return err
		}
		m.VotingPower = 0
		m.IsActive = false
		c.saveMember(m)
		settings.TotalVotingPower = total
		c.saveSettings(settings)
		c.emit(Event{Kind: EventMemberDeactivated, Address: member})
		return nil
	})
}
