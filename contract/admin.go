package contract

import (
	"context"

	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// Initialize writes the admin and the settings singleton exactly once.
// The caller must hold auth for admin.
func (e *Engine) Initialize(ctx context.Context, admin sdk.Address, params dao.SettingsParams) error {
	admin = admin.Canonical()
	return e.update(ctx, "initialize", func(c *callCtx) error {
		done, err := c.isInitialized()
		if err != nil {
			return err
		}
		if done {
			return ErrAlreadyInitialized
		}
		if err := validateAddress(admin); err != nil {
			return err
		}
		if err := e.requireAuth(c, admin); err != nil {
			return err
		}
		if err := validateQuorum(params.Quorum); err != nil {
			return err
		}
		settings := &dao.DaoSettings{}
		settings.Apply(params)
		c.saveAdmin(admin)
		c.saveSettings(settings)
		c.emit(Event{Kind: EventInitialized, Address: admin})
		return nil
	})
}

// UpdateDaoSettings overwrites the tunables. Aggregates stay untouched and
// proposals already created keep the timestamps computed at creation.
func (e *Engine) UpdateDaoSettings(ctx context.Context, params dao.SettingsParams) error {
	return e.update(ctx, "update_dao_settings", func(c *callCtx) error {
		settings, err := c.loadSettings()
		if err != nil {
			return err
		}
		admin, err := e.requireAdmin(c)
		if err != nil {
			return err
		}
		if err := validateQuorum(params.Quorum); err != nil {
			return err
		}
		settings.Apply(params)
		c.saveSettings(settings)
		c.emit(Event{Kind: EventSettingsUpdated, Address: admin})
		return nil
	})
}

// TransferAdmin hands admin rights over immediately, no confirmation step.
func (e *Engine) TransferAdmin(ctx context.Context, newAdmin sdk.Address) error {
	newAdmin = newAdmin.Canonical()
	return e.update(ctx, "transfer_admin", func(c *callCtx) error {
		if _, err := c.loadSettings(); err != nil {
			return err
		}
		if _, err := e.requireAdmin(c); err != nil {
			return err
		}
		if err := validateAddress(newAdmin); err != nil {
			return err
		}
		c.saveAdmin(newAdmin)
		c.emit(Event{Kind: EventAdminTransferred, Address: newAdmin})
		return nil
	})
}
