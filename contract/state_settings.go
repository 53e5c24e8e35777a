package contract

import (
	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// -----------------------------------------------------------------------------
// Settings + admin singletons
// -----------------------------------------------------------------------------

// isInitialized returns true once the admin record exists.
func (c *callCtx) isInitialized() (bool, error) {
	return c.has(adminKey)
}

// loadSettings returns the settings singleton, ErrNotInitialized if absent.
// The returned pointer is shared for the rest of the call.
func (c *callCtx) loadSettings() (*dao.DaoSettings, error) {
	if c.settings != nil {
		return c.settings, nil
	}
	raw, ok, err := c.get(settingsKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotInitialized
	}
	s, err := dao.DecodeSettings(raw)
	if err != nil {
		return nil, Wrap(CodeStorage, "decode settings", err)
	}
	c.settings = s
	return s, nil
}

func (c *callCtx) saveSettings(s *dao.DaoSettings) {
	c.settings = s
	c.put(settingsKey, dao.EncodeSettings(s))
}

func (c *callCtx) loadAdmin() (sdk.Address, error) {
	raw, ok, err := c.get(adminKey)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrNotInitialized
	}
	return sdk.Address(raw), nil
}

func (c *callCtx) saveAdmin(addr sdk.Address) {
	c.put(adminKey, []byte(addr.Canonical().String()))
}

// requireAdmin loads the admin and demands its auth.
func (e *Engine) requireAdmin(c *callCtx) (sdk.Address, error) {
	admin, err := c.loadAdmin()
	if err != nil {
		return "", err
	}
	if err := e.requireAuth(c, admin); err != nil {
		return "", err
	}
	return admin, nil
}
