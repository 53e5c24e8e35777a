package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"dao_gov/contract"
	"dao_gov/contract/dao"
	"dao_gov/sdk"
)

// Genesis describes a DAO at birth: who administers it, the governance
// parameters and the first members.
type Genesis struct {
	Admin    sdk.Address        `yaml:"admin"`
	Settings dao.SettingsParams `yaml:"settings"`
	Members  []GenesisMember    `yaml:"members,omitempty"`
}

type GenesisMember struct {
	Address     sdk.Address `yaml:"address"`
	VotingPower uint64      `yaml:"voting_power"`
}

// DefaultGenesis is a week long vote with a day of delay and 40% quorum.
func DefaultGenesis(admin sdk.Address) *Genesis {
	return &Genesis{
		Admin: admin,
		Settings: dao.SettingsParams{
			ProposalThreshold: 1,
			Quorum:            4000,
			VotingPeriod:      7 * 24 * 60 * 60,
			ExecutionDelay:    24 * 60 * 60,
		},
	}
}

// Validate rejects what Initialize or AddMember would reject anyway, so a
// bad file fails before anything is written.
func (g *Genesis) Validate() error {
	if g.Admin == "" || len(g.Admin) > contract.MaxAddressLength {
		return fmt.Errorf("admin is required and at most %d bytes", contract.MaxAddressLength)
	}
	if g.Settings.Quorum > dao.BasisPoints {
		return fmt.Errorf("settings.quorum %d: %w", g.Settings.Quorum, contract.ErrInvalidQuorum)
	}
	seen := make(map[sdk.Address]bool, len(g.Members))
	var total uint64
	for i, m := range g.Members {
		if m.Address == "" || len(m.Address) > contract.MaxAddressLength {
			return fmt.Errorf("members[%d]: address is required and at most %d bytes", i, contract.MaxAddressLength)
		}
		key := m.Address.Canonical()
		if seen[key] {
			return fmt.Errorf("members[%d]: duplicate address %s", i, m.Address)
		}
		seen[key] = true
		if total+m.VotingPower < total {
			return fmt.Errorf("members[%d]: total voting power overflows", i)
		}
		total += m.VotingPower
	}
	return nil
}

// LoadGenesis reads and validates a genesis file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read genesis file: %w", err)
	}
	var g Genesis
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("failed to parse genesis file: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	return &g, nil
}

// SaveGenesis writes g to path, creating parent directories.
func (g *Genesis) SaveGenesis(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create genesis directory: %w", err)
	}
	data, err := yaml.Marshal(g)
	if err != nil {
		return fmt.Errorf("failed to marshal genesis: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write genesis file: %w", err)
	}
	return nil
}
