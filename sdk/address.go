package sdk

import (
	"encoding/hex"
	"strings"
)

type Sender struct {
	Address       Address   `json:"id"`
	RequiredAuths []Address `json:"required_auths"`
}

type AddressType string

const (
	AddressTypeEVM     AddressType = "evm"
	AddressTypeStellar AddressType = "stellar"
	AddressTypeKey     AddressType = "key"
	AddressTypeHive    AddressType = "hive"
	AddressTypeSystem  AddressType = "system"
	AddressTypeUnknown AddressType = "unknown"
)

// Address is an account identifier as handed to us by the caller.
type Address string

func (a Address) String() string {
	return string(a)
}

// Type classifies the address by its spelling. Bare 0x accounts and
// did:pkh:eip155 both count as evm; anything unrecognised is unknown.
func (a Address) Type() AddressType {
	s := a.String()
	switch {
	case strings.HasPrefix(s, "did:pkh:eip155"):
		return AddressTypeEVM
	case isHexAccount(s):
		return AddressTypeEVM
	case isStellarAccount(s):
		return AddressTypeStellar
	case strings.HasPrefix(s, "did:key:"):
		return AddressTypeKey
	case strings.HasPrefix(s, "hive:"):
		return AddressTypeHive
	case strings.HasPrefix(s, "system:"):
		return AddressTypeSystem
	default:
		return AddressTypeUnknown
	}
}

// Canonical folds hex accounts to lower case so checksummed and plain
// spellings of the same key land on the same member record.
func (a Address) Canonical() Address {
	if isHexAccount(a.String()) {
		return Address(strings.ToLower(a.String()))
	}
	return a
}

// Equal compares two addresses after canonicalization.
func (a Address) Equal(b Address) bool {
	return a.Canonical() == b.Canonical()
}

func isHexAccount(s string) bool {
	if len(s) != 42 || !(strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")) {
		return false
	}
	_, err := hex.DecodeString(s[2:])
	return err == nil
}

// stellar account ids are 56 chars of base32 starting with G (accounts) or C (contracts)
func isStellarAccount(s string) bool {
	if len(s) != 56 || (s[0] != 'G' && s[0] != 'C') {
		return false
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '2' && c <= '7') {
			return false
		}
	}
	return true
}
