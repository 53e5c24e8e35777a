package contract

// Lifetime extension re-asserted after every mutating call, in ledger
// time units.
const (
	TTLThreshold uint32 = 10000
	TTLExtendTo  uint32 = 10000
)

// Validation limits
const (
	MaxTitleLength       = 256
	MaxDescriptionLength = 8192
	MaxAddressLength     = 128
)
