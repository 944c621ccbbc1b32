package types

// TokenInfo is informational token metadata. The ledger's internal unit
// is the raw integer Amount: Decimals is advisory for display and is
// never applied to any arithmetic.
type TokenInfo struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// DefaultTokenInfo returns the built-in token metadata.
func DefaultTokenInfo() TokenInfo {
	return TokenInfo{
		Name:     "Tally Token",
		Symbol:   "TLY",
		Decimals: 6,
	}
}
