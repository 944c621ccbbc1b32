package tally

import "github.com/xraph/tally/types"

// Re-export common types for convenience so users don't have to import types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// TokenInfo is re-exported from types package.
type TokenInfo = types.TokenInfo

// Entity is re-exported from types package.
type Entity = types.Entity

// MaxSupply is the hard cap on total supply, in the token's smallest unit.
const MaxSupply = types.MaxSupply

// Re-export Amount helpers
var Sum = types.Sum

// Re-export constructors
var (
	NewEntity        = types.NewEntity
	DefaultTokenInfo = types.DefaultTokenInfo
)
