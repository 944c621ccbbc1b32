// Package account defines the persisted account record for Tally.
package account

import (
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// Account is the durable snapshot of a single ledger account: its
// spendable balance, staked amount, and access-grant flag. Absent
// accounts are equivalent to a zero-valued record.
type Account struct {
	types.Entity
	ID        id.AccountID `json:"id"`
	Balance   types.Amount `json:"balance"`
	Staked    types.Amount `json:"staked"`
	HasAccess bool         `json:"has_access"`
}

// Total returns the account's combined holdings (balance plus stake).
func (a *Account) Total() (types.Amount, error) {
	return a.Balance.Add(a.Staked)
}

// IsZero reports whether the account holds nothing and has no grants.
// Zero accounts need not be persisted.
func (a *Account) IsZero() bool {
	return a.Balance.IsZero() && a.Staked.IsZero() && !a.HasAccess
}

// ListOpts controls account listing.
type ListOpts struct {
	Limit  int
	Offset int
}
