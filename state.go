package tally

import (
	"github.com/xraph/tally/account"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// State is the ledger state machine: admin authority and pause switch,
// per-account spendable balances, per-account stakes, and the set of
// access-granted accounts.
//
// State is a single-writer structure and performs no locking of its
// own — the Ledger engine serializes every call. Each operation
// validates all preconditions before performing any write, so a failed
// operation never leaves a partial mutation behind.
//
// Invariants, holding before and after every operation:
//   - totalSupply <= types.MaxSupply
//   - totalSupply == sum of all balances plus all stakes
//   - no balance, stake, or supply value ever wraps below zero
//   - admin is never the burn address
type State struct {
	admin       id.AccountID
	paused      bool
	totalSupply types.Amount
	balances    map[id.AccountID]types.Amount
	stakes      map[id.AccountID]types.Amount
	access      map[id.AccountID]struct{}
}

// NewState creates a genesis state: the given admin, unpaused, zero
// supply, no balances, no stakes, no grants.
func NewState(admin id.AccountID) (*State, error) {
	if admin.IsNil() {
		return nil, ErrNoGenesisAdmin
	}
	if admin.IsBurn() {
		return nil, ErrNilAddress
	}

	return &State{
		admin:    admin,
		balances: make(map[id.AccountID]types.Amount),
		stakes:   make(map[id.AccountID]types.Amount),
		access:   make(map[id.AccountID]struct{}),
	}, nil
}

// RestoreState rebuilds a State from persisted account records. The
// total supply is recomputed from the records, so conservation holds by
// construction.
func RestoreState(admin id.AccountID, paused bool, accounts []*account.Account) (*State, error) {
	s, err := NewState(admin)
	if err != nil {
		return nil, err
	}
	s.paused = paused

	for _, a := range accounts {
		if !a.Balance.IsZero() {
			s.balances[a.ID] = a.Balance
		}
		if !a.Staked.IsZero() {
			s.stakes[a.ID] = a.Staked
		}
		if a.HasAccess {
			s.access[a.ID] = struct{}{}
		}

		total, err := a.Balance.Add(a.Staked)
		if err != nil {
			return nil, err
		}
		supply, err := s.totalSupply.Add(total)
		if err != nil {
			return nil, err
		}
		s.totalSupply = supply
	}

	return s, nil
}

// ──────────────────────────────────────────────────
// Admin authority
// ──────────────────────────────────────────────────

// TransferAdmin replaces the admin. Only the current admin may call it,
// and the burn address is never a valid destination.
func (s *State) TransferAdmin(caller, newAdmin id.AccountID) error {
	if !s.isAdmin(caller) {
		return ErrNotAuthorized
	}
	if newAdmin.IsNil() || newAdmin.IsBurn() {
		return ErrNilAddress
	}

	s.admin = newAdmin
	return nil
}

// SetPaused sets the global pause switch and returns the new value.
// Only the admin may call it.
func (s *State) SetPaused(caller id.AccountID, value bool) (bool, error) {
	if !s.isAdmin(caller) {
		return s.paused, ErrNotAuthorized
	}

	s.paused = value
	return s.paused, nil
}

func (s *State) isAdmin(caller id.AccountID) bool {
	return caller == s.admin
}

// ensureNotPaused gates the pause-sensitive operations: burn, transfer,
// stake, unstake. Mint and grant-access deliberately bypass it —
// pausing blocks ordinary user activity, not administrative issuance
// or access control.
func (s *State) ensureNotPaused() error {
	if s.paused {
		return ErrPaused
	}
	return nil
}

// ──────────────────────────────────────────────────
// Balance ledger
// ──────────────────────────────────────────────────

// Mint issues amount new units to recipient. Admin only; not pause-
// gated. Fails if the new total supply would exceed types.MaxSupply.
// The burn address is accepted as a recipient: minting to it parks
// units irrecoverably without special-casing supply accounting.
func (s *State) Mint(caller, recipient id.AccountID, amount types.Amount) error {
	if !s.isAdmin(caller) {
		return ErrNotAuthorized
	}

	newSupply, err := s.totalSupply.Add(amount)
	if err != nil || newSupply > types.MaxSupply {
		return ErrMaxSupplyExceeded
	}

	s.balances[recipient] = s.balanceOf(recipient) + amount
	s.totalSupply = newSupply
	return nil
}

// Burn destroys amount units from the caller's spendable balance.
// Pause-gated.
func (s *State) Burn(caller id.AccountID, amount types.Amount) error {
	if err := s.ensureNotPaused(); err != nil {
		return err
	}

	remaining, err := s.balanceOf(caller).Sub(amount)
	if err != nil {
		return ErrInsufficientBalance
	}

	s.balances[caller] = remaining
	s.totalSupply -= amount // cannot underflow: balance <= supply
	return nil
}

// Transfer moves amount units from the caller to recipient. Pause-
// gated. A self-transfer with sufficient balance is a no-op success.
// Like Mint, the burn address is accepted as a recipient.
func (s *State) Transfer(caller, recipient id.AccountID, amount types.Amount) error {
	if err := s.ensureNotPaused(); err != nil {
		return err
	}

	remaining, err := s.balanceOf(caller).Sub(amount)
	if err != nil {
		return ErrInsufficientBalance
	}

	s.balances[caller] = remaining
	s.balances[recipient] = s.balanceOf(recipient) + amount
	return nil
}

// ──────────────────────────────────────────────────
// Stake vault
// ──────────────────────────────────────────────────

// Stake moves amount units from the caller's spendable balance into the
// staked sub-balance. Pause-gated. Total supply is unchanged.
func (s *State) Stake(caller id.AccountID, amount types.Amount) error {
	if err := s.ensureNotPaused(); err != nil {
		return err
	}

	remaining, err := s.balanceOf(caller).Sub(amount)
	if err != nil {
		return ErrInsufficientBalance
	}

	s.balances[caller] = remaining
	s.stakes[caller] = s.stakeOf(caller) + amount
	return nil
}

// Unstake moves amount units from the caller's staked sub-balance back
// into the spendable balance. Pause-gated.
func (s *State) Unstake(caller id.AccountID, amount types.Amount) error {
	if err := s.ensureNotPaused(); err != nil {
		return err
	}

	remaining, err := s.stakeOf(caller).Sub(amount)
	if err != nil {
		return ErrInsufficientStake
	}

	s.stakes[caller] = remaining
	s.balances[caller] = s.balanceOf(caller) + amount
	return nil
}

// ──────────────────────────────────────────────────
// Access registry
// ──────────────────────────────────────────────────

// GrantAccess adds user to the access set. Admin only; not pause-gated.
// Idempotent: granting twice is not an error, and membership only grows.
func (s *State) GrantAccess(caller, user id.AccountID) error {
	if !s.isAdmin(caller) {
		return ErrNotAuthorized
	}

	s.access[user] = struct{}{}
	return nil
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// Admin returns the current administrator.
func (s *State) Admin() id.AccountID { return s.admin }

// Paused returns the pause switch.
func (s *State) Paused() bool { return s.paused }

// TotalSupply returns the outstanding unit count (balances plus stakes).
func (s *State) TotalSupply() types.Amount { return s.totalSupply }

// Balance returns the spendable balance of an account; 0 if absent.
func (s *State) Balance(a id.AccountID) types.Amount { return s.balanceOf(a) }

// Staked returns the staked amount of an account; 0 if absent.
func (s *State) Staked(a id.AccountID) types.Amount { return s.stakeOf(a) }

// HasAccess reports whether an account has been granted access.
func (s *State) HasAccess(a id.AccountID) bool {
	_, ok := s.access[a]
	return ok
}

// balanceOf and stakeOf are the explicit get-or-default(0) accessors:
// every read site goes through them so absent-means-zero stays auditable.
func (s *State) balanceOf(a id.AccountID) types.Amount { return s.balances[a] }

func (s *State) stakeOf(a id.AccountID) types.Amount { return s.stakes[a] }

// snapshot builds a persistable record for one account from the current
// maps. Used by the engine to stage write-behind upserts.
func (s *State) snapshot(a id.AccountID) *account.Account {
	return &account.Account{
		Entity:    types.NewEntity(),
		ID:        a,
		Balance:   s.balanceOf(a),
		Staked:    s.stakeOf(a),
		HasAccess: s.HasAccess(a),
	}
}

// Accounts returns a snapshot record for every account that appears in
// any of the balance, stake, or access maps.
func (s *State) Accounts() []*account.Account {
	seen := make(map[id.AccountID]struct{}, len(s.balances))
	for a := range s.balances {
		seen[a] = struct{}{}
	}
	for a := range s.stakes {
		seen[a] = struct{}{}
	}
	for a := range s.access {
		seen[a] = struct{}{}
	}

	result := make([]*account.Account, 0, len(seen))
	for a := range seen {
		result = append(result, s.snapshot(a))
	}
	return result
}
