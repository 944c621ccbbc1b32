package tally

import (
	"errors"
	"testing"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

func newTestState(t *testing.T) (*State, id.AccountID) {
	t.Helper()
	admin := id.NewAccountID()
	s, err := NewState(admin)
	if err != nil {
		t.Fatalf("NewState failed: %v", err)
	}
	return s, admin
}

// checkConservation verifies total supply equals the sum of all
// balances and stakes.
func checkConservation(t *testing.T, s *State) {
	t.Helper()
	var sum types.Amount
	for _, b := range s.balances {
		sum += b
	}
	for _, st := range s.stakes {
		sum += st
	}
	if sum != s.totalSupply {
		t.Errorf("conservation violated: supply %d, balances+stakes %d", s.totalSupply, sum)
	}
}

func TestNewState(t *testing.T) {
	t.Run("ValidAdmin", func(t *testing.T) {
		admin := id.NewAccountID()
		s, err := NewState(admin)
		if err != nil {
			t.Fatalf("NewState failed: %v", err)
		}
		if s.Admin() != admin {
			t.Errorf("admin: got %v, want %v", s.Admin(), admin)
		}
		if s.Paused() {
			t.Error("new state should not be paused")
		}
		if !s.TotalSupply().IsZero() {
			t.Errorf("new state supply: got %d, want 0", s.TotalSupply())
		}
	})

	t.Run("NilAdmin", func(t *testing.T) {
		if _, err := NewState(id.Nil); !errors.Is(err, ErrNoGenesisAdmin) {
			t.Errorf("got %v, want ErrNoGenesisAdmin", err)
		}
	})

	t.Run("BurnAddressAdmin", func(t *testing.T) {
		if _, err := NewState(id.BurnAddress()); !errors.Is(err, ErrNilAddress) {
			t.Errorf("got %v, want ErrNilAddress", err)
		}
	})
}

func TestMint(t *testing.T) {
	t.Run("AdminMints", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()

		if err := s.Mint(admin, alice, 1_000); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if got := s.Balance(alice); got != 1_000 {
			t.Errorf("balance: got %d, want 1000", got)
		}
		if got := s.TotalSupply(); got != 1_000 {
			t.Errorf("supply: got %d, want 1000", got)
		}
		checkConservation(t, s)
	})

	t.Run("NonAdminRejected", func(t *testing.T) {
		s, _ := newTestState(t)
		alice := id.NewAccountID()

		err := s.Mint(alice, alice, 100)
		if !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("got %v, want ErrNotAuthorized", err)
		}
		if !s.TotalSupply().IsZero() {
			t.Error("failed mint must not change supply")
		}
	})

	t.Run("ExactlyMaxSupply", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()

		if err := s.Mint(admin, alice, types.MaxSupply); err != nil {
			t.Fatalf("minting exactly max supply should succeed: %v", err)
		}
		if got := s.TotalSupply(); got != types.MaxSupply {
			t.Errorf("supply: got %d, want %d", got, types.MaxSupply)
		}
	})

	t.Run("ExceedsMaxSupply", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()

		if err := s.Mint(admin, alice, types.MaxSupply); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		err := s.Mint(admin, alice, 1)
		if !errors.Is(err, ErrMaxSupplyExceeded) {
			t.Errorf("got %v, want ErrMaxSupplyExceeded", err)
		}
		if got := s.Balance(alice); got != types.MaxSupply {
			t.Errorf("failed mint must not change balance: got %d", got)
		}
		checkConservation(t, s)
	})

	t.Run("SupplyCapCountsStakes", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()

		if err := s.Mint(admin, alice, types.MaxSupply); err != nil {
			t.Fatalf("mint failed: %v", err)
		}
		if err := s.Stake(alice, types.MaxSupply); err != nil {
			t.Fatalf("stake failed: %v", err)
		}

		// Staked units stay in supply, so the cap is still enforced.
		if err := s.Mint(admin, alice, 1); !errors.Is(err, ErrMaxSupplyExceeded) {
			t.Errorf("got %v, want ErrMaxSupplyExceeded", err)
		}
	})

	t.Run("MintToBurnAddress", func(t *testing.T) {
		s, admin := newTestState(t)

		if err := s.Mint(admin, id.BurnAddress(), 500); err != nil {
			t.Fatalf("minting to the burn address should park units: %v", err)
		}
		if got := s.Balance(id.BurnAddress()); got != 500 {
			t.Errorf("burn address balance: got %d, want 500", got)
		}
		checkConservation(t, s)
	})

	t.Run("ZeroAmount", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()

		if err := s.Mint(admin, alice, 0); err != nil {
			t.Fatalf("zero mint should be a no-op success: %v", err)
		}
		if !s.TotalSupply().IsZero() {
			t.Error("zero mint must not change supply")
		}
	})
}

func TestBurn(t *testing.T) {
	t.Run("ReducesBalanceAndSupply", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 1_000)

		if err := s.Burn(alice, 400); err != nil {
			t.Fatalf("burn failed: %v", err)
		}
		if got := s.Balance(alice); got != 600 {
			t.Errorf("balance: got %d, want 600", got)
		}
		if got := s.TotalSupply(); got != 600 {
			t.Errorf("supply: got %d, want 600", got)
		}
		checkConservation(t, s)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 100)

		err := s.Burn(alice, 101)
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
		if got := s.Balance(alice); got != 100 {
			t.Errorf("failed burn must not change balance: got %d", got)
		}
	})

	t.Run("StakedUnitsNotBurnable", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 1_000)
		if err := s.Stake(alice, 800); err != nil {
			t.Fatalf("stake failed: %v", err)
		}

		// Only the spendable 200 can be burned.
		if err := s.Burn(alice, 300); !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("UnknownAccount", func(t *testing.T) {
		s, _ := newTestState(t)
		stranger := id.NewAccountID()

		if err := s.Burn(stranger, 1); !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
	})
}

func TestTransfer(t *testing.T) {
	t.Run("MovesUnits", func(t *testing.T) {
		s, admin := newTestState(t)
		alice, bob := id.NewAccountID(), id.NewAccountID()
		mustMint(t, s, admin, alice, 1_000)

		if err := s.Transfer(alice, bob, 250); err != nil {
			t.Fatalf("transfer failed: %v", err)
		}
		if got := s.Balance(alice); got != 750 {
			t.Errorf("sender balance: got %d, want 750", got)
		}
		if got := s.Balance(bob); got != 250 {
			t.Errorf("recipient balance: got %d, want 250", got)
		}
		if got := s.TotalSupply(); got != 1_000 {
			t.Errorf("supply must be unchanged: got %d", got)
		}
		checkConservation(t, s)
	})

	t.Run("InsufficientBalance", func(t *testing.T) {
		s, admin := newTestState(t)
		alice, bob := id.NewAccountID(), id.NewAccountID()
		mustMint(t, s, admin, alice, 100)

		err := s.Transfer(alice, bob, 101)
		if !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
		if got := s.Balance(bob); !got.IsZero() {
			t.Errorf("failed transfer must not credit recipient: got %d", got)
		}
	})

	t.Run("SelfTransfer", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 500)

		if err := s.Transfer(alice, alice, 200); err != nil {
			t.Fatalf("self-transfer with sufficient balance should succeed: %v", err)
		}
		if got := s.Balance(alice); got != 500 {
			t.Errorf("self-transfer must not change balance: got %d", got)
		}
	})

	t.Run("SelfTransferInsufficient", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 100)

		if err := s.Transfer(alice, alice, 200); !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("ToBurnAddress", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 500)

		if err := s.Transfer(alice, id.BurnAddress(), 500); err != nil {
			t.Fatalf("transfer to burn address should park units: %v", err)
		}
		if got := s.TotalSupply(); got != 500 {
			t.Errorf("supply must be unchanged: got %d", got)
		}
		checkConservation(t, s)
	})
}

func TestStakeUnstake(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 1_000)

		if err := s.Stake(alice, 600); err != nil {
			t.Fatalf("stake failed: %v", err)
		}
		if got := s.Balance(alice); got != 400 {
			t.Errorf("balance after stake: got %d, want 400", got)
		}
		if got := s.Staked(alice); got != 600 {
			t.Errorf("staked: got %d, want 600", got)
		}
		if got := s.TotalSupply(); got != 1_000 {
			t.Errorf("staking must not change supply: got %d", got)
		}
		checkConservation(t, s)

		if err := s.Unstake(alice, 600); err != nil {
			t.Fatalf("unstake failed: %v", err)
		}
		if got := s.Balance(alice); got != 1_000 {
			t.Errorf("balance after unstake: got %d, want 1000", got)
		}
		if got := s.Staked(alice); !got.IsZero() {
			t.Errorf("staked after unstake: got %d, want 0", got)
		}
		checkConservation(t, s)
	})

	t.Run("StakeInsufficientBalance", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 100)

		if err := s.Stake(alice, 101); !errors.Is(err, ErrInsufficientBalance) {
			t.Errorf("got %v, want ErrInsufficientBalance", err)
		}
	})

	t.Run("UnstakeInsufficientStake", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 1_000)
		if err := s.Stake(alice, 100); err != nil {
			t.Fatalf("stake failed: %v", err)
		}

		// Spendable balance does not cover an unstake shortfall.
		if err := s.Unstake(alice, 101); !errors.Is(err, ErrInsufficientStake) {
			t.Errorf("got %v, want ErrInsufficientStake", err)
		}
	})

	t.Run("UnstakeUnknownAccount", func(t *testing.T) {
		s, _ := newTestState(t)
		stranger := id.NewAccountID()

		if err := s.Unstake(stranger, 1); !errors.Is(err, ErrInsufficientStake) {
			t.Errorf("got %v, want ErrInsufficientStake", err)
		}
	})
}

func TestPauseGating(t *testing.T) {
	setup := func(t *testing.T) (*State, id.AccountID, id.AccountID) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()
		mustMint(t, s, admin, alice, 1_000)
		if err := s.Stake(alice, 200); err != nil {
			t.Fatalf("stake failed: %v", err)
		}
		if _, err := s.SetPaused(admin, true); err != nil {
			t.Fatalf("pause failed: %v", err)
		}
		return s, admin, alice
	}

	t.Run("GatedOperations", func(t *testing.T) {
		s, _, alice := setup(t)
		bob := id.NewAccountID()

		tests := []struct {
			name string
			op   func() error
		}{
			{"Burn", func() error { return s.Burn(alice, 1) }},
			{"Transfer", func() error { return s.Transfer(alice, bob, 1) }},
			{"Stake", func() error { return s.Stake(alice, 1) }},
			{"Unstake", func() error { return s.Unstake(alice, 1) }},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.op(); !errors.Is(err, ErrPaused) {
					t.Errorf("got %v, want ErrPaused", err)
				}
			})
		}
	})

	t.Run("PauseCheckedBeforeFunds", func(t *testing.T) {
		s, _, alice := setup(t)

		// Insufficient amount while paused still reports Paused.
		if err := s.Burn(alice, 1_000_000); !errors.Is(err, ErrPaused) {
			t.Errorf("got %v, want ErrPaused", err)
		}
	})

	t.Run("ExemptOperations", func(t *testing.T) {
		s, admin, _ := setup(t)
		carol := id.NewAccountID()

		if err := s.Mint(admin, carol, 100); err != nil {
			t.Errorf("mint while paused should succeed: %v", err)
		}
		if err := s.GrantAccess(admin, carol); err != nil {
			t.Errorf("grant access while paused should succeed: %v", err)
		}
		if err := s.TransferAdmin(admin, carol); err != nil {
			t.Errorf("admin transfer while paused should succeed: %v", err)
		}
	})

	t.Run("Unpause", func(t *testing.T) {
		s, admin, alice := setup(t)

		paused, err := s.SetPaused(admin, false)
		if err != nil {
			t.Fatalf("unpause failed: %v", err)
		}
		if paused {
			t.Error("expected unpaused")
		}
		if err := s.Burn(alice, 1); err != nil {
			t.Errorf("burn after unpause should succeed: %v", err)
		}
	})

	t.Run("SetPausedIdempotent", func(t *testing.T) {
		s, admin := newTestState(t)

		for _, want := range []bool{true, true, false, false} {
			paused, err := s.SetPaused(admin, want)
			if err != nil {
				t.Fatalf("SetPaused(%v) failed: %v", want, err)
			}
			if paused != want {
				t.Errorf("SetPaused(%v) returned %v", want, paused)
			}
		}
	})
}

func TestAdminGating(t *testing.T) {
	s, admin := newTestState(t)
	mallory := id.NewAccountID()

	tests := []struct {
		name string
		op   func(caller id.AccountID) error
	}{
		{"TransferAdmin", func(c id.AccountID) error { return s.TransferAdmin(c, id.NewAccountID()) }},
		{"SetPaused", func(c id.AccountID) error { _, err := s.SetPaused(c, true); return err }},
		{"Mint", func(c id.AccountID) error { return s.Mint(c, mallory, 1) }},
		{"GrantAccess", func(c id.AccountID) error { return s.GrantAccess(c, mallory) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.op(mallory); !errors.Is(err, ErrNotAuthorized) {
				t.Errorf("got %v, want ErrNotAuthorized", err)
			}
		})
	}

	// State untouched by the rejected calls.
	if s.Admin() != admin {
		t.Error("admin changed by rejected call")
	}
	if s.Paused() {
		t.Error("paused changed by rejected call")
	}
	if !s.TotalSupply().IsZero() {
		t.Error("supply changed by rejected call")
	}
	if s.HasAccess(mallory) {
		t.Error("access changed by rejected call")
	}
}

func TestTransferAdmin(t *testing.T) {
	t.Run("ReplacesAdmin", func(t *testing.T) {
		s, admin := newTestState(t)
		next := id.NewAccountID()

		if err := s.TransferAdmin(admin, next); err != nil {
			t.Fatalf("transfer admin failed: %v", err)
		}
		if s.Admin() != next {
			t.Errorf("admin: got %v, want %v", s.Admin(), next)
		}

		// The old admin has no residual authority.
		if err := s.Mint(admin, next, 1); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("got %v, want ErrNotAuthorized", err)
		}
		if err := s.Mint(next, next, 1); err != nil {
			t.Errorf("new admin mint failed: %v", err)
		}
	})

	t.Run("NonAdminRejected", func(t *testing.T) {
		s, admin := newTestState(t)
		mallory := id.NewAccountID()

		if err := s.TransferAdmin(mallory, mallory); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("got %v, want ErrNotAuthorized", err)
		}
		if s.Admin() != admin {
			t.Error("failed transfer must not change admin")
		}
	})

	t.Run("BurnAddressRejected", func(t *testing.T) {
		s, admin := newTestState(t)

		if err := s.TransferAdmin(admin, id.BurnAddress()); !errors.Is(err, ErrNilAddress) {
			t.Errorf("got %v, want ErrNilAddress", err)
		}
		if s.Admin() != admin {
			t.Error("failed transfer must not change admin")
		}
	})

	t.Run("SelfTransfer", func(t *testing.T) {
		s, admin := newTestState(t)

		if err := s.TransferAdmin(admin, admin); err != nil {
			t.Fatalf("self transfer should be a no-op success: %v", err)
		}
		if s.Admin() != admin {
			t.Error("admin must be unchanged")
		}
	})
}

func TestGrantAccess(t *testing.T) {
	t.Run("AdminGrants", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()

		if s.HasAccess(alice) {
			t.Error("fresh account should have no access")
		}
		if err := s.GrantAccess(admin, alice); err != nil {
			t.Fatalf("grant failed: %v", err)
		}
		if !s.HasAccess(alice) {
			t.Error("granted account should have access")
		}
	})

	t.Run("Idempotent", func(t *testing.T) {
		s, admin := newTestState(t)
		alice := id.NewAccountID()

		for i := 0; i < 3; i++ {
			if err := s.GrantAccess(admin, alice); err != nil {
				t.Fatalf("grant %d failed: %v", i, err)
			}
		}
		if !s.HasAccess(alice) {
			t.Error("granted account should have access")
		}
	})

	t.Run("NonAdminRejected", func(t *testing.T) {
		s, _ := newTestState(t)
		alice := id.NewAccountID()

		if err := s.GrantAccess(alice, alice); !errors.Is(err, ErrNotAuthorized) {
			t.Errorf("got %v, want ErrNotAuthorized", err)
		}
		if s.HasAccess(alice) {
			t.Error("failed grant must not add access")
		}
	})

	t.Run("GrantToAccountWithoutBalance", func(t *testing.T) {
		s, admin := newTestState(t)
		stranger := id.NewAccountID()

		if err := s.GrantAccess(admin, stranger); err != nil {
			t.Fatalf("grant to balance-less account should succeed: %v", err)
		}
		if !s.HasAccess(stranger) {
			t.Error("expected access")
		}
	})
}

func TestRestoreState(t *testing.T) {
	t.Run("RecomputesSupply", func(t *testing.T) {
		s, admin := newTestState(t)
		alice, bob := id.NewAccountID(), id.NewAccountID()
		mustMint(t, s, admin, alice, 1_000)
		mustMint(t, s, admin, bob, 500)
		if err := s.Stake(alice, 300); err != nil {
			t.Fatalf("stake failed: %v", err)
		}
		if err := s.GrantAccess(admin, bob); err != nil {
			t.Fatalf("grant failed: %v", err)
		}
		if _, err := s.SetPaused(admin, true); err != nil {
			t.Fatalf("pause failed: %v", err)
		}

		restored, err := RestoreState(s.Admin(), s.Paused(), s.Accounts())
		if err != nil {
			t.Fatalf("RestoreState failed: %v", err)
		}

		if restored.Admin() != s.Admin() {
			t.Error("admin mismatch after restore")
		}
		if !restored.Paused() {
			t.Error("paused flag lost on restore")
		}
		if restored.TotalSupply() != s.TotalSupply() {
			t.Errorf("supply: got %d, want %d", restored.TotalSupply(), s.TotalSupply())
		}
		if got := restored.Balance(alice); got != 700 {
			t.Errorf("alice balance: got %d, want 700", got)
		}
		if got := restored.Staked(alice); got != 300 {
			t.Errorf("alice stake: got %d, want 300", got)
		}
		if !restored.HasAccess(bob) {
			t.Error("bob access lost on restore")
		}
		checkConservation(t, restored)
	})

	t.Run("EmptyRecords", func(t *testing.T) {
		admin := id.NewAccountID()
		restored, err := RestoreState(admin, false, nil)
		if err != nil {
			t.Fatalf("RestoreState failed: %v", err)
		}
		if !restored.TotalSupply().IsZero() {
			t.Errorf("supply: got %d, want 0", restored.TotalSupply())
		}
	})
}

func mustMint(t *testing.T, s *State, admin, recipient id.AccountID, amount types.Amount) {
	t.Helper()
	if err := s.Mint(admin, recipient, amount); err != nil {
		t.Fatalf("mint failed: %v", err)
	}
}
