// Package tally provides an embeddable single-writer token ledger engine for
// Go applications.
//
// Tally is designed as a library, not a service. Import it directly into your
// Go application and embed the ledger next to your own domain logic. It
// provides:
//
//   - A fungible balance ledger with mint, burn, and transfer
//   - A stake vault for locking balances out of circulation
//   - An admin authority with a global pause switch
//   - An append-only access registry for gating off-ledger features
//   - Write-behind persistence with pluggable store backends
//   - A plugin system for audit trails and metrics
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/xraph/tally"
//	    "github.com/xraph/tally/store/postgres"
//	)
//
//	// Initialize store
//	store, err := postgres.New(databaseURL)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create ledger
//	l := tally.New(store, tally.WithGenesisAdmin(adminID))
//
//	// Start the ledger (loads state, begins background workers)
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// # Core Concepts
//
// Every unit in circulation is either spendable or staked. The administrator
// mints new units, any holder can move or destroy their own:
//
//	err := l.Mint(ctx, adminID, alice, 1_000)
//	err = l.Transfer(ctx, alice, bob, 250)
//	err = l.Burn(ctx, bob, 50)
//
// Staking locks units without removing them from supply:
//
//	err := l.Stake(ctx, alice, 500)
//	err = l.Unstake(ctx, alice, 100)
//
// The pause switch freezes user-driven movement (burn, transfer, stake,
// unstake) while leaving the administrator's mint and access grants working:
//
//	paused, err := l.SetPaused(ctx, adminID, true)
//
// Failures are sentinel errors with stable numeric codes:
//
//	if err := l.Transfer(ctx, alice, bob, amount); err != nil {
//	    log.Printf("transfer rejected: code=%d %v", tally.Code(err), err)
//	}
//
// # Consistency
//
// The in-memory state is authoritative and every operation is validated in
// full before any write, so a rejected operation never leaves a partial
// change. Supply conservation holds at all times:
//
//	total supply == sum of balances + sum of stakes
//
// Persistence is write-behind: applied operations are mirrored into the store
// by a background worker in batches, and Stop drains the buffer before
// shutdown. Amounts use unsigned integer arithmetic in the token's smallest
// unit; there is no floating point anywhere in the engine.
//
// # Integration
//
// Tally integrates with the Forgery ecosystem:
//
//   - Forge: mount the ledger as an application extension with HTTP routes
//   - Grove: SQL store backends for Postgres and SQLite
//   - Vessel: dependency injection when running under Forge
//
// # TypeID
//
// Accounts and journal entries use TypeID for globally unique, type-safe
// identifiers:
//
//	acct_01h2xcejqtf2nbrexx3vqjhp41  // Account ID
//	jrnl_01h455vb4pex5vsknk084sn02q  // Journal entry ID
//
// TypeIDs are K-sortable, making them ideal for database indexes and
// providing natural time-ordering of journal entries.
package tally
