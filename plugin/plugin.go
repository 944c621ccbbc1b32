// Package plugin provides an extensible plugin system for Tally.
// Plugins can hook into ledger lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnMint is called after new units are minted.
type OnMint interface {
	Plugin
	OnMint(ctx context.Context, caller, recipient string, amount uint64) error
}

// OnBurn is called after units are burned.
type OnBurn interface {
	Plugin
	OnBurn(ctx context.Context, caller string, amount uint64) error
}

// OnTransfer is called after a transfer completes.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, caller, recipient string, amount uint64) error
}

// ──────────────────────────────────────────────────
// Staking hooks
// ──────────────────────────────────────────────────

// OnStake is called after units move into the stake vault.
type OnStake interface {
	Plugin
	OnStake(ctx context.Context, caller string, amount uint64) error
}

// OnUnstake is called after units return from the stake vault.
type OnUnstake interface {
	Plugin
	OnUnstake(ctx context.Context, caller string, amount uint64) error
}

// ──────────────────────────────────────────────────
// Authority hooks
// ──────────────────────────────────────────────────

// OnAdminTransferred is called after admin authority changes hands.
type OnAdminTransferred interface {
	Plugin
	OnAdminTransferred(ctx context.Context, previous, next string) error
}

// OnPauseChanged is called after the pause switch is toggled.
type OnPauseChanged interface {
	Plugin
	OnPauseChanged(ctx context.Context, paused bool) error
}

// OnAccessGranted is called after an account is granted access.
type OnAccessGranted interface {
	Plugin
	OnAccessGranted(ctx context.Context, admin, user string) error
}

// ──────────────────────────────────────────────────
// Failure and persistence hooks
// ──────────────────────────────────────────────────

// OnOperationRejected is called when an operation fails validation.
// The ledger state is unchanged when this fires.
type OnOperationRejected interface {
	Plugin
	OnOperationRejected(ctx context.Context, op, caller string, reason error) error
}

// OnJournalFlushed is called when a persistence batch is flushed to the store.
type OnJournalFlushed interface {
	Plugin
	OnJournalFlushed(ctx context.Context, count int, elapsed time.Duration) error
}
