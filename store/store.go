// Package store defines the storage interface for Tally.
package store

import (
	"context"
	"time"

	"github.com/xraph/tally/account"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/journal"
	"github.com/xraph/tally/types"
)

// Meta is the durable ledger-wide record: current admin, pause switch,
// and the total supply at the time of the last flush.
type Meta struct {
	Admin       id.AccountID `json:"admin"`
	Paused      bool         `json:"paused"`
	TotalSupply types.Amount `json:"total_supply"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Store is the unified storage interface for the ledger mirror. The
// engine's in-memory state machine is authoritative; stores persist
// batched snapshots and the operation journal.
//
// LoadMeta returns tally.ErrNotFound on a fresh (never-flushed) store,
// and GetAccount returns tally.ErrAccountNotFound for unknown accounts.
type Store interface {
	// Meta methods
	LoadMeta(ctx context.Context) (*Meta, error)
	SaveMeta(ctx context.Context, m *Meta) error

	// Account methods
	GetAccount(ctx context.Context, accountID id.AccountID) (*account.Account, error)
	UpsertAccounts(ctx context.Context, accounts []*account.Account) error
	ListAccounts(ctx context.Context, opts account.ListOpts) ([]*account.Account, error)
	CountAccounts(ctx context.Context) (int64, error)

	// Journal methods
	AppendEntries(ctx context.Context, entries []*journal.Entry) error
	QueryJournal(ctx context.Context, opts journal.QueryOpts) ([]*journal.Entry, error)
	PurgeJournal(ctx context.Context, before time.Time) (int64, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
