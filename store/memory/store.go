// Package memory provides an in-memory Store implementation, intended
// for tests and ephemeral ledgers.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/xraph/tally"
	"github.com/xraph/tally/account"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/journal"
	"github.com/xraph/tally/store"
)

type Store struct {
	mu sync.RWMutex

	// Ledger-wide record; nil until the first SaveMeta
	meta *store.Meta

	// Account snapshots
	accounts map[string]*account.Account

	// Operation journal, append order
	entries []*journal.Entry

	closed bool
}

func New() *Store {
	return &Store{
		accounts: make(map[string]*account.Account),
		entries:  make([]*journal.Entry, 0),
	}
}

// Meta Store implementation

func (s *Store) LoadMeta(_ context.Context) (*store.Meta, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tally.ErrStoreClosed
	}
	if s.meta == nil {
		return nil, tally.ErrNotFound
	}
	m := *s.meta
	return &m, nil
}

func (s *Store) SaveMeta(_ context.Context, m *store.Meta) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tally.ErrStoreClosed
	}
	cp := *m
	s.meta = &cp
	return nil
}

// Account Store implementation

func (s *Store) GetAccount(_ context.Context, accountID id.AccountID) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tally.ErrStoreClosed
	}
	if a, ok := s.accounts[accountID.String()]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, tally.ErrAccountNotFound
}

func (s *Store) UpsertAccounts(_ context.Context, accounts []*account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tally.ErrStoreClosed
	}
	for _, a := range accounts {
		cp := *a
		s.accounts[a.ID.String()] = &cp
	}
	return nil
}

func (s *Store) ListAccounts(_ context.Context, opts account.ListOpts) ([]*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tally.ErrStoreClosed
	}

	result := make([]*account.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		cp := *a
		result = append(result, &cp)
	}

	// Stable order so pagination covers every account exactly once
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID.String() < result[j].ID.String()
	})

	// Apply limit/offset
	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) CountAccounts(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return 0, tally.ErrStoreClosed
	}
	return int64(len(s.accounts)), nil
}

// Journal Store implementation

func (s *Store) AppendEntries(_ context.Context, entries []*journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return tally.ErrStoreClosed
	}
	for _, e := range entries {
		cp := *e
		s.entries = append(s.entries, &cp)
	}
	return nil
}

func (s *Store) QueryJournal(_ context.Context, opts journal.QueryOpts) ([]*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, tally.ErrStoreClosed
	}

	result := make([]*journal.Entry, 0)
	for _, e := range s.entries {
		if !matchesQuery(e, opts) {
			continue
		}
		cp := *e
		result = append(result, &cp)
	}

	start := opts.Offset
	if start > len(result) {
		start = len(result)
	}
	end := start + opts.Limit
	if opts.Limit == 0 || end > len(result) {
		end = len(result)
	}

	return result[start:end], nil
}

func (s *Store) PurgeJournal(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, tally.ErrStoreClosed
	}

	kept := make([]*journal.Entry, 0, len(s.entries))
	var purged int64
	for _, e := range s.entries {
		if e.Timestamp.Before(before) {
			purged++
			continue
		}
		kept = append(kept, e)
	}
	s.entries = kept
	return purged, nil
}

func matchesQuery(e *journal.Entry, opts journal.QueryOpts) bool {
	if !opts.Account.IsNil() && e.Caller != opts.Account && e.Target != opts.Account {
		return false
	}
	if opts.Op != "" && e.Op != opts.Op {
		return false
	}
	if !opts.Start.IsZero() && e.Timestamp.Before(opts.Start) {
		return false
	}
	if !opts.End.IsZero() && !e.Timestamp.Before(opts.End) {
		return false
	}
	return true
}

// Core methods

func (s *Store) Migrate(_ context.Context) error {
	return nil
}

func (s *Store) Ping(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return tally.ErrStoreClosed
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}
