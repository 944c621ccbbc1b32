package tally

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/tally/account"
	"github.com/xraph/tally/id"
	"github.com/xraph/tally/journal"
	"github.com/xraph/tally/plugin"
	"github.com/xraph/tally/store"
	"github.com/xraph/tally/types"
)

// loadPageSize is how many account records are fetched per page when
// rebuilding state from the store.
const loadPageSize = 500

// Ledger is the token ledger engine. It owns the authoritative
// in-memory State, serializes every public operation under a single
// writer lock, and mirrors successful mutations into the store through
// a background batch flush worker.
type Ledger struct {
	mu      sync.Mutex
	state   *State
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger

	token        types.TokenInfo
	genesisAdmin id.AccountID

	// Background persistence
	persistBuffer   chan *persistEvent
	stopChan        chan struct{}
	wg              sync.WaitGroup
	flushBatchSize  int
	flushInterval   time.Duration
	journalDisabled bool
	migrateDisabled bool
}

// persistEvent captures the durable footprint of one applied operation:
// the snapshots of every touched account, the resulting meta record,
// and the journal entry (nil when journaling is disabled).
type persistEvent struct {
	accounts []*account.Account
	meta     store.Meta
	entry    *journal.Entry
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:          s,
		plugins:        plugin.NewRegistry(),
		logger:         slog.Default(),
		token:          types.DefaultTokenInfo(),
		persistBuffer:  make(chan *persistEvent, 10000),
		stopChan:       make(chan struct{}),
		flushBatchSize: 100,
		flushInterval:  5 * time.Second,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithGenesisAdmin sets the administrator used when Start finds an
// empty store. Required for first boot: an adminless ledger could
// never mint.
func WithGenesisAdmin(admin id.AccountID) Option {
	return func(l *Ledger) {
		l.genesisAdmin = admin
	}
}

// WithTokenInfo sets the informational token metadata.
func WithTokenInfo(info types.TokenInfo) Option {
	return func(l *Ledger) {
		l.token = info
	}
}

// WithFlushConfig configures the persistence batch parameters.
func WithFlushConfig(batchSize int, flushInterval time.Duration) Option {
	return func(l *Ledger) {
		l.flushBatchSize = batchSize
		l.flushInterval = flushInterval
	}
}

// WithJournalDisabled stops the engine from writing journal entries.
// Account snapshots and meta are still mirrored.
func WithJournalDisabled() Option {
	return func(l *Ledger) {
		l.journalDisabled = true
	}
}

// WithMigrateDisabled skips store.Migrate during Start. Use when the
// schema is managed externally; state load and the flush worker still
// run.
func WithMigrateDisabled() Option {
	return func(l *Ledger) {
		l.migrateDisabled = true
	}
}

// Start migrates the store, loads (or creates) the ledger state, and
// begins the persistence flush worker.
func (l *Ledger) Start(ctx context.Context) error {
	if !l.migrateDisabled {
		if err := l.store.Migrate(ctx); err != nil {
			return err
		}
	}

	if err := l.loadState(ctx); err != nil {
		return err
	}

	l.plugins.EmitInit(ctx, l)

	l.wg.Add(1)
	go l.flushWorker(ctx)

	l.logger.Info("ledger started",
		"admin", l.state.Admin().String(),
		"total_supply", l.state.TotalSupply().Uint64(),
		"paused", l.state.Paused(),
		"batch_size", l.flushBatchSize,
		"flush_interval", l.flushInterval,
	)

	return nil
}

// Stop drains the persistence buffer, flushes the final batch, and
// shuts down the Ledger.
func (l *Ledger) Stop() error {
	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// loadState rebuilds state from the store, or creates genesis state on
// a fresh store.
func (l *Ledger) loadState(ctx context.Context) error {
	meta, err := l.store.LoadMeta(ctx)
	if errors.Is(err, ErrNotFound) {
		st, gerr := NewState(l.genesisAdmin)
		if gerr != nil {
			return gerr
		}
		l.state = st

		// Persist the genesis record immediately so a restart before
		// the first flush still finds the admin.
		return l.store.SaveMeta(ctx, &store.Meta{
			Admin:     st.Admin(),
			Paused:    st.Paused(),
			UpdatedAt: time.Now().UTC(),
		})
	}
	if err != nil {
		return err
	}

	accounts, err := l.loadAccounts(ctx)
	if err != nil {
		return err
	}

	st, err := RestoreState(meta.Admin, meta.Paused, accounts)
	if err != nil {
		return err
	}
	if st.TotalSupply() != meta.TotalSupply {
		l.logger.Warn("total supply recomputed from account records",
			"stored", meta.TotalSupply.Uint64(),
			"recomputed", st.TotalSupply().Uint64(),
		)
	}

	l.state = st
	return nil
}

func (l *Ledger) loadAccounts(ctx context.Context) ([]*account.Account, error) {
	var all []*account.Account
	for offset := 0; ; offset += loadPageSize {
		page, err := l.store.ListAccounts(ctx, account.ListOpts{
			Limit:  loadPageSize,
			Offset: offset,
		})
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < loadPageSize {
			return all, nil
		}
	}
}

// ──────────────────────────────────────────────────
// Admin authority
// ──────────────────────────────────────────────────

// TransferAdmin replaces the administrator. Admin only; the burn
// address is rejected as a destination.
func (l *Ledger) TransferAdmin(ctx context.Context, caller, newAdmin id.AccountID) error {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return ErrNotStarted
	}
	previous := l.state.Admin()
	if err := l.state.TransferAdmin(caller, newAdmin); err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpTransferAdmin, caller, err)
		return err
	}
	l.enqueue(l.stage(journal.OpTransferAdmin, caller, newAdmin, 0, false))
	l.mu.Unlock()

	l.plugins.EmitAdminTransferred(ctx, previous.String(), newAdmin.String())
	l.logger.Info("admin transferred",
		"previous", previous.String(),
		"next", newAdmin.String(),
	)
	return nil
}

// SetPaused sets the global pause switch and returns the new value.
// Admin only.
func (l *Ledger) SetPaused(ctx context.Context, caller id.AccountID, value bool) (bool, error) {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return false, ErrNotStarted
	}
	paused, err := l.state.SetPaused(caller, value)
	if err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpSetPaused, caller, err)
		return paused, err
	}
	l.enqueue(l.stage(journal.OpSetPaused, caller, id.Nil, 0, paused))
	l.mu.Unlock()

	l.plugins.EmitPauseChanged(ctx, paused)
	l.logger.Info("pause switch set", "paused", paused)
	return paused, nil
}

// ──────────────────────────────────────────────────
// Balance ledger
// ──────────────────────────────────────────────────

// Mint issues new units to recipient. Admin only; pause-exempt.
func (l *Ledger) Mint(ctx context.Context, caller, recipient id.AccountID, amount types.Amount) error {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return ErrNotStarted
	}
	if err := l.state.Mint(caller, recipient, amount); err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpMint, caller, err)
		return err
	}
	ev := l.stage(journal.OpMint, caller, recipient, amount, false, recipient)
	l.enqueue(ev)
	l.mu.Unlock()

	l.plugins.EmitMint(ctx, caller.String(), recipient.String(), amount.Uint64())
	l.logger.Debug("minted",
		"recipient", recipient.String(),
		"amount", amount.Uint64(),
		"total_supply", ev.meta.TotalSupply.Uint64(),
	)
	return nil
}

// Burn destroys units from the caller's spendable balance. Pause-gated.
func (l *Ledger) Burn(ctx context.Context, caller id.AccountID, amount types.Amount) error {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return ErrNotStarted
	}
	if err := l.state.Burn(caller, amount); err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpBurn, caller, err)
		return err
	}
	ev := l.stage(journal.OpBurn, caller, id.Nil, amount, false, caller)
	l.enqueue(ev)
	l.mu.Unlock()

	l.plugins.EmitBurn(ctx, caller.String(), amount.Uint64())
	l.logger.Debug("burned",
		"caller", caller.String(),
		"amount", amount.Uint64(),
		"total_supply", ev.meta.TotalSupply.Uint64(),
	)
	return nil
}

// Transfer moves units from the caller to recipient. Pause-gated.
func (l *Ledger) Transfer(ctx context.Context, caller, recipient id.AccountID, amount types.Amount) error {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return ErrNotStarted
	}
	if err := l.state.Transfer(caller, recipient, amount); err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpTransfer, caller, err)
		return err
	}
	l.enqueue(l.stage(journal.OpTransfer, caller, recipient, amount, false, caller, recipient))
	l.mu.Unlock()

	l.plugins.EmitTransfer(ctx, caller.String(), recipient.String(), amount.Uint64())
	l.logger.Debug("transferred",
		"caller", caller.String(),
		"recipient", recipient.String(),
		"amount", amount.Uint64(),
	)
	return nil
}

// ──────────────────────────────────────────────────
// Stake vault
// ──────────────────────────────────────────────────

// Stake moves units from the caller's spendable balance into the stake
// vault. Pause-gated.
func (l *Ledger) Stake(ctx context.Context, caller id.AccountID, amount types.Amount) error {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return ErrNotStarted
	}
	if err := l.state.Stake(caller, amount); err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpStake, caller, err)
		return err
	}
	l.enqueue(l.stage(journal.OpStake, caller, id.Nil, amount, false, caller))
	l.mu.Unlock()

	l.plugins.EmitStake(ctx, caller.String(), amount.Uint64())
	l.logger.Debug("staked", "caller", caller.String(), "amount", amount.Uint64())
	return nil
}

// Unstake returns units from the stake vault to the caller's spendable
// balance. Pause-gated.
func (l *Ledger) Unstake(ctx context.Context, caller id.AccountID, amount types.Amount) error {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return ErrNotStarted
	}
	if err := l.state.Unstake(caller, amount); err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpUnstake, caller, err)
		return err
	}
	l.enqueue(l.stage(journal.OpUnstake, caller, id.Nil, amount, false, caller))
	l.mu.Unlock()

	l.plugins.EmitUnstake(ctx, caller.String(), amount.Uint64())
	l.logger.Debug("unstaked", "caller", caller.String(), "amount", amount.Uint64())
	return nil
}

// ──────────────────────────────────────────────────
// Access registry
// ──────────────────────────────────────────────────

// GrantAccess adds user to the access registry. Admin only;
// pause-exempt; idempotent.
func (l *Ledger) GrantAccess(ctx context.Context, caller, user id.AccountID) error {
	l.mu.Lock()
	if l.state == nil {
		l.mu.Unlock()
		return ErrNotStarted
	}
	if err := l.state.GrantAccess(caller, user); err != nil {
		l.mu.Unlock()
		l.reject(ctx, journal.OpGrantAccess, caller, err)
		return err
	}
	l.enqueue(l.stage(journal.OpGrantAccess, caller, user, 0, false, user))
	l.mu.Unlock()

	l.plugins.EmitAccessGranted(ctx, caller.String(), user.String())
	l.logger.Info("access granted", "user", user.String())
	return nil
}

// ──────────────────────────────────────────────────
// Reads
// ──────────────────────────────────────────────────

// GetBalance returns the spendable balance of an account; 0 if absent.
func (l *Ledger) GetBalance(a id.AccountID) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == nil {
		return 0
	}
	return l.state.Balance(a)
}

// GetStake returns the staked amount of an account; 0 if absent.
func (l *Ledger) GetStake(a id.AccountID) types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == nil {
		return 0
	}
	return l.state.Staked(a)
}

// GetTotalSupply returns the outstanding unit count.
func (l *Ledger) GetTotalSupply() types.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == nil {
		return 0
	}
	return l.state.TotalSupply()
}

// GetAdmin returns the current administrator.
func (l *Ledger) GetAdmin() id.AccountID {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == nil {
		return id.Nil
	}
	return l.state.Admin()
}

// IsPaused returns the pause switch.
func (l *Ledger) IsPaused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == nil {
		return false
	}
	return l.state.Paused()
}

// HasAccess reports whether an account has been granted access.
func (l *Ledger) HasAccess(a id.AccountID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == nil {
		return false
	}
	return l.state.HasAccess(a)
}

// Token returns the informational token metadata.
func (l *Ledger) Token() types.TokenInfo { return l.token }

// Journal queries the persisted operation journal.
func (l *Ledger) Journal(ctx context.Context, opts journal.QueryOpts) ([]*journal.Entry, error) {
	return l.store.QueryJournal(ctx, opts)
}

// PurgeJournal deletes journal entries older than the cutoff and
// returns how many were removed.
func (l *Ledger) PurgeJournal(ctx context.Context, before time.Time) (int64, error) {
	return l.store.PurgeJournal(ctx, before)
}

// ──────────────────────────────────────────────────
// Write-behind persistence
// ──────────────────────────────────────────────────

// stage builds the persist event for an applied operation. Caller must
// hold l.mu so the snapshots match the state the operation produced.
func (l *Ledger) stage(op journal.Op, caller, target id.AccountID, amount types.Amount, paused bool, touched ...id.AccountID) *persistEvent {
	ev := &persistEvent{
		meta: store.Meta{
			Admin:       l.state.Admin(),
			Paused:      l.state.Paused(),
			TotalSupply: l.state.TotalSupply(),
			UpdatedAt:   time.Now().UTC(),
		},
	}

	seen := make(map[id.AccountID]struct{}, len(touched))
	for _, a := range touched {
		if _, dup := seen[a]; dup {
			continue
		}
		seen[a] = struct{}{}
		ev.accounts = append(ev.accounts, l.state.snapshot(a))
	}

	if !l.journalDisabled {
		ev.entry = &journal.Entry{
			ID:        id.NewJournalID(),
			Op:        op,
			Caller:    caller,
			Target:    target,
			Amount:    amount,
			Paused:    paused,
			Timestamp: time.Now().UTC(),
		}
	}

	return ev
}

// enqueue hands a persist event to the flush worker. Callers hold l.mu,
// so events enter the buffer in application order and the worker's
// last-wins coalescing always lands on the newest snapshot. When the
// buffer is full the send blocks until the worker catches up; jumping
// the queue with a synchronous write would reorder against events still
// buffered.
func (l *Ledger) enqueue(ev *persistEvent) {
	select {
	case l.persistBuffer <- ev:
		return
	default:
	}

	l.logger.Warn("persist buffer full, waiting for flush worker")
	select {
	case l.persistBuffer <- ev:
	case <-l.stopChan:
		// The worker has been told to stop; its drain may already have
		// passed, so write this final event through directly.
		l.flushBatch(context.Background(), []*persistEvent{ev})
	}
}

// flushWorker mirrors applied operations into the store in batches.
func (l *Ledger) flushWorker(ctx context.Context) {
	defer l.wg.Done()

	batch := make([]*persistEvent, 0, l.flushBatchSize)
	ticker := time.NewTicker(l.flushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			// Drain anything still buffered, then final flush.
			drained := false
			for !drained {
				select {
				case ev := <-l.persistBuffer:
					batch = append(batch, ev)
				default:
					drained = true
				}
			}
			if len(batch) > 0 {
				l.flushBatch(ctx, batch)
			}
			return

		case ev := <-l.persistBuffer:
			batch = append(batch, ev)
			if len(batch) >= l.flushBatchSize {
				l.flushBatch(ctx, batch)
				batch = make([]*persistEvent, 0, l.flushBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flushBatch(ctx, batch)
				batch = make([]*persistEvent, 0, l.flushBatchSize)
			}
		}
	}
}

func (l *Ledger) flushBatch(ctx context.Context, batch []*persistEvent) {
	start := time.Now()

	// Coalesce the batch: the last snapshot per account and the last
	// meta record win; journal entries are kept in order.
	snapshots := make(map[id.AccountID]*account.Account)
	order := make([]id.AccountID, 0, len(batch))
	entries := make([]*journal.Entry, 0, len(batch))
	var meta store.Meta

	for _, ev := range batch {
		for _, a := range ev.accounts {
			if _, ok := snapshots[a.ID]; !ok {
				order = append(order, a.ID)
			}
			snapshots[a.ID] = a
		}
		if ev.entry != nil {
			entries = append(entries, ev.entry)
		}
		meta = ev.meta
	}

	upserts := make([]*account.Account, 0, len(order))
	for _, aid := range order {
		upserts = append(upserts, snapshots[aid])
	}

	if len(upserts) > 0 {
		if err := l.store.UpsertAccounts(ctx, upserts); err != nil {
			l.logger.Error("failed to flush account snapshots",
				"error", err,
				"accounts", len(upserts),
			)
			return
		}
	}

	if err := l.store.SaveMeta(ctx, &meta); err != nil {
		l.logger.Error("failed to flush ledger meta", "error", err)
		return
	}

	if len(entries) > 0 {
		if err := l.store.AppendEntries(ctx, entries); err != nil {
			l.logger.Error("failed to flush journal entries",
				"error", err,
				"entries", len(entries),
			)
			return
		}
	}

	elapsed := time.Since(start)
	l.plugins.EmitJournalFlushed(ctx, len(batch), elapsed)

	l.logger.Debug("flushed ledger batch",
		"batch_size", len(batch),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// reject reports a validation failure to plugins and the log. State is
// unchanged when this is called.
func (l *Ledger) reject(ctx context.Context, op journal.Op, caller id.AccountID, err error) {
	l.plugins.EmitOperationRejected(ctx, string(op), caller.String(), err)
	l.logger.Debug("operation rejected",
		"op", string(op),
		"caller", caller.String(),
		"code", Code(err),
		"error", err,
	)
}
