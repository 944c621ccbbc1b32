// Package observability provides a metrics extension for Tally that
// records ledger operation counts via a MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/tally/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin              = (*MetricsExtension)(nil)
	_ plugin.OnInit              = (*MetricsExtension)(nil)
	_ plugin.OnMint              = (*MetricsExtension)(nil)
	_ plugin.OnBurn              = (*MetricsExtension)(nil)
	_ plugin.OnTransfer          = (*MetricsExtension)(nil)
	_ plugin.OnStake             = (*MetricsExtension)(nil)
	_ plugin.OnUnstake           = (*MetricsExtension)(nil)
	_ plugin.OnAdminTransferred  = (*MetricsExtension)(nil)
	_ plugin.OnPauseChanged      = (*MetricsExtension)(nil)
	_ plugin.OnAccessGranted     = (*MetricsExtension)(nil)
	_ plugin.OnOperationRejected = (*MetricsExtension)(nil)
	_ plugin.OnJournalFlushed    = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records ledger-wide operation metrics.
// Register it as a Tally plugin to automatically track ledger activity.
type MetricsExtension struct {
	factory MetricFactory

	// Balance metrics
	Minted        Counter
	Burned        Counter
	Transferred   Counter
	MintedUnits   Histogram
	MovedUnits    Histogram

	// Staking metrics
	Staked      Counter
	Unstaked    Counter
	StakedUnits Histogram

	// Authority metrics
	AdminTransfers Counter
	PauseChanges   Counter
	AccessGrants   Counter

	// Failure metrics
	OperationsRejected Counter

	// Persistence metrics
	FlushBatchSize Histogram
	FlushLatency   Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
// Use app.Metrics() in forge extensions.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Balance metrics
		Minted:      factory.Counter("tally.balance.minted"),
		Burned:      factory.Counter("tally.balance.burned"),
		Transferred: factory.Counter("tally.balance.transferred"),
		MintedUnits: factory.Histogram("tally.balance.minted_units"),
		MovedUnits:  factory.Histogram("tally.balance.moved_units"),

		// Staking metrics
		Staked:      factory.Counter("tally.stake.locked"),
		Unstaked:    factory.Counter("tally.stake.released"),
		StakedUnits: factory.Histogram("tally.stake.locked_units"),

		// Authority metrics
		AdminTransfers: factory.Counter("tally.authority.admin_transfers"),
		PauseChanges:   factory.Counter("tally.authority.pause_changes"),
		AccessGrants:   factory.Counter("tally.authority.access_grants"),

		// Failure metrics
		OperationsRejected: factory.Counter("tally.operations.rejected"),

		// Persistence metrics
		FlushBatchSize: factory.Histogram("tally.journal.flush.batch_size"),
		FlushLatency:   factory.Histogram("tally.journal.flush.latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	// No initialization needed
	return nil
}

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (m *MetricsExtension) OnMint(_ context.Context, _, _ string, amount uint64) error {
	m.Minted.Inc()
	m.MintedUnits.Observe(float64(amount))
	return nil
}

// OnBurn implements plugin.OnBurn.
func (m *MetricsExtension) OnBurn(_ context.Context, _ string, amount uint64) error {
	m.Burned.Inc()
	m.MovedUnits.Observe(float64(amount))
	return nil
}

// OnTransfer implements plugin.OnTransfer.
func (m *MetricsExtension) OnTransfer(_ context.Context, _, _ string, amount uint64) error {
	m.Transferred.Inc()
	m.MovedUnits.Observe(float64(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Staking hooks
// ──────────────────────────────────────────────────

// OnStake implements plugin.OnStake.
func (m *MetricsExtension) OnStake(_ context.Context, _ string, amount uint64) error {
	m.Staked.Inc()
	m.StakedUnits.Observe(float64(amount))
	return nil
}

// OnUnstake implements plugin.OnUnstake.
func (m *MetricsExtension) OnUnstake(_ context.Context, _ string, amount uint64) error {
	m.Unstaked.Inc()
	m.StakedUnits.Observe(float64(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Authority hooks
// ──────────────────────────────────────────────────

// OnAdminTransferred implements plugin.OnAdminTransferred.
func (m *MetricsExtension) OnAdminTransferred(_ context.Context, _, _ string) error {
	m.AdminTransfers.Inc()
	return nil
}

// OnPauseChanged implements plugin.OnPauseChanged.
func (m *MetricsExtension) OnPauseChanged(_ context.Context, _ bool) error {
	m.PauseChanges.Inc()
	return nil
}

// OnAccessGranted implements plugin.OnAccessGranted.
func (m *MetricsExtension) OnAccessGranted(_ context.Context, _, _ string) error {
	m.AccessGrants.Inc()
	return nil
}

// ──────────────────────────────────────────────────
// Failure and persistence hooks
// ──────────────────────────────────────────────────

// OnOperationRejected implements plugin.OnOperationRejected.
func (m *MetricsExtension) OnOperationRejected(_ context.Context, _, _ string, _ error) error {
	m.OperationsRejected.Inc()
	return nil
}

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (m *MetricsExtension) OnJournalFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.FlushBatchSize.Observe(float64(count))
	m.FlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}
