// Package audithook bridges Tally ledger events to an audit trail backend.
//
// It defines a local Recorder interface so the package does not import
// Chronicle directly. Callers inject a RecorderFunc adapter that bridges
// to Chronicle at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xraph/tally/plugin"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin              = (*Extension)(nil)
	_ plugin.OnMint              = (*Extension)(nil)
	_ plugin.OnBurn              = (*Extension)(nil)
	_ plugin.OnTransfer          = (*Extension)(nil)
	_ plugin.OnStake             = (*Extension)(nil)
	_ plugin.OnUnstake           = (*Extension)(nil)
	_ plugin.OnAdminTransferred  = (*Extension)(nil)
	_ plugin.OnPauseChanged      = (*Extension)(nil)
	_ plugin.OnAccessGranted     = (*Extension)(nil)
	_ plugin.OnOperationRejected = (*Extension)(nil)
	_ plugin.OnJournalFlushed    = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
// This matches chronicle.Emitter but is defined locally so that the
// audit_hook package does not import Chronicle directly — callers inject
// the concrete *chronicle.Chronicle at wiring time.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
// It mirrors chronicle/audit.Event but avoids a module dependency.
type AuditEvent struct {
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Tally ledger events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Balance hooks
// ──────────────────────────────────────────────────

// OnMint implements plugin.OnMint.
func (e *Extension) OnMint(ctx context.Context, caller, recipient string, amount uint64) error {
	return e.record(ctx, ActionMinted, SeverityInfo, OutcomeSuccess,
		ResourceBalance, recipient, CategoryLedger, nil,
		"caller", caller,
		"recipient", recipient,
		"amount", amount,
	)
}

// OnBurn implements plugin.OnBurn.
func (e *Extension) OnBurn(ctx context.Context, caller string, amount uint64) error {
	return e.record(ctx, ActionBurned, SeverityInfo, OutcomeSuccess,
		ResourceBalance, caller, CategoryLedger, nil,
		"caller", caller,
		"amount", amount,
	)
}

// OnTransfer implements plugin.OnTransfer.
func (e *Extension) OnTransfer(ctx context.Context, caller, recipient string, amount uint64) error {
	return e.record(ctx, ActionTransferred, SeverityInfo, OutcomeSuccess,
		ResourceBalance, caller, CategoryLedger, nil,
		"caller", caller,
		"recipient", recipient,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Staking hooks
// ──────────────────────────────────────────────────

// OnStake implements plugin.OnStake.
func (e *Extension) OnStake(ctx context.Context, caller string, amount uint64) error {
	return e.record(ctx, ActionStaked, SeverityInfo, OutcomeSuccess,
		ResourceStake, caller, CategoryStaking, nil,
		"caller", caller,
		"amount", amount,
	)
}

// OnUnstake implements plugin.OnUnstake.
func (e *Extension) OnUnstake(ctx context.Context, caller string, amount uint64) error {
	return e.record(ctx, ActionUnstaked, SeverityInfo, OutcomeSuccess,
		ResourceStake, caller, CategoryStaking, nil,
		"caller", caller,
		"amount", amount,
	)
}

// ──────────────────────────────────────────────────
// Authority hooks
// ──────────────────────────────────────────────────

// OnAdminTransferred implements plugin.OnAdminTransferred.
func (e *Extension) OnAdminTransferred(ctx context.Context, previous, next string) error {
	return e.record(ctx, ActionAdminTransferred, SeverityCritical, OutcomeSuccess,
		ResourceAuthority, next, CategoryGovernance, nil,
		"previous", previous,
		"next", next,
	)
}

// OnPauseChanged implements plugin.OnPauseChanged.
func (e *Extension) OnPauseChanged(ctx context.Context, paused bool) error {
	action := ActionUnpaused
	severity := SeverityInfo
	if paused {
		action = ActionPaused
		severity = SeverityWarning
	}
	return e.record(ctx, action, severity, OutcomeSuccess,
		ResourceAuthority, "", CategoryGovernance, nil,
		"paused", paused,
	)
}

// OnAccessGranted implements plugin.OnAccessGranted.
func (e *Extension) OnAccessGranted(ctx context.Context, admin, user string) error {
	return e.record(ctx, ActionAccessGranted, SeverityInfo, OutcomeSuccess,
		ResourceAccess, user, CategoryAccess, nil,
		"admin", admin,
		"user", user,
	)
}

// ──────────────────────────────────────────────────
// Failure and persistence hooks
// ──────────────────────────────────────────────────

// OnOperationRejected implements plugin.OnOperationRejected.
func (e *Extension) OnOperationRejected(ctx context.Context, op, caller string, reason error) error {
	return e.record(ctx, ActionOperationRejected, SeverityWarning, OutcomeFailure,
		ResourceBalance, caller, CategoryLedger, reason,
		"op", op,
		"caller", caller,
	)
}

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (e *Extension) OnJournalFlushed(ctx context.Context, count int, elapsed time.Duration) error {
	return e.record(ctx, ActionJournalFlushed, SeverityInfo, OutcomeSuccess,
		ResourceJournal, "", CategoryPersistence, nil,
		"count", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audit_hook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
