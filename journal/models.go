// Package journal defines the append-only operation log for Tally.
package journal

import (
	"time"

	"github.com/xraph/tally/id"
	"github.com/xraph/tally/types"
)

// Op identifies a ledger operation recorded in the journal.
type Op string

// Operation constants.
const (
	OpMint          Op = "mint"
	OpBurn          Op = "burn"
	OpTransfer      Op = "transfer"
	OpStake         Op = "stake"
	OpUnstake       Op = "unstake"
	OpTransferAdmin Op = "transfer_admin"
	OpSetPaused     Op = "set_paused"
	OpGrantAccess   Op = "grant_access"
)

// Entry is one successfully applied operation. Entries are written
// behind the state machine in batches; they are an audit record, not
// the source of truth.
type Entry struct {
	ID        id.JournalID      `json:"id"`
	Op        Op                `json:"op"`
	Caller    id.AccountID      `json:"caller"`
	Target    id.AccountID      `json:"target,omitempty"` // recipient, grantee, or new admin; Nil when unused
	Amount    types.Amount      `json:"amount,omitempty"`
	Paused    bool              `json:"paused,omitempty"` // recorded value for set_paused
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// QueryOpts filters journal queries.
type QueryOpts struct {
	Account id.AccountID // match caller or target
	Op      Op
	Start   time.Time
	End     time.Time
	Limit   int
	Offset  int
}
