package audithook

// Action constants for audit events.
const (
	// Balance actions
	ActionMinted      = "balance.minted"
	ActionBurned      = "balance.burned"
	ActionTransferred = "balance.transferred"

	// Staking actions
	ActionStaked   = "stake.locked"
	ActionUnstaked = "stake.released"

	// Authority actions
	ActionAdminTransferred = "authority.admin_transferred"
	ActionPaused           = "authority.paused"
	ActionUnpaused         = "authority.unpaused"
	ActionAccessGranted    = "authority.access_granted"

	// Failure actions
	ActionOperationRejected = "operation.rejected"

	// Persistence actions
	ActionJournalFlushed = "journal.flushed"
)

// Resource constants for audit events.
const (
	ResourceBalance   = "balance"
	ResourceStake     = "stake"
	ResourceAuthority = "authority"
	ResourceAccess    = "access"
	ResourceJournal   = "journal"
)

// Category constants for audit events.
const (
	CategoryLedger      = "ledger"
	CategoryStaking     = "staking"
	CategoryGovernance  = "governance"
	CategoryAccess      = "access"
	CategoryPersistence = "persistence"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
