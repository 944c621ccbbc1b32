package tally

import "errors"

// Sentinel errors for ledger operation failures.
var (
	// Operation errors. Each carries a stable numeric code, preserved
	// for compatibility with external callers — see Code.
	ErrNotAuthorized       = errors.New("tally: caller is not the admin")
	ErrInsufficientBalance = errors.New("tally: insufficient balance")
	ErrInsufficientStake   = errors.New("tally: insufficient stake")
	ErrMaxSupplyExceeded   = errors.New("tally: mint would exceed max supply")
	ErrPaused              = errors.New("tally: ledger is paused")
	ErrNilAddress          = errors.New("tally: target is the burn address")

	// Engine errors
	ErrNoGenesisAdmin = errors.New("tally: no genesis admin configured")
	ErrNotStarted     = errors.New("tally: engine not started")

	// Store errors
	ErrNotFound        = errors.New("tally: not found")
	ErrAccountNotFound = errors.New("tally: account not found")
	ErrStoreNotReady   = errors.New("tally: store not ready")
	ErrStoreClosed     = errors.New("tally: store is closed")
	ErrMigrationFailed = errors.New("tally: migration failed")
)

// Stable numeric codes for the operation error taxonomy.
const (
	CodeNotAuthorized       = 100
	CodeInsufficientBalance = 101
	CodeInsufficientStake   = 102
	CodeMaxSupplyExceeded   = 103
	CodePaused              = 104
	CodeNilAddress          = 105
)

// Code returns the stable numeric code for an operation error, or 0 if
// the error is not part of the operation taxonomy.
func Code(err error) int {
	switch {
	case errors.Is(err, ErrNotAuthorized):
		return CodeNotAuthorized
	case errors.Is(err, ErrInsufficientBalance):
		return CodeInsufficientBalance
	case errors.Is(err, ErrInsufficientStake):
		return CodeInsufficientStake
	case errors.Is(err, ErrMaxSupplyExceeded):
		return CodeMaxSupplyExceeded
	case errors.Is(err, ErrPaused):
		return CodePaused
	case errors.Is(err, ErrNilAddress):
		return CodeNilAddress
	default:
		return 0
	}
}

// IsAuthorizationError returns true if the error is an authorization failure.
func IsAuthorizationError(err error) bool {
	return errors.Is(err, ErrNotAuthorized) ||
		errors.Is(err, ErrNilAddress)
}

// IsFundsError returns true if the error is a balance, stake, or supply shortfall.
func IsFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrInsufficientStake) ||
		errors.Is(err, ErrMaxSupplyExceeded)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}
