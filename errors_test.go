package tally_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/xraph/tally"
)

func TestCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"NotAuthorized", tally.ErrNotAuthorized, 100},
		{"InsufficientBalance", tally.ErrInsufficientBalance, 101},
		{"InsufficientStake", tally.ErrInsufficientStake, 102},
		{"MaxSupplyExceeded", tally.ErrMaxSupplyExceeded, 103},
		{"Paused", tally.ErrPaused, 104},
		{"NilAddress", tally.ErrNilAddress, 105},
		{"Wrapped", fmt.Errorf("mint: %w", tally.ErrPaused), 104},
		{"OutsideTaxonomy", tally.ErrNotFound, 0},
		{"Nil", nil, 0},
		{"Unrelated", errors.New("boom"), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tally.Code(tt.err); got != tt.want {
				t.Errorf("Code(%v): got %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestStorePlumbingErrors(t *testing.T) {
	// Store plumbing sentinels stay outside the numeric operation
	// taxonomy, and survive the wrapped form the backends return.
	for _, err := range []error{tally.ErrStoreNotReady, tally.ErrMigrationFailed} {
		if got := tally.Code(err); got != 0 {
			t.Errorf("Code(%v): got %d, want 0", err, got)
		}
	}

	wrapped := fmt.Errorf("tally/sqlite: %w: %w", tally.ErrMigrationFailed, errors.New("duplicate column"))
	if !errors.Is(wrapped, tally.ErrMigrationFailed) {
		t.Error("wrapped migration failure should match ErrMigrationFailed")
	}
}

func TestErrorPredicates(t *testing.T) {
	t.Run("IsAuthorizationError", func(t *testing.T) {
		for _, err := range []error{tally.ErrNotAuthorized, tally.ErrNilAddress} {
			if !tally.IsAuthorizationError(err) {
				t.Errorf("IsAuthorizationError(%v) = false", err)
			}
		}
		if tally.IsAuthorizationError(tally.ErrPaused) {
			t.Error("IsAuthorizationError(ErrPaused) = true")
		}
	})

	t.Run("IsFundsError", func(t *testing.T) {
		funds := []error{
			tally.ErrInsufficientBalance,
			tally.ErrInsufficientStake,
			tally.ErrMaxSupplyExceeded,
		}
		for _, err := range funds {
			if !tally.IsFundsError(err) {
				t.Errorf("IsFundsError(%v) = false", err)
			}
		}
		if tally.IsFundsError(tally.ErrNotAuthorized) {
			t.Error("IsFundsError(ErrNotAuthorized) = true")
		}
	})

	t.Run("IsNotFound", func(t *testing.T) {
		for _, err := range []error{tally.ErrNotFound, tally.ErrAccountNotFound} {
			if !tally.IsNotFound(err) {
				t.Errorf("IsNotFound(%v) = false", err)
			}
		}
		if tally.IsNotFound(fmt.Errorf("load: %w", tally.ErrStoreClosed)) {
			t.Error("IsNotFound(wrapped ErrStoreClosed) = true")
		}
	})
}
